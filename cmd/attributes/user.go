package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/nebari-dev/attributes/internal/audit"
	"github.com/nebari-dev/attributes/internal/db"
	"github.com/nebari-dev/attributes/internal/rbac"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	userEmail         string
	userAdmin         bool
	userPasswordStdin bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user account",
	Long: `Create a user account. The password is prompted for, or read from
stdin with --password-stdin.`,
	Example: `  attributes user create alice --email alice@example.com
  echo "$PASSWORD" | attributes user create bot --password-stdin`,
	Args: cobra.ExactArgs(1),
	RunE: runUserCreate,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts and their roles",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Email address (default: <username>@attributes.local)")
	userCreateCmd.Flags().BoolVar(&userAdmin, "admin", false, "Grant the administrator role")
	userCreateCmd.Flags().BoolVar(&userPasswordStdin, "password-stdin", false, "Read the password from stdin")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
}

// readPassword prompts on a terminal, or reads the first line of r when
// fromStdin is set.
func readPassword(r io.Reader, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(passBytes), nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	username := args[0]
	password, err := readPassword(cmd.InOrStdin(), userPasswordStdin)
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := db.CreateUser(app.DB, username, userEmail, password)
	if err != nil {
		return err
	}
	audit.LogAction(app.DB, 0, audit.ActionCreateUser, fmt.Sprintf("user:%d", user.ID), map[string]interface{}{
		"username": user.Username,
		"is_admin": userAdmin,
	})

	if userAdmin {
		if err := rbac.AssignRole(user.ID, rbac.RoleAdministrator); err != nil {
			return fmt.Errorf("failed to grant admin role: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d)\n", user.Username, user.ID)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	users, err := app.Users.List(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLES")
	for _, u := range users {
		roles, err := rbac.GetUserRoles(u.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, strings.Join(roles, ", "))
	}
	return w.Flush()
}
