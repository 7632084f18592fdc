package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nebari-dev/attributes/internal/permissions"
	"github.com/spf13/cobra"
)

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "Inspect available permissions",
}

var permissionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every permission, including those generated per attribute type",
	Args:  cobra.NoArgs,
	RunE:  runPermissionsList,
}

func init() {
	permissionsCmd.AddCommand(permissionsListCmd)
}

func runPermissionsList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	all, err := app.Permissions.All(context.Background())
	if err != nil {
		return err
	}

	return writePermissions(cmd.OutOrStdout(), all)
}

// writePermissions prints one row per permission. Titles are rendered as
// plain text.
func writePermissions(out io.Writer, all permissions.Set) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PERMISSION\tTITLE\tPROVIDER")
	for _, name := range all.Names() {
		p := all[name]
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, p.Title.Plain(), p.Provider)
	}
	return w.Flush()
}
