package main

import (
	"context"
	"fmt"

	"github.com/nebari-dev/attributes/internal/audit"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/rbac"
	"github.com/nebari-dev/attributes/internal/server"
	"github.com/spf13/cobra"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Grant permissions to roles and roles to users",
}

var roleGrantCmd = &cobra.Command{
	Use:     "grant <role> <permission>",
	Short:   "Grant a permission to a role",
	Example: `  attributes role grant authenticated "edit own color attribute"`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changePermission(cmd, args[0], args[1], true)
	},
}

var roleRevokeCmd = &cobra.Command{
	Use:   "revoke <role> <permission>",
	Short: "Revoke a permission from a role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changePermission(cmd, args[0], args[1], false)
	},
}

var roleAssignCmd = &cobra.Command{
	Use:   "assign <username> <role>",
	Short: "Give a user a role",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoleAssign,
}

func init() {
	roleCmd.AddCommand(roleGrantCmd)
	roleCmd.AddCommand(roleRevokeCmd)
	roleCmd.AddCommand(roleAssignCmd)
}

// checkRole fails unless role names a stored role.
func checkRole(app *server.App, role string) error {
	var count int64
	if err := app.DB.Model(&models.Role{}).Where("name = ?", role).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("unknown role %q", role)
	}
	return nil
}

func changePermission(cmd *cobra.Command, role, permission string, grant bool) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := checkRole(app, role); err != nil {
		return err
	}
	all, err := app.Permissions.All(context.Background())
	if err != nil {
		return err
	}
	if _, ok := all[permission]; !ok {
		return fmt.Errorf("unknown permission %q (see: attributes permissions list)", permission)
	}

	action := audit.ActionGrantPermission
	if grant {
		err = rbac.GrantPermission(role, permission)
	} else {
		action = audit.ActionRevokePermission
		err = rbac.RevokePermission(role, permission)
	}
	if err != nil {
		return err
	}
	audit.LogAction(app.DB, 0, action, "role:"+role, map[string]interface{}{"permission": permission})

	verb := "Granted"
	if !grant {
		verb = "Revoked"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %q for role %s\n", verb, permission, role)
	return nil
}

func runRoleAssign(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := app.Users.GetByUsername(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("user %q: %w", args[0], err)
	}
	if err := checkRole(app, args[1]); err != nil {
		return err
	}
	if err := rbac.AssignRole(user.ID, args[1]); err != nil {
		return err
	}
	audit.LogAction(app.DB, 0, audit.ActionAssignRole, fmt.Sprintf("user:%d", user.ID), map[string]interface{}{"role": args[1]})

	fmt.Fprintf(cmd.OutOrStdout(), "Assigned role %s to %s\n", args[1], user.Username)
	return nil
}
