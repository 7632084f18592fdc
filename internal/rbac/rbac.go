package rbac

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelConf string

var enforcer *casbin.Enforcer

// Built-in roles every account implicitly holds.
const (
	RoleAnonymous     = "anonymous"
	RoleAuthenticated = "authenticated"
	RoleAdministrator = "administrator"
)

// AllPermissions is granted to the administrator role and satisfies every
// permission check.
const AllPermissions = "*"

// InitEnforcer initializes the Casbin enforcer
func InitEnforcer(db *gorm.DB, logger *slog.Logger) error {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	// Load model from embedded string
	m, err := model.NewModelFromString(modelConf)
	if err != nil {
		return fmt.Errorf("failed to parse casbin model: %w", err)
	}

	e, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	// Load policies from database
	if err := e.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}

	enforcer = e

	if _, err := enforcer.AddPolicy(RoleSubject(RoleAdministrator), AllPermissions); err != nil {
		return fmt.Errorf("failed to seed administrator policy: %w", err)
	}

	logger.Info("RBAC enforcer initialized")
	return nil
}

// GetEnforcer returns the global enforcer instance
func GetEnforcer() *casbin.Enforcer {
	return enforcer
}

// UserSubject is the policy subject of an account.
func UserSubject(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}

// RoleSubject is the policy subject of a role.
func RoleSubject(role string) string {
	return "role:" + role
}

// implicitRole is the built-in role an account holds without assignment.
func implicitRole(userID uint) string {
	if userID == 0 {
		return RoleAnonymous
	}
	return RoleAuthenticated
}

// HasPermission checks if a user holds a permission, directly, through an
// assigned role, or through the implicit anonymous/authenticated role.
func HasPermission(userID uint, permission string) (bool, error) {
	ok, err := enforcer.Enforce(UserSubject(userID), permission)
	if err != nil || ok {
		return ok, err
	}
	return enforcer.Enforce(RoleSubject(implicitRole(userID)), permission)
}

// IsAdmin checks if user has admin privileges
func IsAdmin(userID uint) (bool, error) {
	return HasPermission(userID, AllPermissions)
}

// GrantPermission grants a permission to a role
func GrantPermission(role, permission string) error {
	if _, err := enforcer.AddPolicy(RoleSubject(role), permission); err != nil {
		return err
	}
	return enforcer.SavePolicy()
}

// RevokePermission removes a permission from a role
func RevokePermission(role, permission string) error {
	if _, err := enforcer.RemovePolicy(RoleSubject(role), permission); err != nil {
		return err
	}
	return enforcer.SavePolicy()
}

// RevokePermissionEverywhere removes a permission from every role and user.
func RevokePermissionEverywhere(permission string) error {
	if _, err := enforcer.RemoveFilteredPolicy(1, permission); err != nil {
		return err
	}
	return enforcer.SavePolicy()
}

// RolePermissions returns the permissions granted to a role, sorted.
func RolePermissions(role string) ([]string, error) {
	policies, err := enforcer.GetFilteredPolicy(0, RoleSubject(role))
	if err != nil {
		return nil, err
	}

	perms := make([]string, 0, len(policies))
	for _, policy := range policies {
		if len(policy) >= 2 {
			perms = append(perms, policy[1])
		}
	}
	sort.Strings(perms)
	return perms, nil
}

// RolesWithPermission returns the roles a permission is granted to, sorted.
func RolesWithPermission(permission string) ([]string, error) {
	policies, err := enforcer.GetFilteredPolicy(1, permission)
	if err != nil {
		return nil, err
	}

	var roles []string
	for _, policy := range policies {
		if name, ok := strings.CutPrefix(policy[0], "role:"); ok {
			roles = append(roles, name)
		}
	}
	sort.Strings(roles)
	return roles, nil
}

// AssignRole adds a user to a role
func AssignRole(userID uint, role string) error {
	if _, err := enforcer.AddRoleForUser(UserSubject(userID), RoleSubject(role)); err != nil {
		return err
	}
	return enforcer.SavePolicy()
}

// RemoveRole removes a user from a role
func RemoveRole(userID uint, role string) error {
	if _, err := enforcer.DeleteRoleForUser(UserSubject(userID), RoleSubject(role)); err != nil {
		return err
	}
	return enforcer.SavePolicy()
}

// GetUserRoles returns the roles a user holds, the implicit one first.
func GetUserRoles(userID uint) ([]string, error) {
	subjects, err := enforcer.GetRolesForUser(UserSubject(userID))
	if err != nil {
		return nil, err
	}

	roles := []string{implicitRole(userID)}
	for _, s := range subjects {
		if name, ok := strings.CutPrefix(s, "role:"); ok {
			roles = append(roles, name)
		}
	}
	return roles, nil
}
