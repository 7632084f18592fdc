package rbac

import (
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupEnforcer(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "rbac.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := InitEnforcer(db, slog.Default()); err != nil {
		t.Fatalf("init rbac: %v", err)
	}
}

func TestHasPermissionThroughRoles(t *testing.T) {
	setupEnforcer(t)

	if err := GrantPermission("editor", "create color attribute"); err != nil {
		t.Fatal(err)
	}
	if err := AssignRole(7, "editor"); err != nil {
		t.Fatal(err)
	}

	ok, err := HasPermission(7, "create color attribute")
	if err != nil || !ok {
		t.Errorf("expected user 7 to hold the permission, got %v %v", ok, err)
	}
	ok, _ = HasPermission(8, "create color attribute")
	if ok {
		t.Error("user 8 holds no role granting the permission")
	}
}

func TestImplicitRoles(t *testing.T) {
	setupEnforcer(t)

	if err := GrantPermission(RoleAuthenticated, "access content"); err != nil {
		t.Fatal(err)
	}

	if ok, _ := HasPermission(3, "access content"); !ok {
		t.Error("authenticated users should inherit the authenticated role")
	}
	if ok, _ := HasPermission(0, "access content"); ok {
		t.Error("anonymous must not inherit the authenticated role")
	}

	if err := GrantPermission(RoleAnonymous, "access content"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := HasPermission(0, "access content"); !ok {
		t.Error("anonymous should inherit the anonymous role")
	}

	roles, err := GetUserRoles(0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(roles, []string{RoleAnonymous}) {
		t.Errorf("unexpected roles %v", roles)
	}
}

func TestAdministratorHoldsEverything(t *testing.T) {
	setupEnforcer(t)

	if err := AssignRole(1, RoleAdministrator); err != nil {
		t.Fatal(err)
	}
	if ok, _ := IsAdmin(1); !ok {
		t.Error("expected user 1 to be admin")
	}
	if ok, _ := HasPermission(1, "delete any color attribute"); !ok {
		t.Error("administrator should hold every permission")
	}
	if ok, _ := IsAdmin(2); ok {
		t.Error("user 2 is not an administrator")
	}

	if err := RemoveRole(1, RoleAdministrator); err != nil {
		t.Fatal(err)
	}
	if ok, _ := IsAdmin(1); ok {
		t.Error("expected admin to be revoked")
	}
}

func TestRevokePermissionEverywhere(t *testing.T) {
	setupEnforcer(t)

	for _, role := range []string{"editor", "author"} {
		if err := GrantPermission(role, "edit any color attribute"); err != nil {
			t.Fatal(err)
		}
		if err := GrantPermission(role, "edit any size attribute"); err != nil {
			t.Fatal(err)
		}
	}

	if err := RevokePermissionEverywhere("edit any color attribute"); err != nil {
		t.Fatal(err)
	}

	for _, role := range []string{"editor", "author"} {
		perms, err := RolePermissions(role)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(perms, []string{"edit any size attribute"}) {
			t.Errorf("%s: unexpected permissions %v", role, perms)
		}
	}
}

func TestRolesWithPermission(t *testing.T) {
	setupEnforcer(t)

	for _, role := range []string{"editor", "author"} {
		if err := GrantPermission(role, "edit any color attribute"); err != nil {
			t.Fatal(err)
		}
	}

	roles, err := RolesWithPermission("edit any color attribute")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(roles, []string{"author", "editor"}) {
		t.Errorf("got roles %v", roles)
	}

	roles, err = RolesWithPermission("delete any color attribute")
	if err != nil || len(roles) != 0 {
		t.Errorf("expected no roles, got %v %v", roles, err)
	}
}
