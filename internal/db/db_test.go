package db

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/nebari-dev/attributes/internal/config"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/rbac"
	"github.com/nebari-dev/attributes/internal/schema"
)

func TestMigrateInstallsAttributeTables(t *testing.T) {
	gdb, err := New(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := Migrate(gdb, schema.DialectSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// A second run must be a no-op.
	if err := Migrate(gdb, schema.DialectSQLite); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	for _, table := range []string{"attribute", "attribute_field_data", "attribute_type"} {
		if !gdb.Migrator().HasTable(table) {
			t.Errorf("expected table %s", table)
		}
	}
	if !gdb.Migrator().HasIndex("attribute_field_data", "attribute_field_data__attribute__id__default_langcode__langcode") {
		t.Error("expected translation lookup index")
	}

	var roles int64
	gdb.Model(&models.Role{}).Count(&roles)
	if roles != 3 {
		t.Errorf("expected 3 seeded roles, got %d", roles)
	}
}

func TestCreateDefaultAdmin(t *testing.T) {
	gdb, err := New(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := Migrate(gdb, schema.DialectSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := rbac.InitEnforcer(gdb, slog.Default()); err != nil {
		t.Fatalf("init rbac: %v", err)
	}

	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "secret")
	if err := CreateDefaultAdmin(gdb); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	var admin models.User
	if err := gdb.Where("username = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("admin not stored: %v", err)
	}
	if admin.ID != 1 || admin.Email != "admin@attributes.local" {
		t.Errorf("unexpected admin %+v", admin)
	}
	if ok, _ := rbac.IsAdmin(admin.ID); !ok {
		t.Error("expected admin role")
	}

	if err := CreateDefaultAdmin(gdb); err != nil {
		t.Fatalf("second run: %v", err)
	}
	var count int64
	gdb.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("expected a single user, got %d", count)
	}
}
