package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/attributes/internal/config"
	"github.com/nebari-dev/attributes/internal/db"
	"github.com/nebari-dev/attributes/internal/messenger"
	"gorm.io/gorm"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.ServerConfig{Port: 0, Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "app.db"), LogLevel: "silent"},
		Auth:     config.AuthConfig{JWTSecret: "test"},
		Log:      config.LogConfig{Format: "text", Level: "error"},
		Content: config.ContentConfig{
			DefaultOwnerID:  1,
			DefaultLangcode: "en",
			Languages:       []string{"en"},
			Timezone:        "UTC",
		},
		Modules: config.ModulesConfig{Enabled: []string{"language"}},
	}
}

func TestCreateMessenger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MessengerConfig
		wantErr bool
	}{
		{name: "default", cfg: config.MessengerConfig{}},
		{name: "memory", cfg: config.MessengerConfig{Type: "memory"}},
		{name: "valkey without address", cfg: config.MessengerConfig{Type: "valkey"}, wantErr: true},
		{name: "unknown", cfg: config.MessengerConfig{Type: "carrier-pigeon"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := createMessenger(&config.Config{Messenger: tt.cfg})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("createMessenger: %v", err)
			}
			if _, ok := m.(*messenger.MemoryMessenger); !ok {
				t.Errorf("got %T, want *messenger.MemoryMessenger", m)
			}
		})
	}
}

func TestNewApp(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app, err := NewApp(testConfig(t))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(func() { app.Close() })

	types, err := app.Forms.Types.List(t.Context())
	if err != nil {
		t.Fatalf("list types: %v", err)
	}
	if len(types) != 0 {
		t.Errorf("fresh database has %d types", len(types))
	}

	perms, err := app.Permissions.All(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := perms["access content"]; !ok {
		t.Error("static permissions missing")
	}

	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
}

func TestNewAppLoadsTranslations(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fr.yaml"), []byte("\"published\": \"en ligne\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t)
	cfg.Content.Languages = []string{"en", "fr"}
	cfg.Content.TranslationsDir = dir

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(func() { app.Close() })

	fr := app.Forms.Translator.In("fr")
	if got := fr.T("", "published", nil); got != "en ligne" {
		t.Errorf("configured catalog should override the built-in one, got %q", got)
	}
	if got := fr.T("", "not published", nil); got != "non publié" {
		t.Errorf("built-in catalog not loaded, got %q", got)
	}
}

func TestNewAppRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Content.Timezone = "Mars/Olympus_Mons"
	if app, err := NewApp(cfg); err == nil {
		app.Close()
		t.Fatal("expected an error for an unknown timezone")
	}
}

func TestNewAppClosesDatabaseOnFailure(t *testing.T) {
	var opened *gorm.DB
	openDatabase = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
		gdb, err := db.New(cfg)
		opened = gdb
		return gdb, err
	}
	t.Cleanup(func() { openDatabase = db.New })

	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{name: "unknown timezone", modify: func(c *config.Config) { c.Content.Timezone = "Mars/Olympus_Mons" }},
		{name: "unknown default language", modify: func(c *config.Config) { c.Content.DefaultLangcode = "not a language" }},
		{name: "unknown messenger", modify: func(c *config.Config) { c.Messenger.Type = "carrier-pigeon" }},
		{name: "missing translations dir", modify: func(c *config.Config) { c.Content.TranslationsDir = filepath.Join(t.TempDir(), "missing") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opened = nil
			cfg := testConfig(t)
			tt.modify(cfg)
			if app, err := NewApp(cfg); err == nil {
				app.Close()
				t.Fatal("expected an error")
			}
			if opened == nil {
				t.Fatal("database was never opened")
			}
			sqlDB, err := opened.DB()
			if err != nil {
				t.Fatal(err)
			}
			if err := sqlDB.Ping(); err == nil {
				t.Error("database left open after a failed setup")
			}
		})
	}
}
