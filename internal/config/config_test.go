package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Content.DefaultOwnerID != 1 {
		t.Errorf("expected default owner 1, got %d", cfg.Content.DefaultOwnerID)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.Database.Driver)
	}
	if !cfg.Modules.Exists("language") {
		t.Error("expected language module enabled by default")
	}
}

func TestLoadFile_DefaultLangcodeAddedToLanguages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "content:\n  default_langcode: fr\n  languages: [de]\n  default_owner_id: 7\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if len(cfg.Content.Languages) != 2 || cfg.Content.Languages[0] != "fr" {
		t.Errorf("expected [fr de], got %v", cfg.Content.Languages)
	}
	if cfg.Content.DefaultOwnerID != 7 {
		t.Errorf("expected default owner 7, got %d", cfg.Content.DefaultOwnerID)
	}
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv("ATTRIBUTES_MESSENGER_TYPE", "valkey")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Messenger.Type != "valkey" {
		t.Errorf("expected messenger type from env, got %q", cfg.Messenger.Type)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Log.Level)
	}
}

func TestModulesExists(t *testing.T) {
	m := ModulesConfig{Enabled: []string{"content_translation"}}
	if m.Exists("language") {
		t.Error("language should not be enabled")
	}
	if !m.Exists("content_translation") {
		t.Error("content_translation should be enabled")
	}
}
