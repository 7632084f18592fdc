package service

import (
	"errors"
	"testing"

	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/rbac"
)

func TestAttributeTypeSaveResults(t *testing.T) {
	_, types, _, _ := testSetup(t)

	typ := models.NewAttributeType("color", "Color", "Colours")
	result, err := types.Save(t.Context(), typ, 1)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if result != SavedNew {
		t.Errorf("expected SavedNew, got %d", result)
	}
	if typ.UUID == "" {
		t.Error("expected a generated uuid")
	}

	typ.Label = "Colour"
	result, err = types.Save(t.Context(), typ, 1)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if result != SavedUpdated {
		t.Errorf("expected SavedUpdated, got %d", result)
	}

	loaded, err := types.Get(t.Context(), "color")
	if err != nil || loaded.Label != "Colour" || loaded.Description != "Colours" {
		t.Errorf("unexpected stored bundle %+v %v", loaded, err)
	}
}

func TestAttributeTypeMachineName(t *testing.T) {
	_, types, _, _ := testSetup(t)
	createTestType(t, types, "color", "Color")

	tests := []struct {
		name string
		id   string
	}{
		{"duplicate", "color"},
		{"uppercase", "Color"},
		{"too long", "abcdefghijklmnopqrstuvwxyz_0123456789"},
		{"empty", ""},
		{"reserved", "add"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := types.Save(t.Context(), models.NewAttributeType(tt.id, "Label", ""), 1)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Fields["id"] == "" {
				t.Errorf("expected id validation error, got %v", err)
			}
		})
	}

	_, err := types.Save(t.Context(), models.NewAttributeType("size", "", ""), 1)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields["label"] == "" {
		t.Errorf("expected label validation error, got %v", err)
	}
}

func TestAttributeTypeListSorted(t *testing.T) {
	_, types, _, _ := testSetup(t)
	createTestType(t, types, "size10", "Size 10")
	createTestType(t, types, "size2", "Size 2")
	createTestType(t, types, "color", "color")

	list, err := types.List(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if list[0].ID != "color" || list[1].ID != "size2" || list[2].ID != "size10" {
		t.Errorf("unexpected order %v", list)
	}
}

func TestAttributeTypeDeleteInUse(t *testing.T) {
	attrs, types, _, _ := testSetup(t)
	typ := createTestType(t, types, "color", "Color")

	a := attrs.Create("color", "en")
	a.SetName("Red")
	if _, err := attrs.Save(t.Context(), a, 1); err != nil {
		t.Fatal(err)
	}

	var ce *ConflictError
	if err := types.Delete(t.Context(), typ, 1); !errors.As(err, &ce) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if ce.Message != InUseMessage("Color", 1) {
		t.Errorf("unexpected message %q", ce.Message)
	}

	if err := attrs.Delete(t.Context(), a, 1); err != nil {
		t.Fatal(err)
	}
	if err := types.Delete(t.Context(), typ, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := types.Get(t.Context(), "color"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAttributeTypeDeleteCleansDependencies(t *testing.T) {
	_, types, gdb, _ := testSetup(t)
	typ := createTestType(t, types, "color", "Color")
	createTestType(t, types, "size", "Size")

	settings := NewLanguageSettingsService(gdb)
	cls, _ := settings.Load(t.Context(), "attribute", "color")
	cls.TranslationEnabled = true
	if err := settings.Save(t.Context(), cls, 1); err != nil {
		t.Fatal(err)
	}
	if err := rbac.GrantPermission("editor", "edit any color attribute"); err != nil {
		t.Fatal(err)
	}
	if err := rbac.GrantPermission("editor", "edit any size attribute"); err != nil {
		t.Fatal(err)
	}

	if err := types.Delete(t.Context(), typ, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var count int64
	gdb.Model(&models.ContentLanguageSettings{}).Where("target_bundle = ?", "color").Count(&count)
	if count != 0 {
		t.Error("language settings of the deleted bundle remain")
	}
	perms, _ := rbac.RolePermissions("editor")
	if len(perms) != 1 || perms[0] != "edit any size attribute" {
		t.Errorf("unexpected remaining permissions %v", perms)
	}
}

func TestLanguageSettings(t *testing.T) {
	_, _, gdb, _ := testSetup(t)
	svc := NewLanguageSettingsService(gdb)

	cls, err := svc.Load(t.Context(), "attribute", "color")
	if err != nil {
		t.Fatal(err)
	}
	if cls.ID != "attribute.color" || cls.DefaultLangcode != models.LangcodeSiteDefault || cls.LanguageAlterable {
		t.Errorf("unexpected defaults %+v", cls)
	}

	cls.DefaultLangcode = "fr"
	cls.LanguageAlterable = true
	if err := svc.Save(t.Context(), cls, 1); err != nil {
		t.Fatal(err)
	}
	cls.DefaultLangcode = "en"
	if err := svc.Save(t.Context(), cls, 1); err != nil {
		t.Fatal(err)
	}

	loaded, _ := svc.Load(t.Context(), "attribute", "color")
	if loaded.DefaultLangcode != "en" || !loaded.LanguageAlterable {
		t.Errorf("unexpected stored settings %+v", loaded)
	}
}
