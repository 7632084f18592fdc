package main

import (
	"context"
	"strings"
	"testing"

	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/permissions"
)

type typeList []models.AttributeType

func (l typeList) ListAttributeTypes(context.Context) ([]models.AttributeType, error) {
	return l, nil
}

func TestWritePermissionsPlainTitles(t *testing.T) {
	tr, err := i18n.NewTranslator("en", nil)
	if err != nil {
		t.Fatal(err)
	}
	gen := permissions.NewGenerator(typeList{{ID: "color", Label: "Red & Blue"}}, tr)
	all, err := gen.All(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	if err := writePermissions(&out, all); err != nil {
		t.Fatalf("writePermissions: %v", err)
	}
	text := out.String()
	if strings.Contains(text, "<") || strings.Contains(text, "&amp;") {
		t.Errorf("markup leaked into terminal output:\n%s", text)
	}
	if !strings.Contains(text, "Red & Blue: Create new attribute") {
		t.Errorf("missing plain title:\n%s", text)
	}
	if !strings.HasPrefix(text, "PERMISSION") {
		t.Errorf("missing header:\n%s", text)
	}
}
