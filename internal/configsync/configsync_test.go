package configsync

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/service"
)

type memoryStore struct {
	types map[string]models.AttributeType
	saved []string
}

func newMemoryStore(types ...models.AttributeType) *memoryStore {
	s := &memoryStore{types: map[string]models.AttributeType{}}
	for _, t := range types {
		s.types[t.ID] = t
	}
	return s
}

func (s *memoryStore) List(context.Context) ([]models.AttributeType, error) {
	var out []models.AttributeType
	for _, t := range s.types {
		out = append(out, t)
	}
	models.SortAttributeTypes(out)
	return out, nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*models.AttributeType, error) {
	t, ok := s.types[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &t, nil
}

func (s *memoryStore) Save(_ context.Context, t *models.AttributeType, _ uint) (service.SaveResult, error) {
	if err := service.ValidateMachineName(t.ID); err != nil {
		return 0, err
	}
	result := service.SavedUpdated
	if t.IsNew() {
		result = service.SavedNew
	}
	t.EnforceIsNew(false)
	s.types[t.ID] = *t
	s.saved = append(s.saved, t.ID)
	return result, nil
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, format := range []string{FormatYAML, FormatTOML} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			src := newMemoryStore(
				models.AttributeType{ID: "color", Label: "Color", Description: "Paint it"},
				models.AttributeType{ID: "size", Label: "Size"},
			)

			paths, err := Export(t.Context(), src, dir, format)
			if err != nil {
				t.Fatalf("export: %v", err)
			}
			want := []string{
				filepath.Join(dir, "attribute_type.color."+format),
				filepath.Join(dir, "attribute_type.size."+format),
			}
			if !reflect.DeepEqual(paths, want) {
				t.Fatalf("paths = %v, want %v", paths, want)
			}

			dst := newMemoryStore(models.AttributeType{ID: "size", Label: "Old size"})
			result, err := Import(t.Context(), dst, dir, 1)
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			if !reflect.DeepEqual(result.Created, []string{"color"}) || !reflect.DeepEqual(result.Updated, []string{"size"}) {
				t.Errorf("unexpected result %+v", result)
			}
			if got := dst.types["color"]; got.Label != "Color" || got.Description != "Paint it" {
				t.Errorf("color imported as %+v", got)
			}
			if got := dst.types["size"]; got.Label != "Size" {
				t.Errorf("size label = %q, want updated", got.Label)
			}
		})
	}
}

func TestExportYAMLShape(t *testing.T) {
	dir := t.TempDir()
	store := newMemoryStore(models.AttributeType{ID: "color", UUID: "abc", Label: "Color"})
	if _, err := Export(t.Context(), store, dir, FormatYAML); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "attribute_type.color.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	want := "id: color\nlabel: Color\ndescription: \"\"\n"
	if string(data) != want {
		t.Errorf("exported %q, want %q", data, want)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	if _, err := Export(t.Context(), newMemoryStore(), t.TempDir(), "json"); err == nil {
		t.Error("expected an error for json")
	}
}

func TestImportNestedAndMismatch(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "bundles", "extra")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "attribute_type.shape.yml"), []byte("id: shape\nlabel: Shape\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.yaml"), []byte("ignored: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	store := newMemoryStore()
	result, err := Import(t.Context(), store, dir, 1)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !reflect.DeepEqual(result.Created, []string{"shape"}) {
		t.Errorf("created = %v", result.Created)
	}

	if err := os.WriteFile(filepath.Join(dir, "attribute_type.wrong.toml"), []byte("id = \"other\"\nlabel = \"Other\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = Import(t.Context(), newMemoryStore(), dir, 1)
	if err == nil || !strings.Contains(err.Error(), "does not match") {
		t.Errorf("expected an id mismatch error, got %v", err)
	}
}
