// Package configsync exports attribute types to configuration files and
// imports them back.
package configsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/service"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Supported file formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// importPattern matches exported attribute type files in any subdirectory.
const importPattern = "**/attribute_type.*.{yaml,yml,toml}"

// Record is the persisted shape of one attribute type.
type Record struct {
	ID          string `yaml:"id" toml:"id"`
	Label       string `yaml:"label" toml:"label"`
	Description string `yaml:"description" toml:"description"`
}

// TypeStore reads and writes attribute types.
type TypeStore interface {
	List(ctx context.Context) ([]models.AttributeType, error)
	Get(ctx context.Context, id string) (*models.AttributeType, error)
	Save(ctx context.Context, t *models.AttributeType, actorID uint) (service.SaveResult, error)
}

// FileName returns the file an attribute type is exported to.
func FileName(t *models.AttributeType, format string) string {
	return t.ConfigName() + "." + format
}

// Marshal encodes a record in the given format.
func Marshal(r Record, format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(r)
	case FormatTOML:
		return toml.Marshal(r)
	default:
		return nil, fmt.Errorf("unsupported format %q (supported: yaml, toml)", format)
	}
}

// Unmarshal decodes a record; the format follows the file extension.
func Unmarshal(data []byte, name string) (Record, error) {
	var r Record
	var err error
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &r)
	case ".toml":
		err = toml.Unmarshal(data, &r)
	default:
		return r, fmt.Errorf("unsupported file %s", name)
	}
	if err != nil {
		return r, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return r, nil
}

// Export writes every attribute type into dir and returns the written
// paths, sorted.
func Export(ctx context.Context, store TypeStore, dir, format string) ([]string, error) {
	if format != FormatYAML && format != FormatTOML {
		return nil, fmt.Errorf("unsupported format %q (supported: yaml, toml)", format)
	}
	types, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list attribute types: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	written := make([]string, 0, len(types))
	for i := range types {
		t := &types[i]
		data, err := Marshal(Record{ID: t.ID, Label: t.Label, Description: t.Description}, format)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", t.ID, err)
		}
		p := filepath.Join(dir, FileName(t, format))
		if err := os.WriteFile(p, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", p, err)
		}
		written = append(written, p)
	}
	sort.Strings(written)
	slog.Info("Exported attribute types", "count", len(written), "dir", dir, "format", format)
	return written, nil
}

// Result reports what an import changed.
type Result struct {
	Created []string `json:"created"`
	Updated []string `json:"updated"`
}

// Import reads every attribute type file under dir and creates or updates
// the matching attribute types. The first failing file stops the import.
func Import(ctx context.Context, store TypeStore, dir string, actorID uint) (*Result, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), importPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(matches)

	result := &Result{Created: []string{}, Updated: []string{}}
	for _, name := range matches {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			return result, fmt.Errorf("failed to read %s: %w", name, err)
		}
		record, err := Unmarshal(data, name)
		if err != nil {
			return result, err
		}
		if want := expectedID(name); record.ID != want {
			return result, fmt.Errorf("%s: id %q does not match the file name", name, record.ID)
		}

		t, err := store.Get(ctx, record.ID)
		if errors.Is(err, service.ErrNotFound) {
			t = models.NewAttributeType(record.ID, record.Label, record.Description)
		} else if err != nil {
			return result, fmt.Errorf("failed to load %s: %w", record.ID, err)
		} else {
			t.Label = record.Label
			t.Description = record.Description
		}

		status, err := store.Save(ctx, t, actorID)
		if err != nil {
			return result, fmt.Errorf("%s: %w", name, err)
		}
		if status == service.SavedNew {
			result.Created = append(result.Created, t.ID)
		} else {
			result.Updated = append(result.Updated, t.ID)
		}
	}

	slog.Info("Imported attribute types", "created", len(result.Created), "updated", len(result.Updated), "dir", dir)
	return result, nil
}

// expectedID extracts <id> from attribute_type.<id>.<ext>.
func expectedID(name string) string {
	base := path.Base(name)
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.TrimPrefix(base, "attribute_type.")
}
