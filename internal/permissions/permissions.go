// Package permissions generates the per-bundle permission set of
// attributes.
package permissions

import (
	"context"
	"fmt"
	"sort"

	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/nebari-dev/attributes/internal/models"
)

// Permission describes one named permission.
type Permission struct {
	Name           string              `json:"name"`
	Title          i18n.Markup         `json:"title"`
	Description    i18n.Markup         `json:"description,omitempty"`
	RestrictAccess bool                `json:"restrict_access,omitempty"`
	Provider       string              `json:"provider"`
	Dependencies   map[string][]string `json:"dependencies,omitempty"`
}

// Set maps permission names to their descriptors.
type Set map[string]Permission

// Names returns the permission names, sorted.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge copies every permission of other into s.
func (s Set) Merge(other Set) {
	for name, p := range other {
		s[name] = p
	}
}

const provider = "attribute"

// Permission name builders.
func CreatePermission(bundle string) string    { return fmt.Sprintf("create %s attribute", bundle) }
func EditOwnPermission(bundle string) string   { return fmt.Sprintf("edit own %s attribute", bundle) }
func EditAnyPermission(bundle string) string   { return fmt.Sprintf("edit any %s attribute", bundle) }
func DeleteOwnPermission(bundle string) string { return fmt.Sprintf("delete own %s attribute", bundle) }
func DeleteAnyPermission(bundle string) string { return fmt.Sprintf("delete any %s attribute", bundle) }

// BundlePermissionNames returns the five permission names of a bundle.
func BundlePermissionNames(bundle string) []string {
	return []string{
		CreatePermission(bundle),
		EditOwnPermission(bundle),
		EditAnyPermission(bundle),
		DeleteOwnPermission(bundle),
		DeleteAnyPermission(bundle),
	}
}

// Generate builds the permissions of every bundle with build and records
// each bundle's config name as a dependency of its permissions.
func Generate(bundles []models.AttributeType, build func(*models.AttributeType) Set) Set {
	out := Set{}
	for i := range bundles {
		bundle := &bundles[i]
		for name, p := range build(bundle) {
			if p.Dependencies == nil {
				p.Dependencies = map[string][]string{}
			}
			p.Dependencies["config"] = append(p.Dependencies["config"], bundle.ConfigName())
			if p.Provider == "" {
				p.Provider = provider
			}
			out[name] = p
		}
	}
	return out
}

// TypeLister loads every attribute type.
type TypeLister interface {
	ListAttributeTypes(ctx context.Context) ([]models.AttributeType, error)
}

// Generator produces the dynamic attribute permissions.
type Generator struct {
	types      TypeLister
	translator *i18n.Translator
}

// NewGenerator creates a permission generator.
func NewGenerator(types TypeLister, translator *i18n.Translator) *Generator {
	return &Generator{types: types, translator: translator}
}

// AttributeTypePermissions returns the permissions of every stored
// attribute type. Nothing is cached.
func (g *Generator) AttributeTypePermissions(ctx context.Context) (Set, error) {
	types, err := g.types.ListAttributeTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load attribute types: %w", err)
	}
	return Generate(types, g.BuildAttributePermissions), nil
}

// BuildAttributePermissions returns the five permissions of one bundle.
func (g *Generator) BuildAttributePermissions(t *models.AttributeType) Set {
	if t.ID == "" {
		return Set{}
	}
	args := i18n.Args{"%type_name": t.Label}
	tr := func(src string, args i18n.Args) i18n.Markup {
		return g.translator.T("", src, args)
	}

	set := Set{
		CreatePermission(t.ID): {
			Title: tr("%type_name: Create new attribute", args),
		},
		EditOwnPermission(t.ID): {
			Title:       tr("%type_name: Edit own attribute", args),
			Description: tr("Note that anonymous users with this permission are able to edit any attribute created by any anonymous user.", nil),
		},
		EditAnyPermission(t.ID): {
			Title: tr("%type_name: Edit any attribute", args),
		},
		DeleteOwnPermission(t.ID): {
			Title:       tr("%type_name: Delete own attribute", args),
			Description: tr("Note that anonymous users with this permission are able to delete any attribute created by any anonymous user.", nil),
		},
		DeleteAnyPermission(t.ID): {
			Title: tr("%type_name: Delete any attribute", args),
		},
	}
	for name, p := range set {
		p.Name = name
		set[name] = p
	}
	return set
}

// Static returns the permissions that exist regardless of bundles.
func (g *Generator) Static() Set {
	return Set{
		entity.PermissionAdministerAttributes: {
			Name:           entity.PermissionAdministerAttributes,
			Title:          g.translator.T("", "Administer attributes", nil),
			RestrictAccess: true,
			Provider:       provider,
		},
		entity.PermissionAdministerSite: {
			Name:           entity.PermissionAdministerSite,
			Title:          g.translator.T("", "Administer site configuration", nil),
			RestrictAccess: true,
			Provider:       "system",
		},
		entity.PermissionAccessContent: {
			Name:     entity.PermissionAccessContent,
			Title:    g.translator.T("", "View published content", nil),
			Provider: "node",
		},
	}
}

// All returns the static and dynamic permissions together.
func (g *Generator) All(ctx context.Context) (Set, error) {
	dynamic, err := g.AttributeTypePermissions(ctx)
	if err != nil {
		return nil, err
	}
	all := g.Static()
	all.Merge(dynamic)
	return all, nil
}
