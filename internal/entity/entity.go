// Package entity declares the attribute and attribute_type entity types:
// their keys, tables, links and base field definitions.
package entity

import "github.com/nebari-dev/attributes/internal/routes"

// Entity type machine names.
const (
	TypeAttribute     = "attribute"
	TypeAttributeType = "attribute_type"
)

// Permissions guarding each entity type as a whole.
const (
	PermissionAdministerAttributes = "administer attributes"
	PermissionAdministerSite       = "administer site configuration"
	PermissionAccessContent        = "access content"
)

// Entity is the common surface list builders and forms rely on.
type Entity interface {
	EntityTypeID() string
	EntityID() string
	EntityLabel() string
	Bundle() string
	IsNew() bool
}

// Type describes an entity type the service provides.
type Type struct {
	ID               string
	Label            string
	Keys             map[string]string
	BaseTable        string
	DataTable        string
	Translatable     bool
	AdminPermission  string
	BundleEntityType string
	BundleOf         string
	ConfigPrefix     string
	ConfigExport     []string
	// Links maps link relations ("canonical", "edit-form", ...) to route names.
	Links map[string]string
}

// LinkRoute returns the route name for a link relation.
func (t Type) LinkRoute(rel string) (string, bool) {
	r, ok := t.Links[rel]
	return r, ok
}

// AttributeEntityType is the content entity holding attribute values.
var AttributeEntityType = Type{
	ID:    TypeAttribute,
	Label: "Attribute",
	Keys: map[string]string{
		"id":        "id",
		"bundle":    "type",
		"label":     "name",
		"uuid":      "uuid",
		"status":    "status",
		"langcode":  "langcode",
		"published": "status",
		"uid":       "uid",
		"owner":     "uid",
	},
	BaseTable:        "attribute",
	DataTable:        "attribute_field_data",
	Translatable:     true,
	AdminPermission:  PermissionAdministerAttributes,
	BundleEntityType: TypeAttributeType,
	Links: map[string]string{
		"canonical":   routes.AttributeCanonical,
		"add-page":    routes.AttributeAddPage,
		"add-form":    routes.AttributeAddForm,
		"edit-form":   routes.AttributeEditForm,
		"delete-form": routes.AttributeDeleteForm,
		"collection":  routes.AttributeCollection,
	},
}

// AttributeTypeEntityType is the configuration entity acting as bundle.
var AttributeTypeEntityType = Type{
	ID:    TypeAttributeType,
	Label: "Attribute Type",
	Keys: map[string]string{
		"id":    "id",
		"label": "label",
		"uuid":  "uuid",
	},
	AdminPermission: PermissionAdministerSite,
	BundleOf:        TypeAttribute,
	ConfigPrefix:    TypeAttributeType,
	ConfigExport:    []string{"id", "label", "description"},
	Links: map[string]string{
		"canonical":   routes.AttributeTypeCanonical,
		"add-form":    routes.AttributeTypeAddForm,
		"edit-form":   routes.AttributeTypeEditForm,
		"delete-form": routes.AttributeTypeDeleteForm,
		"collection":  routes.AttributeTypeCollection,
	},
}

// BundleMaxLength bounds bundle machine names.
const BundleMaxLength = 32

// AttributeBaseFields returns the base field definitions of attribute, in
// storage order.
func AttributeBaseFields() FieldDefinitions {
	return FieldDefinitions{
		{
			Name:     "id",
			Type:     FieldInteger,
			Label:    "ID",
			ReadOnly: true,
		},
		{
			Name:     "uuid",
			Type:     FieldUUID,
			Label:    "UUID",
			ReadOnly: true,
		},
		{
			Name:       "type",
			Type:       FieldEntityReference,
			Label:      "Attribute Type",
			TargetType: TypeAttributeType,
			Required:   true,
			ReadOnly:   true,
		},
		{
			Name:         "langcode",
			Type:         FieldLanguage,
			Label:        "Language",
			Translatable: true,
			FormDisplay:  &DisplayOptions{Type: "language_select", Weight: 2},
		},
		{
			Name:         "default_langcode",
			Type:         FieldBoolean,
			Label:        "Default translation",
			Description:  "A flag indicating whether this is the default translation.",
			Translatable: true,
			DefaultValue: true,
		},
		{
			Name:             "name",
			Type:             FieldString,
			Label:            "Name",
			Description:      "Name.",
			Required:         true,
			Translatable:     true,
			MaxLength:        255,
			FormConfigurable: true,
			ViewConfigurable: true,
			FormDisplay:      &DisplayOptions{Type: "string_textfield", Weight: -5},
		},
		{
			Name:             "weight",
			Type:             FieldInteger,
			Label:            "Weight",
			Description:      "Weight for sorting.",
			Required:         true,
			Translatable:     true,
			DefaultValue:     0,
			FormConfigurable: true,
			ViewConfigurable: true,
			FormDisplay:      &DisplayOptions{Type: "number", Weight: 0},
		},
		{
			Name:         "uid",
			Type:         FieldEntityReference,
			Label:        "Authored by",
			Description:  "The username of the content author.",
			TargetType:   "user",
			Translatable: true,
			ViewDisplay:  &DisplayOptions{Type: "author", Label: "hidden", Weight: 0},
			FormDisplay: &DisplayOptions{
				Type:   "entity_reference_autocomplete",
				Weight: 5,
				Settings: map[string]any{
					"match_operator": "CONTAINS",
					"size":           "60",
					"placeholder":    "",
				},
			},
			FormConfigurable: true,
		},
		{
			Name:         "status",
			Type:         FieldBoolean,
			Label:        "Published",
			Translatable: true,
			DefaultValue: true,
			FormDisplay: &DisplayOptions{
				Type:     "boolean_checkbox",
				Weight:   120,
				Settings: map[string]any{"display_label": true},
			},
			FormConfigurable: true,
		},
		{
			Name:             "created",
			Type:             FieldCreated,
			Label:            "Authored on",
			Description:      "The time that the attribute was created.",
			Translatable:     true,
			ViewDisplay:      &DisplayOptions{Type: "timestamp", Label: "hidden", Weight: 0},
			FormDisplay:      &DisplayOptions{Type: "datetime_timestamp", Weight: 10},
			FormConfigurable: true,
		},
		{
			Name:         "changed",
			Type:         FieldChanged,
			Label:        "Changed",
			Description:  "The time that the attribute was last edited.",
			Translatable: true,
		},
	}
}
