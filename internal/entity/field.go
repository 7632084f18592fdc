package entity

// FieldType identifies the storage and widget family of a field.
type FieldType string

const (
	FieldInteger         FieldType = "integer"
	FieldString          FieldType = "string"
	FieldUUID            FieldType = "uuid"
	FieldLanguage        FieldType = "language"
	FieldBoolean         FieldType = "boolean"
	FieldEntityReference FieldType = "entity_reference"
	FieldCreated         FieldType = "created"
	FieldChanged         FieldType = "changed"
)

// DisplayOptions configures a widget (form) or formatter (view).
type DisplayOptions struct {
	Type     string         `json:"type"`
	Label    string         `json:"label,omitempty"`
	Weight   int            `json:"weight"`
	Settings map[string]any `json:"settings,omitempty"`
}

// FieldDefinition describes one base field of an entity type.
type FieldDefinition struct {
	Name         string
	Type         FieldType
	Label        string
	Description  string
	Required     bool
	Translatable bool
	ReadOnly     bool
	MaxLength    int
	DefaultValue any
	TargetType   string

	FormDisplay      *DisplayOptions
	ViewDisplay      *DisplayOptions
	FormConfigurable bool
	ViewConfigurable bool
}

// FieldDefinitions is an ordered set of field definitions.
type FieldDefinitions []*FieldDefinition

// Get returns the named field definition, or nil.
func (d FieldDefinitions) Get(name string) *FieldDefinition {
	for _, f := range d {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// IsTranslatable reports whether the named field exists and is
// translatable. The second result is false when the field is unknown.
func (d FieldDefinitions) IsTranslatable(name string) (translatable bool, ok bool) {
	f := d.Get(name)
	if f == nil {
		return false, false
	}
	return f.Translatable, true
}

// Clone returns a deep enough copy that callers may flip flags on the
// returned definitions without touching the originals.
func (d FieldDefinitions) Clone() FieldDefinitions {
	out := make(FieldDefinitions, len(d))
	for i, f := range d {
		cp := *f
		out[i] = &cp
	}
	return out
}
