// Package schema derives SQL table definitions for the attribute entity
// from its field definitions and installs them.
package schema

import (
	"sort"

	"github.com/nebari-dev/attributes/internal/entity"
)

// Column describes one SQL column.
type Column struct {
	Type     string `json:"type"` // serial, int, varchar, varchar_ascii, text
	Size     string `json:"size,omitempty"`
	Length   int    `json:"length,omitempty"`
	Unsigned bool   `json:"unsigned,omitempty"`
	NotNull  bool   `json:"not_null,omitempty"`
	Default  any    `json:"default,omitempty"`
}

// FieldSchema is the schema fragment a single field contributes to a table.
type FieldSchema struct {
	Fields     map[string]Column   `json:"fields"`
	Indexes    map[string][]string `json:"indexes,omitempty"`
	UniqueKeys map[string][]string `json:"unique_keys,omitempty"`
}

// Clone returns an independent copy.
func (s FieldSchema) Clone() FieldSchema {
	out := FieldSchema{
		Fields:     make(map[string]Column, len(s.Fields)),
		Indexes:    make(map[string][]string, len(s.Indexes)),
		UniqueKeys: make(map[string][]string, len(s.UniqueKeys)),
	}
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	for k, v := range s.Indexes {
		out.Indexes[k] = append([]string(nil), v...)
	}
	for k, v := range s.UniqueKeys {
		out.UniqueKeys[k] = append([]string(nil), v...)
	}
	return out
}

// Customizer adjusts the schema fragment generated for a field on a shared
// table.
type Customizer interface {
	AdjustColumn(table, field string, mapping FieldSchema) FieldSchema
}

// TableSchema is a complete table definition.
type TableSchema struct {
	Name       string
	Columns    []string
	Fields     map[string]Column
	PrimaryKey []string
	Indexes    map[string][]string
	UniqueKeys map[string][]string
}

// Builder computes table schemas for a translatable content entity stored
// in a base table plus a per-translation data table.
type Builder struct {
	entityType entity.Type
	fields     entity.FieldDefinitions
	customizer Customizer
}

// NewBuilder returns a builder. A nil customizer leaves the generic
// schema untouched.
func NewBuilder(entityType entity.Type, fields entity.FieldDefinitions, customizer Customizer) *Builder {
	return &Builder{entityType: entityType, fields: fields, customizer: customizer}
}

// TableMapping returns the field names stored in each shared table.
func (b *Builder) TableMapping() map[string][]string {
	keys := b.entityType.Keys
	baseFields := []string{keys["id"], keys["uuid"], keys["bundle"], keys["langcode"]}

	dataFields := []string{keys["id"], keys["bundle"], keys["langcode"], "default_langcode"}
	for _, f := range b.fields {
		if contains(dataFields, f.Name) || f.Name == keys["uuid"] {
			continue
		}
		dataFields = append(dataFields, f.Name)
	}

	return map[string][]string{
		b.entityType.BaseTable: baseFields,
		b.entityType.DataTable: dataFields,
	}
}

// SharedTableFieldSchema returns the schema fragment for one field on one
// shared table, after customization.
func (b *Builder) SharedTableFieldSchema(field *entity.FieldDefinition, table string) FieldSchema {
	s := b.genericFieldSchema(field, table)
	if b.customizer != nil {
		s = b.customizer.AdjustColumn(table, field.Name, s)
	}
	return s
}

func (b *Builder) genericFieldSchema(field *entity.FieldDefinition, table string) FieldSchema {
	s := FieldSchema{
		Fields:     map[string]Column{},
		Indexes:    map[string][]string{},
		UniqueKeys: map[string][]string{},
	}
	keys := b.entityType.Keys
	isKey := false
	for _, k := range keys {
		if k == field.Name {
			isKey = true
			break
		}
	}

	var col Column
	switch field.Type {
	case entity.FieldInteger:
		col = Column{Type: "int"}
		if field.Name == keys["id"] {
			col.Unsigned = true
			if table == b.entityType.BaseTable {
				col.Type = "serial"
			}
		}
	case entity.FieldUUID:
		col = Column{Type: "varchar_ascii", Length: 128}
		s.UniqueKeys[b.entityType.ID+"_field__"+field.Name+"__value"] = []string{field.Name}
	case entity.FieldLanguage:
		col = Column{Type: "varchar_ascii", Length: 12}
	case entity.FieldBoolean:
		col = Column{Type: "int", Size: "tiny"}
	case entity.FieldEntityReference:
		if field.TargetType == entity.TypeAttributeType {
			col = Column{Type: "varchar_ascii", Length: entity.BundleMaxLength}
		} else {
			col = Column{Type: "int", Unsigned: true}
		}
		s.Indexes[b.entityType.ID+"_field__"+field.Name+"__target_id"] = []string{field.Name}
	case entity.FieldCreated, entity.FieldChanged:
		col = Column{Type: "int"}
	default:
		col = Column{Type: "varchar", Length: field.MaxLength}
		if col.Length == 0 {
			col = Column{Type: "text"}
		}
	}

	if isKey || field.Name == "default_langcode" {
		col.NotNull = true
	}
	if field.DefaultValue != nil && col.Type != "serial" {
		col.Default = normalizeDefault(field.DefaultValue)
	}

	s.Fields[field.Name] = col
	return s
}

func normalizeDefault(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}

// Tables returns the full schema of the base and data tables.
func (b *Builder) Tables() []TableSchema {
	mapping := b.TableMapping()
	keys := b.entityType.Keys

	base := b.buildTable(b.entityType.BaseTable, mapping[b.entityType.BaseTable])
	base.PrimaryKey = []string{keys["id"]}

	data := b.buildTable(b.entityType.DataTable, mapping[b.entityType.DataTable])
	data.PrimaryKey = []string{keys["id"], keys["langcode"]}
	data.Indexes[b.entityType.ID+"__id__default_langcode__langcode"] = []string{keys["id"], "default_langcode", keys["langcode"]}
	if _, ok := data.Fields["status"]; ok {
		data.Indexes[b.entityType.ID+"__status_type"] = []string{"status", keys["bundle"], keys["id"]}
	}

	return []TableSchema{base, data}
}

func (b *Builder) buildTable(name string, fieldNames []string) TableSchema {
	t := TableSchema{
		Name:       name,
		Fields:     map[string]Column{},
		Indexes:    map[string][]string{},
		UniqueKeys: map[string][]string{},
	}
	for _, fieldName := range fieldNames {
		def := b.fields.Get(fieldName)
		if def == nil {
			continue
		}
		fs := b.SharedTableFieldSchema(def, name)
		for col, spec := range fs.Fields {
			if _, seen := t.Fields[col]; !seen {
				t.Columns = append(t.Columns, col)
			}
			t.Fields[col] = spec
		}
		for k, v := range fs.Indexes {
			t.Indexes[k] = v
		}
		for k, v := range fs.UniqueKeys {
			t.UniqueKeys[k] = v
		}
	}
	return t
}

// sortedKeys returns map keys in a stable order for DDL output.
func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
