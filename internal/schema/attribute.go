package schema

import "github.com/nebari-dev/attributes/internal/entity"

// AttributeCustomizer tightens the attribute base table: name is NOT NULL
// and created is indexed. Every other table and field passes through.
type AttributeCustomizer struct{}

// AdjustColumn implements Customizer.
func (AttributeCustomizer) AdjustColumn(table, field string, mapping FieldSchema) FieldSchema {
	out := mapping.Clone()
	if table != entity.AttributeEntityType.BaseTable {
		return out
	}

	switch field {
	case "name":
		col, ok := out.Fields[field]
		if !ok {
			col = Column{Type: "varchar", Length: 255}
		}
		col.NotNull = true
		out.Fields[field] = col
	case "created":
		out.Indexes[entity.TypeAttribute+"_field__"+field] = []string{field}
	}

	return out
}
