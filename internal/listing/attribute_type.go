package listing

import (
	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/routes"
)

// AttributeTypeListBuilder lists attribute types.
type AttributeTypeListBuilder struct {
	*ListBuilder
}

// NewAttributeTypeListBuilder returns the attribute type list builder.
func NewAttributeTypeListBuilder(access AccessFunc, translator *i18n.Translator) *AttributeTypeListBuilder {
	return &AttributeTypeListBuilder{
		ListBuilder: NewListBuilder(entity.AttributeTypeEntityType, access, translator),
	}
}

// BuildHeader implements Builder.
func (b *AttributeTypeListBuilder) BuildHeader() []Column {
	header := []Column{
		{Key: "title", Data: b.t("Name", nil)},
		{Key: "description", Data: b.t("Description", nil), Class: []string{PriorityMedium}},
	}
	return append(header, b.ListBuilder.BuildHeader()...)
}

// BuildRow implements Builder.
func (b *AttributeTypeListBuilder) BuildRow(e entity.Entity) (Row, error) {
	row := Row{}

	if t, ok := e.(*models.AttributeType); ok {
		row["title"] = Cell{Data: t.Label, Class: []string{"menu-label"}}
		row["description"] = Cell{Data: Markup{Markup: i18n.Markup(t.Description)}}
	}

	ops, err := b.DefaultOperations(e)
	if err != nil {
		return nil, err
	}
	return merge(row, Row{"operations": Cell{Data: operationsMenu(ops)}}), nil
}

// DefaultOperations lists edit after any operation other modules add.
func (b *AttributeTypeListBuilder) DefaultOperations(e entity.Entity) ([]Operation, error) {
	ops, err := b.ListBuilder.DefaultOperations(e)
	if err != nil {
		return nil, err
	}
	for i := range ops {
		if ops[i].Key == "edit" {
			ops[i].Weight = 30
		}
	}
	return ops, nil
}

// Render lists the given types, which are sorted first.
func (b *AttributeTypeListBuilder) Render(types []models.AttributeType) (*Table, error) {
	models.SortAttributeTypes(types)
	entities := make([]entity.Entity, len(types))
	for i := range types {
		entities[i] = &types[i]
	}
	table, err := Render(b, entities)
	if err != nil {
		return nil, err
	}
	table.Empty = b.t(`No attribute types available. <a href=":link">Add attribute type</a>.`, i18n.Args{
		":link": routes.MustURL(routes.AttributeTypeAdd, nil),
	})
	table.CacheTags = b.CacheTags()
	return table, nil
}
