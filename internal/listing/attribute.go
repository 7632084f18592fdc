package listing

import (
	"github.com/nebari-dev/attributes/internal/datetime"
	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/routes"
)

// AttributeListBuilder lists attributes with their type, author, publishing
// state and last update.
type AttributeListBuilder struct {
	*ListBuilder
	dates      *datetime.Formatter
	typeLabels map[string]string
}

// NewAttributeListBuilder returns the attribute list builder. types supplies
// the labels shown in the type column.
func NewAttributeListBuilder(access AccessFunc, dates *datetime.Formatter, translator *i18n.Translator, types []models.AttributeType) *AttributeListBuilder {
	labels := make(map[string]string, len(types))
	for _, t := range types {
		labels[t.ID] = t.Label
	}
	return &AttributeListBuilder{
		ListBuilder: NewListBuilder(entity.AttributeEntityType, access, translator),
		dates:       dates,
		typeLabels:  labels,
	}
}

// BuildHeader implements Builder.
func (b *AttributeListBuilder) BuildHeader() []Column {
	header := []Column{
		{Key: "title", Data: b.t("Title", nil)},
		{Key: "type", Data: b.t("Attribute Type", nil), Class: []string{PriorityMedium}},
		{Key: "author", Data: b.t("Author", nil), Class: []string{PriorityLow}},
		{Key: "status", Data: b.t("Status", nil)},
		{Key: "changed", Data: b.t("Updated", nil), Class: []string{PriorityLow}},
	}
	return append(header, b.ListBuilder.BuildHeader()...)
}

// BuildRow implements Builder. Entities other than attributes get the
// generic row.
func (b *AttributeListBuilder) BuildRow(e entity.Entity) (Row, error) {
	row := Row{}

	if a, ok := e.(*models.Attribute); ok {
		u, err := routes.URL(routes.AttributeCanonical, map[string]string{"attribute": a.EntityID()})
		if err != nil {
			return nil, err
		}
		row["title"] = Cell{Data: Link{Type: "link", Title: a.EntityLabel(), URL: u}}

		label, ok := b.typeLabels[a.Bundle()]
		if !ok {
			label = a.Bundle()
		}
		row["type"] = label

		author := Username{Theme: "username", Name: models.AnonymousUser().DisplayName()}
		if owner := a.Owner(); owner != nil {
			author.ID = owner.ID
			author.Name = owner.DisplayName()
		}
		row["author"] = Cell{Data: author}

		if a.IsPublished() {
			row["status"] = b.t("published", nil)
		} else {
			row["status"] = b.t("not published", nil)
		}
		row["changed"] = b.dates.Format(a.ChangedTime(), datetime.FormatShort, "")

		ops, err := b.BuildOperations(a)
		if err != nil {
			return nil, err
		}
		row["operations"] = Cell{Data: ops}
	}

	base, err := b.ListBuilder.BuildRow(e)
	if err != nil {
		return nil, err
	}
	return merge(row, base), nil
}

// Render lists one page of attributes.
func (b *AttributeListBuilder) Render(attributes []*models.Attribute, pager *Pager) (*Table, error) {
	entities := make([]entity.Entity, len(attributes))
	for i, a := range attributes {
		entities[i] = a
	}
	table, err := Render(b, entities)
	if err != nil {
		return nil, err
	}
	table.Empty = b.EmptyMessage()
	table.Pager = pager
	table.CacheTags = b.CacheTags()
	return table, nil
}
