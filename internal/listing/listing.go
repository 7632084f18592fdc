// Package listing renders admin tables of entities with per-row operation
// menus.
package listing

import (
	"sort"
	"strings"

	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/nebari-dev/attributes/internal/routes"
)

// Responsive priority classes for columns that may be hidden on narrow
// screens.
const (
	PriorityMedium = "priority-medium"
	PriorityLow    = "priority-low"
)

// Entity operations checked before an operation link is offered.
const (
	OpUpdate = "update"
	OpDelete = "delete"
)

// Column is one header cell.
type Column struct {
	Key   string      `json:"key"`
	Data  i18n.Markup `json:"data"`
	Class []string    `json:"class,omitempty"`
}

// Cell is a row cell carrying classes or a structured value.
type Cell struct {
	Data  any      `json:"data"`
	Class []string `json:"class,omitempty"`
}

// Row maps column keys to cell values.
type Row map[string]any

// Link is a link render element.
type Link struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Username renders an account name.
type Username struct {
	Theme string `json:"theme"`
	ID    uint   `json:"id"`
	Name  string `json:"name"`
}

// Markup is trusted HTML.
type Markup struct {
	Markup i18n.Markup `json:"markup"`
}

// Operation is one link of an operations menu.
type Operation struct {
	Key    string      `json:"key"`
	Title  i18n.Markup `json:"title"`
	URL    string      `json:"url"`
	Weight int         `json:"weight"`
}

// Operations is an operations menu.
type Operations struct {
	Type  string      `json:"type"`
	Links []Operation `json:"links"`
}

// Pager describes the page a table shows.
type Pager struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// Table is a rendered listing.
type Table struct {
	Header    []Column    `json:"header"`
	Rows      []Row       `json:"rows"`
	Empty     i18n.Markup `json:"empty"`
	Pager     *Pager      `json:"pager,omitempty"`
	CacheTags []string    `json:"cache_tags"`
}

// AccessFunc reports whether the current account may perform op on e.
type AccessFunc func(e entity.Entity, op string) (bool, error)

// Builder produces the header and rows of a table.
type Builder interface {
	BuildHeader() []Column
	BuildRow(e entity.Entity) (Row, error)
}

// ListBuilder is the generic builder: one operations column listing the
// edit and delete links the account may use.
type ListBuilder struct {
	entityType entity.Type
	access     AccessFunc
	translator *i18n.Translator
}

// NewListBuilder returns the generic builder for entityType.
func NewListBuilder(entityType entity.Type, access AccessFunc, translator *i18n.Translator) *ListBuilder {
	return &ListBuilder{entityType: entityType, access: access, translator: translator}
}

func (b *ListBuilder) t(src string, args i18n.Args) i18n.Markup {
	return b.translator.T("", src, args)
}

// BuildHeader implements Builder.
func (b *ListBuilder) BuildHeader() []Column {
	return []Column{{Key: "operations", Data: b.t("Operations", nil)}}
}

// BuildRow implements Builder.
func (b *ListBuilder) BuildRow(e entity.Entity) (Row, error) {
	ops, err := b.BuildOperations(e)
	if err != nil {
		return nil, err
	}
	return Row{"operations": Cell{Data: ops}}, nil
}

// DefaultOperations returns the edit and delete operations the account
// has access to.
func (b *ListBuilder) DefaultOperations(e entity.Entity) ([]Operation, error) {
	var ops []Operation
	candidates := []struct {
		key, rel, op string
		title        string
		weight       int
	}{
		{key: "edit", rel: "edit-form", op: OpUpdate, title: "Edit", weight: 10},
		{key: "delete", rel: "delete-form", op: OpDelete, title: "Delete", weight: 100},
	}
	for _, c := range candidates {
		route, ok := b.entityType.LinkRoute(c.rel)
		if !ok {
			continue
		}
		allowed, err := b.access(e, c.op)
		if err != nil {
			return nil, err
		}
		if !allowed {
			continue
		}
		u, err := routes.URL(route, map[string]string{b.entityType.ID: e.EntityID()})
		if err != nil {
			return nil, err
		}
		ops = append(ops, Operation{Key: c.key, Title: b.t(c.title, nil), URL: u, Weight: c.weight})
	}
	return ops, nil
}

// BuildOperations renders the default operations sorted by weight.
func (b *ListBuilder) BuildOperations(e entity.Entity) (Operations, error) {
	ops, err := b.DefaultOperations(e)
	if err != nil {
		return Operations{}, err
	}
	return operationsMenu(ops), nil
}

func operationsMenu(ops []Operation) Operations {
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Weight < ops[j].Weight })
	if ops == nil {
		ops = []Operation{}
	}
	return Operations{Type: "operations", Links: ops}
}

// EmptyMessage is the text shown for a table without rows.
func (b *ListBuilder) EmptyMessage() i18n.Markup {
	return b.t("There are no @label yet.", i18n.Args{"@label": strings.ToLower(b.entityType.Label) + "s"})
}

// CacheTags returns the list cache tag of the entity type.
func (b *ListBuilder) CacheTags() []string {
	if b.entityType.ConfigPrefix != "" {
		return []string{"config:" + b.entityType.ID + "_list"}
	}
	return []string{b.entityType.ID + "_list"}
}

// Render builds a table from the given entities.
func Render(b Builder, entities []entity.Entity) (*Table, error) {
	table := &Table{Header: b.BuildHeader(), Rows: []Row{}}
	for _, e := range entities {
		row, err := b.BuildRow(e)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// merge adds the cells of base that row does not set itself.
func merge(row, base Row) Row {
	for k, v := range base {
		if _, ok := row[k]; !ok {
			row[k] = v
		}
	}
	return row
}
