package listing

import (
	"reflect"
	"testing"

	"github.com/nebari-dev/attributes/internal/datetime"
	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/nebari-dev/attributes/internal/models"
)

func allowAll(entity.Entity, string) (bool, error) { return true, nil }

func allowOnly(ops ...string) AccessFunc {
	return func(_ entity.Entity, op string) (bool, error) {
		for _, allowed := range ops {
			if allowed == op {
				return true, nil
			}
		}
		return false, nil
	}
}

func newTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator("en", nil)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func newAttribute(id uint, name string, published bool) *models.Attribute {
	a := models.NewAttribute("color", "en", 0)
	a.ID = id
	a.SetName(name)
	a.SetChangedTime(1700000000)
	if !published {
		a.SetUnpublished()
	}
	return a
}

func headerKeys(cols []Column) []string {
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	return keys
}

func TestAttributeListBuilderHeader(t *testing.T) {
	dates, _ := datetime.NewFormatter("UTC")
	b := NewAttributeListBuilder(allowAll, dates, newTranslator(t), nil)

	got := headerKeys(b.BuildHeader())
	want := []string{"title", "type", "author", "status", "changed", "operations"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("header = %v, want %v", got, want)
	}
}

func TestAttributeListBuilderRow(t *testing.T) {
	dates, _ := datetime.NewFormatter("UTC")
	types := []models.AttributeType{{ID: "color", Label: "Colour"}}
	b := NewAttributeListBuilder(allowAll, dates, newTranslator(t), types)

	a := newAttribute(3, "Red", false)
	a.Active().Owner = &models.User{ID: 2, Username: "alice"}

	row, err := b.BuildRow(a)
	if err != nil {
		t.Fatalf("build row: %v", err)
	}

	title := row["title"].(Cell).Data.(Link)
	if title.Title != "Red" || title.URL != "/attribute/3" {
		t.Errorf("unexpected title %+v", title)
	}
	if row["type"] != "Colour" {
		t.Errorf("type = %v", row["type"])
	}
	if author := row["author"].(Cell).Data.(Username); author.Name != "alice" || author.Theme != "username" {
		t.Errorf("unexpected author %+v", author)
	}
	if row["status"] != i18n.Markup("not published") {
		t.Errorf("status = %v", row["status"])
	}
	if row["changed"] != "11/14/2023 - 22:13" {
		t.Errorf("changed = %v", row["changed"])
	}

	ops := row["operations"].(Cell).Data.(Operations)
	if len(ops.Links) != 2 || ops.Links[0].Key != "edit" || ops.Links[1].URL != "/attribute/3/delete" {
		t.Errorf("unexpected operations %+v", ops)
	}

	published, err := b.BuildRow(newAttribute(4, "Blue", true))
	if err != nil {
		t.Fatal(err)
	}
	if published["status"] != i18n.Markup("published") {
		t.Errorf("status = %v", published["status"])
	}
	if author := published["author"].(Cell).Data.(Username); author.Name != "Anonymous" {
		t.Errorf("attribute without a loaded owner should show anonymous, got %+v", author)
	}
}

func TestAttributeListBuilderOtherEntity(t *testing.T) {
	dates, _ := datetime.NewFormatter("UTC")
	b := NewAttributeListBuilder(allowOnly(), dates, newTranslator(t), nil)

	row, err := b.BuildRow(&models.AttributeType{ID: "color", Label: "Color"})
	if err != nil {
		t.Fatalf("build row: %v", err)
	}
	if len(row) != 1 {
		t.Fatalf("expected only the operations cell, got %v", row)
	}
	if ops := row["operations"].(Cell).Data.(Operations); len(ops.Links) != 0 {
		t.Errorf("operations offered without access: %+v", ops)
	}
}

func TestAttributeListBuilderRender(t *testing.T) {
	dates, _ := datetime.NewFormatter("UTC")
	b := NewAttributeListBuilder(allowAll, dates, newTranslator(t), nil)

	table, err := b.Render(nil, &Pager{Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 0 || table.Empty != "There are no attributes yet." {
		t.Errorf("unexpected empty table %+v", table)
	}
	if !reflect.DeepEqual(table.CacheTags, []string{"attribute_list"}) {
		t.Errorf("cache tags = %v", table.CacheTags)
	}
}

func TestAttributeTypeListBuilder(t *testing.T) {
	b := NewAttributeTypeListBuilder(allowAll, newTranslator(t))

	if got := headerKeys(b.BuildHeader()); !reflect.DeepEqual(got, []string{"title", "description", "operations"}) {
		t.Errorf("header = %v", got)
	}

	types := []models.AttributeType{
		{ID: "size", Label: "Size", Description: "<strong>How big</strong>"},
		{ID: "color", Label: "Color"},
	}
	table, err := b.Render(types)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}

	first := table.Rows[0]
	if title := first["title"].(Cell); title.Data != "Color" || title.Class[0] != "menu-label" {
		t.Errorf("types not sorted or title malformed: %+v", title)
	}
	desc := table.Rows[1]["description"].(Cell).Data.(Markup)
	if desc.Markup != "<strong>How big</strong>" {
		t.Errorf("description should be raw markup, got %q", desc.Markup)
	}

	ops := first["operations"].(Cell).Data.(Operations)
	if len(ops.Links) != 2 {
		t.Fatalf("unexpected operations %+v", ops)
	}
	if ops.Links[0].Key != "edit" || ops.Links[0].Weight != 30 || ops.Links[0].URL != "/admin/structure/attribute_type/color/edit" {
		t.Errorf("unexpected edit operation %+v", ops.Links[0])
	}
	if ops.Links[1].Key != "delete" || ops.Links[1].Weight != 100 {
		t.Errorf("unexpected delete operation %+v", ops.Links[1])
	}
}

func TestAttributeTypeListBuilderAccess(t *testing.T) {
	b := NewAttributeTypeListBuilder(allowOnly(OpDelete), newTranslator(t))

	row, err := b.BuildRow(&models.AttributeType{ID: "color", Label: "Color"})
	if err != nil {
		t.Fatal(err)
	}
	ops := row["operations"].(Cell).Data.(Operations)
	if len(ops.Links) != 1 || ops.Links[0].Key != "delete" {
		t.Errorf("expected only delete, got %+v", ops)
	}
}

func TestAttributeTypeListBuilderEmpty(t *testing.T) {
	b := NewAttributeTypeListBuilder(allowAll, newTranslator(t))

	table, err := b.Render(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := `No attribute types available. <a href="/admin/structure/attribute_type/add">Add attribute type</a>.`
	if string(table.Empty) != want {
		t.Errorf("empty = %q", table.Empty)
	}
	if !reflect.DeepEqual(table.CacheTags, []string{"config:attribute_type_list"}) {
		t.Errorf("cache tags = %v", table.CacheTags)
	}
}

func TestAttributeListBuilderInterfaceLanguage(t *testing.T) {
	dates, _ := datetime.NewFormatter("UTC")
	tr := newTranslator(t)
	if _, err := tr.LoadCatalogs(i18n.Builtin()); err != nil {
		t.Fatal(err)
	}
	b := NewAttributeListBuilder(allowAll, dates, tr.In("fr"), nil)

	row, err := b.BuildRow(newAttribute(3, "Rouge", false))
	if err != nil {
		t.Fatalf("build row: %v", err)
	}
	if row["status"] != i18n.Markup("non publié") {
		t.Errorf("status = %v", row["status"])
	}
	for _, col := range b.BuildHeader() {
		if col.Key == "status" && col.Data != i18n.Markup("Statut") {
			t.Errorf("status header = %v", col.Data)
		}
	}
}
