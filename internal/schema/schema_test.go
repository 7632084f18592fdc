package schema

import (
	"reflect"
	"strings"
	"testing"

	"github.com/nebari-dev/attributes/internal/entity"
)

func newAttributeBuilder() *Builder {
	return NewBuilder(entity.AttributeEntityType, entity.AttributeBaseFields(), AttributeCustomizer{})
}

func TestCustomizerNameNotNullOnBaseTable(t *testing.T) {
	b := newAttributeBuilder()
	name := entity.AttributeBaseFields().Get("name")

	s := b.SharedTableFieldSchema(name, "attribute")
	if !s.Fields["name"].NotNull {
		t.Error("expected name to be NOT NULL on the attribute table")
	}

	data := b.SharedTableFieldSchema(name, "attribute_field_data")
	if data.Fields["name"].NotNull {
		t.Error("data table name column must keep the generic nullability")
	}
}

func TestCustomizerCreatedIndexAddedOnce(t *testing.T) {
	fields := entity.AttributeBaseFields()
	created := fields.Get("created")

	generic := NewBuilder(entity.AttributeEntityType, fields, nil).SharedTableFieldSchema(created, "attribute")
	custom := newAttributeBuilder().SharedTableFieldSchema(created, "attribute")

	if got := len(custom.Indexes) - len(generic.Indexes); got != 1 {
		t.Fatalf("expected exactly one extra index, got %d", got)
	}
	if cols := custom.Indexes["attribute_field__created"]; !reflect.DeepEqual(cols, []string{"created"}) {
		t.Errorf("unexpected index columns %v", cols)
	}

	again := AttributeCustomizer{}.AdjustColumn("attribute", "created", custom)
	if len(again.Indexes) != len(custom.Indexes) {
		t.Error("re-applying the customizer duplicated the index")
	}
}

func TestCustomizerLeavesOtherFieldsUnchanged(t *testing.T) {
	fields := entity.AttributeBaseFields()
	generic := NewBuilder(entity.AttributeEntityType, fields, nil)
	custom := newAttributeBuilder()

	for _, f := range fields {
		if f.Name == "name" || f.Name == "created" {
			continue
		}
		for _, table := range []string{"attribute", "attribute_field_data"} {
			want := generic.SharedTableFieldSchema(f, table)
			got := custom.SharedTableFieldSchema(f, table)
			if !reflect.DeepEqual(want, got) {
				t.Errorf("%s on %s changed: %+v != %+v", f.Name, table, got, want)
			}
		}
	}
}

func TestInstalledTablesUnaffectedByCustomizer(t *testing.T) {
	fields := entity.AttributeBaseFields()
	generic := NewBuilder(entity.AttributeEntityType, fields, nil).Tables()
	custom := newAttributeBuilder().Tables()

	// name and created live on the data table only.
	if !reflect.DeepEqual(generic, custom) {
		t.Errorf("customizer changed the installed tables:\n%+v\n%+v", custom, generic)
	}

	data := custom[1]
	want := []string{"status", "type", "id"}
	if cols := data.Indexes["attribute__status_type"]; !reflect.DeepEqual(cols, want) {
		t.Errorf("status_type index = %v, want %v", cols, want)
	}
	if data.Fields["name"].NotNull {
		t.Error("installed name column should stay nullable")
	}
	if _, ok := data.Indexes["attribute_field__created"]; ok {
		t.Error("created index belongs to the base table customization only")
	}
}

func TestTableMapping(t *testing.T) {
	mapping := newAttributeBuilder().TableMapping()

	base := mapping["attribute"]
	if !reflect.DeepEqual(base, []string{"id", "uuid", "type", "langcode"}) {
		t.Errorf("unexpected base columns %v", base)
	}

	data := mapping["attribute_field_data"]
	for _, want := range []string{"id", "type", "langcode", "default_langcode", "name", "weight", "uid", "status", "created", "changed"} {
		if !contains(data, want) {
			t.Errorf("data table missing %s", want)
		}
	}
	if contains(data, "uuid") {
		t.Error("uuid belongs on the base table only")
	}
}

func TestDDLSQLite(t *testing.T) {
	tables := newAttributeBuilder().Tables()

	stmts, err := DDL(DialectSQLite, tables[0])
	if err != nil {
		t.Fatalf("DDL failed: %v", err)
	}
	if !strings.Contains(stmts[0], `"id" INTEGER PRIMARY KEY AUTOINCREMENT`) {
		t.Errorf("expected inline autoincrement key:\n%s", stmts[0])
	}
	if !strings.Contains(strings.Join(stmts, "\n"), `CREATE UNIQUE INDEX IF NOT EXISTS "attribute__attribute_field__uuid__value"`) {
		t.Errorf("expected uuid unique index:\n%s", strings.Join(stmts, "\n"))
	}

	stmts, err = DDL(DialectSQLite, tables[1])
	if err != nil {
		t.Fatalf("DDL failed: %v", err)
	}
	if !strings.Contains(stmts[0], `PRIMARY KEY ("id", "langcode")`) {
		t.Errorf("expected composite key:\n%s", stmts[0])
	}
	if !strings.Contains(stmts[0], `"weight" INTEGER DEFAULT 0`) {
		t.Errorf("expected weight default:\n%s", stmts[0])
	}
}

func TestDDLPostgres(t *testing.T) {
	tables := newAttributeBuilder().Tables()

	stmts, err := DDL(DialectPostgres, tables[0])
	if err != nil {
		t.Fatalf("DDL failed: %v", err)
	}
	if !strings.Contains(stmts[0], `"id" SERIAL NOT NULL`) {
		t.Errorf("expected serial id:\n%s", stmts[0])
	}

	stmts, err = DDL(DialectPostgres, tables[1])
	if err != nil {
		t.Fatalf("DDL failed: %v", err)
	}
	if !strings.Contains(stmts[0], `"status" SMALLINT DEFAULT 1`) {
		t.Errorf("expected smallint status:\n%s", stmts[0])
	}
}

func TestDDLUnsupportedDialect(t *testing.T) {
	if _, err := DDL("mysql", TableSchema{Name: "x"}); err == nil {
		t.Error("expected error for unsupported dialect")
	}
}
