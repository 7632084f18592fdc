package schema

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Dialects understood by the DDL renderer.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// DDL renders the CREATE TABLE and CREATE INDEX statements for a table.
func DDL(dialect string, t TableSchema) ([]string, error) {
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}

	inlinePK := dialect == DialectSQLite && len(t.PrimaryKey) == 1 && t.Fields[t.PrimaryKey[0]].Type == "serial"

	var defs []string
	for _, name := range t.Columns {
		col := t.Fields[name]
		def := fmt.Sprintf("%s %s", quote(name), columnType(dialect, col))
		if inlinePK && name == t.PrimaryKey[0] {
			def += " PRIMARY KEY AUTOINCREMENT"
		} else {
			if col.NotNull || col.Type == "serial" {
				def += " NOT NULL"
			}
			if col.Default != nil {
				def += " DEFAULT " + literal(col.Default)
			}
		}
		defs = append(defs, def)
	}
	if !inlinePK && len(t.PrimaryKey) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", quoteList(t.PrimaryKey)))
	}

	stmts := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", quote(t.Name), strings.Join(defs, ",\n  ")),
	}
	for _, name := range sortedKeys(t.UniqueKeys) {
		stmts = append(stmts, fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
			quote(t.Name+"__"+name), quote(t.Name), quoteList(t.UniqueKeys[name])))
	}
	for _, name := range sortedKeys(t.Indexes) {
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			quote(t.Name+"__"+name), quote(t.Name), quoteList(t.Indexes[name])))
	}
	return stmts, nil
}

func columnType(dialect string, col Column) string {
	switch col.Type {
	case "serial":
		if dialect == DialectSQLite {
			return "INTEGER"
		}
		return "SERIAL"
	case "int":
		if dialect == DialectPostgres && col.Size == "tiny" {
			return "SMALLINT"
		}
		if dialect == DialectPostgres && col.Size == "big" {
			return "BIGINT"
		}
		return "INTEGER"
	case "varchar", "varchar_ascii":
		return fmt.Sprintf("VARCHAR(%d)", col.Length)
	default:
		return "TEXT"
	}
}

func literal(v any) string {
	switch x := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	default:
		return fmt.Sprint(x)
	}
}

func quote(ident string) string {
	return `"` + ident + `"`
}

func quoteList(idents []string) string {
	quoted := make([]string, len(idents))
	for i, id := range idents {
		quoted[i] = quote(id)
	}
	return strings.Join(quoted, ", ")
}

// Install creates the given tables and their indexes in one transaction.
// Existing tables and indexes are left alone.
func Install(db *gorm.DB, dialect string, tables []TableSchema) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, t := range tables {
			stmts, err := DDL(dialect, t)
			if err != nil {
				return err
			}
			for _, stmt := range stmts {
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("failed to create %s: %w", t.Name, err)
				}
			}
		}
		return nil
	})
}
