// ABOUTME: Declarative table definitions consumed by the generic store.
// ABOUTME: Tables are plain data: columns, versions, time and match columns.
package schema

import (
	"fmt"
	"strings"

	"github.com/klmckay/healthdb/internal/enums"
)

// Type is the semantic column type. It controls DDL affinity, value
// formatting, and which aggregation path a column takes.
type Type int

const (
	Integer Type = iota
	Float
	Text
	Date
	DateTime
	// TimeOfDay holds an elapsed duration as an HH:MM:SS clock time.
	TimeOfDay
	// EnumText holds an enum member's symbolic name.
	EnumText
)

func (t Type) ddl() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Float:
		return "REAL"
	case Date:
		return "DATE"
	case DateTime:
		return "DATETIME"
	case TimeOfDay:
		return "TIME"
	default:
		return "TEXT"
	}
}

// Column declares one table column.
type Column struct {
	Name       string
	Type       Type
	PrimaryKey bool
	NotNull    bool
	Unique     bool
	// References names a foreign key target as "table(column)".
	References string
	// Default is a literal rendered into the DDL, e.g. "'00:00:00'".
	Default string
	// Enum validates and resolves values for EnumText columns.
	Enum *enums.Enum
}

// Table declares one versioned entity table.
type Table struct {
	Name    string
	Version int
	Columns []Column
	// TimeColumn is the designated column for all range queries.
	TimeColumn string
	// MatchColumns form the natural key used for idempotent upsert. Empty
	// means the primary key itself is the natural key.
	MatchColumns []string
}

// Column looks up a column definition by name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKeys returns the primary key column names in declaration order.
func (t Table) PrimaryKeys() []string {
	var keys []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			keys = append(keys, c.Name)
		}
	}
	return keys
}

// Validate checks the definition is internally consistent.
func (t Table) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table with no name")
	}
	if t.Version < 1 {
		return fmt.Errorf("table %s: version must be >= 1", t.Name)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s: no columns", t.Name)
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			return fmt.Errorf("table %s: column with no name", t.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("table %s: duplicate column %s", t.Name, c.Name)
		}
		seen[c.Name] = true
		if c.Type == EnumText && c.Enum == nil {
			return fmt.Errorf("table %s: enum column %s has no enum", t.Name, c.Name)
		}
	}
	if len(t.PrimaryKeys()) == 0 {
		return fmt.Errorf("table %s: no primary key", t.Name)
	}
	if t.TimeColumn != "" {
		c, ok := t.Column(t.TimeColumn)
		if !ok {
			return fmt.Errorf("table %s: time column %s not defined", t.Name, t.TimeColumn)
		}
		if c.Type != Date && c.Type != DateTime {
			return fmt.Errorf("table %s: time column %s must be a date or datetime", t.Name, t.TimeColumn)
		}
	}
	for _, m := range t.MatchColumns {
		if _, ok := t.Column(m); !ok {
			return fmt.Errorf("table %s: match column %s not defined", t.Name, m)
		}
	}
	return nil
}

// DDL renders the CREATE TABLE statement.
func (t Table) DDL() string {
	var defs []string
	pks := t.PrimaryKeys()
	compositePK := len(pks) > 1
	for _, c := range t.Columns {
		def := fmt.Sprintf("%s %s", c.Name, c.Type.ddl())
		if c.PrimaryKey && !compositePK {
			def += " PRIMARY KEY"
		}
		if c.NotNull {
			def += " NOT NULL"
		}
		if c.Unique && !c.PrimaryKey {
			def += " UNIQUE"
		}
		if c.Default != "" {
			def += " DEFAULT " + c.Default
		}
		if c.References != "" {
			def += " REFERENCES " + c.References
		}
		defs = append(defs, def)
	}
	if compositePK {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", t.Name, strings.Join(defs, ",\n  "))
}

// KeyValueTable returns the standard versioned key-value table shape used for
// per-store attributes. Reused by every vendor store under its own name.
func KeyValueTable(name string, version int) Table {
	return Table{
		Name:    name,
		Version: version,
		Columns: []Column{
			{Name: "timestamp", Type: DateTime},
			{Name: "key", Type: Text, PrimaryKey: true},
			{Name: "value", Type: Text},
		},
		TimeColumn:   "timestamp",
		MatchColumns: []string{"key"},
	}
}
