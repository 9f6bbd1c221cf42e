// ABOUTME: Versioned read-only view definitions over entity tables.
// ABOUTME: Rendered as CREATE VIEW with inner joins in declaration order.
package schema

import (
	"fmt"
	"strings"
)

// ViewColumn projects one expression into a view, optionally renamed.
type ViewColumn struct {
	Expr string
	As   string
}

// Join declares one inner join step. Records without a matching counterpart
// are excluded from the view.
type Join struct {
	Table string
	On    string
}

// View declares a named, versioned projection over one or more tables.
// Views carry no data; a version bump drops and recreates them.
type View struct {
	Name    string
	Version int
	Select  []ViewColumn
	From    string
	Joins   []Join
	OrderBy string
}

// Validate checks the definition is renderable.
func (v View) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("view with no name")
	}
	if v.Version < 1 {
		return fmt.Errorf("view %s: version must be >= 1", v.Name)
	}
	if len(v.Select) == 0 {
		return fmt.Errorf("view %s: no projected columns", v.Name)
	}
	if v.From == "" {
		return fmt.Errorf("view %s: no source table", v.Name)
	}
	for _, j := range v.Joins {
		if j.Table == "" || j.On == "" {
			return fmt.Errorf("view %s: join missing table or condition", v.Name)
		}
	}
	return nil
}

// SQL renders the CREATE VIEW statement.
func (v View) SQL() string {
	cols := make([]string, len(v.Select))
	for i, c := range v.Select {
		if c.As != "" {
			cols[i] = fmt.Sprintf("%s AS %s", c.Expr, c.As)
		} else {
			cols[i] = c.Expr
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE VIEW %s AS\nSELECT %s\nFROM %s", v.Name, strings.Join(cols, ", "), v.From)
	for _, j := range v.Joins {
		fmt.Fprintf(&b, "\nJOIN %s ON %s", j.Table, j.On)
	}
	if v.OrderBy != "" {
		fmt.Fprintf(&b, "\nORDER BY %s", v.OrderBy)
	}
	return b.String()
}
