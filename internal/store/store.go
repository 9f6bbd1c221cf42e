// ABOUTME: SQLite-backed store lifecycle: open, pragmas, transactions.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/klmckay/healthdb/internal/schema"
)

// Schema is the code-defined shape of one store: its logical name, overall
// version, entity tables, and derived views.
type Schema struct {
	Name    string
	Version int
	Tables  []schema.Table
	Views   []schema.View
}

// Options adjusts store opening.
type Options struct {
	// SkipReconcile opens without version reconciliation. Used only by the
	// destructive rebuild path, which must get a handle to a conflicted store.
	SkipReconcile bool
}

// DB is one open store: a single SQLite file holding the entity tables, the
// version registry, and any derived views of one vendor schema.
type DB struct {
	db     *sql.DB
	path   string
	schema Schema
	tables map[string]schema.Table
	views  map[string]schema.View
}

// Open opens or creates the store at path and reconciles schema and view
// versions before returning. A table whose stored version differs from the
// code version fails with ErrSchemaConflict; a stale view is dropped and
// recreated.
func Open(path string, sch Schema, opts *Options) (*DB, error) {
	if opts == nil {
		opts = &Options{}
	}
	for _, t := range sch.Tables {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("schema %s: %w", sch.Name, err)
		}
	}
	for _, v := range sch.Views {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("schema %s: %w", sch.Name, err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	d := &DB{
		db:     db,
		path:   path,
		schema: sch,
		tables: make(map[string]schema.Table, len(sch.Tables)),
		views:  make(map[string]schema.View, len(sch.Views)),
	}
	for _, t := range sch.Tables {
		d.tables[t.Name] = t
	}
	for _, v := range sch.Views {
		d.views[v.Name] = v
	}

	if err := d.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}
	if err := d.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	if !opts.SkipReconcile {
		if err := d.reconcileVersions(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return d, nil
}

func (d *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := d.db.Exec(p); err != nil {
			return fmt.Errorf("execute %s: %w", p, err)
		}
	}
	return nil
}

func (d *DB) createTables() error {
	if _, err := d.db.Exec(versionTableDDL); err != nil {
		return fmt.Errorf("create version registry: %w", err)
	}
	for _, t := range d.schema.Tables {
		if _, err := d.db.Exec(t.DDL()); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Path returns the database file location.
func (d *DB) Path() string {
	return d.path
}

// Name returns the store's logical name.
func (d *DB) Name() string {
	return d.schema.Name
}

// SQL returns the underlying database handle for custom queries.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// Table returns a registered table definition.
func (d *DB) Table(name string) (schema.Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

// Tables returns the registered table definitions in schema order.
func (d *DB) Tables() []schema.Table {
	return d.schema.Tables
}

// Transaction runs fn inside one transaction, rolling back on error.
func (d *DB) Transaction(fn func(*sql.Tx) error) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
