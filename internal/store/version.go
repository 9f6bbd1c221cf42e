// ABOUTME: Schema version registry: one stored version per table and view.
// ABOUTME: Tables with drifted versions are fatal; stale views self-heal.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/klmckay/healthdb/internal/schema"
)

const versionTableDDL = `CREATE TABLE IF NOT EXISTS _version (
  subject TEXT PRIMARY KEY,
  version INTEGER NOT NULL
)`

// reconcileVersions runs once at open, before any ingestion or query is
// accepted. Entity tables hold data and are never migrated automatically:
// any difference between stored and code version, in either direction, is a
// conflict the operator must resolve with an explicit rebuild. Views carry
// no data, so a version bump just drops and recreates them.
func (d *DB) reconcileVersions() error {
	if err := d.checkSubject(d.schema.Name, d.schema.Version); err != nil {
		return err
	}
	for _, t := range d.schema.Tables {
		if err := d.checkSubject(t.Name, t.Version); err != nil {
			return err
		}
	}
	for _, v := range d.schema.Views {
		if _, err := d.reconcileView(v); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) checkSubject(subject string, codeVersion int) error {
	stored, ok, err := d.storedVersion(subject)
	if err != nil {
		return err
	}
	if !ok {
		return d.setVersion(subject, codeVersion)
	}
	if stored != codeVersion {
		return fmt.Errorf("%w: %s stored version %d, code version %d",
			ErrSchemaConflict, subject, stored, codeVersion)
	}
	return nil
}

// reconcileView recreates the view when its declared version exceeds the
// stored one. Reports whether a rebuild happened; equal versions are a no-op.
func (d *DB) reconcileView(v schema.View) (bool, error) {
	stored, ok, err := d.storedVersion(v.Name)
	if err != nil {
		return false, err
	}
	if ok && stored >= v.Version {
		return false, nil
	}
	if _, err := d.db.Exec("DROP VIEW IF EXISTS " + v.Name); err != nil {
		return false, fmt.Errorf("drop view %s: %w", v.Name, err)
	}
	if _, err := d.db.Exec(v.SQL()); err != nil {
		return false, fmt.Errorf("create view %s: %w", v.Name, err)
	}
	if err := d.setVersion(v.Name, v.Version); err != nil {
		return false, err
	}
	return true, nil
}

func (d *DB) storedVersion(subject string) (int, bool, error) {
	var v int
	err := d.db.QueryRow("SELECT version FROM _version WHERE subject = ?", subject).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read version of %s: %w", subject, err)
	}
	return v, true, nil
}

func (d *DB) setVersion(subject string, version int) error {
	_, err := d.db.Exec(`
		INSERT INTO _version (subject, version) VALUES (?, ?)
		ON CONFLICT(subject) DO UPDATE SET version = excluded.version
	`, subject, version)
	if err != nil {
		return fmt.Errorf("set version of %s: %w", subject, err)
	}
	return nil
}

// Rebuild drops a conflicted table, recreates it from the code definition,
// and records the code version. Destructive and operator-triggered only.
func (d *DB) Rebuild(table string) error {
	t, ok := d.tables[table]
	if !ok {
		return fmt.Errorf("%w: unknown table %s", ErrInvalidRecord, table)
	}
	return d.withForeignKeysOff(func() error {
		return d.rebuildTable(t)
	})
}

// withForeignKeysOff suspends foreign key enforcement around fn. Dropping a
// table that other tables reference fails otherwise. The store holds a single
// connection, so the pragma covers every statement fn runs.
func (d *DB) withForeignKeysOff(fn func() error) error {
	if _, err := d.db.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("suspend foreign keys: %w", err)
	}
	defer d.db.Exec("PRAGMA foreign_keys = ON")
	return fn()
}

func (d *DB) rebuildTable(t schema.Table) error {
	if _, err := d.db.Exec("DROP TABLE IF EXISTS " + t.Name); err != nil {
		return fmt.Errorf("drop table %s: %w", t.Name, err)
	}
	if _, err := d.db.Exec(t.DDL()); err != nil {
		return fmt.Errorf("recreate table %s: %w", t.Name, err)
	}
	return d.setVersion(t.Name, t.Version)
}

// RebuildAll drops every entity table and view and recreates them from the
// code definitions, recording code versions throughout. This is the recovery
// path for a store-wide version conflict; all data is lost.
func (d *DB) RebuildAll() error {
	for _, v := range d.schema.Views {
		if _, err := d.db.Exec("DROP VIEW IF EXISTS " + v.Name); err != nil {
			return fmt.Errorf("drop view %s: %w", v.Name, err)
		}
		if _, err := d.db.Exec("DELETE FROM _version WHERE subject = ?", v.Name); err != nil {
			return fmt.Errorf("reset version of %s: %w", v.Name, err)
		}
	}
	err := d.withForeignKeysOff(func() error {
		for _, t := range d.schema.Tables {
			if err := d.rebuildTable(t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := d.setVersion(d.schema.Name, d.schema.Version); err != nil {
		return err
	}
	return d.reconcileVersions()
}
