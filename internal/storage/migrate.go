// ABOUTME: Versioned, additive schema migrations for the restaurants table
// ABOUTME: Repairs databases written by older versions by adding missing columns

package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

// CurrentSchemaVersion is the user_version written after all migrations ran.
const CurrentSchemaVersion = 3

const createRestaurantsTable = `
	CREATE TABLE IF NOT EXISTS restaurants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		category TEXT,
		memo TEXT,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		address TEXT,
		phone TEXT,
		url TEXT,
		price_range TEXT,
		rating REAL,
		tags TEXT,
		favorite INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP
	)`

// column describes an optional column that older databases may lack.
type column struct {
	name string
	ddl  string
}

// requiredColumns must exist in any table we agree to open; they cannot be
// added after the fact because they have no sensible default.
var requiredColumns = []string{"id", "name", "lat", "lon"}

// optionalColumns are added with ALTER TABLE when missing, in table order.
var optionalColumns = []column{
	{"category", "category TEXT"},
	{"memo", "memo TEXT"},
	{"address", "address TEXT"},
	{"phone", "phone TEXT"},
	{"url", "url TEXT"},
	{"price_range", "price_range TEXT"},
	{"rating", "rating REAL"},
	{"tags", "tags TEXT"},
	{"favorite", "favorite INTEGER NOT NULL DEFAULT 0"},
	// SQLite rejects ADD COLUMN with a non-constant default, so created_at
	// is added nullable and backfilled.
	{"created_at", "created_at TIMESTAMP"},
	{"updated_at", "updated_at TIMESTAMP"},
}

// migration is one schema step. Every step must be idempotent so a crash
// between the step and the version bump is harmless.
type migration struct {
	version int
	name    string
	apply   func(s *SQLiteDB, tx *sql.Tx) error
}

var migrations = []migration{
	{1, "create restaurants table", func(_ *SQLiteDB, tx *sql.Tx) error {
		_, err := tx.Exec(createRestaurantsTable)
		return err
	}},
	{2, "add missing columns", (*SQLiteDB).addMissingColumns},
	{3, "index created_at", func(_ *SQLiteDB, tx *sql.Tx) error {
		_, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_restaurants_created_at ON restaurants(created_at, id)")
		return err
	}},
}

// Initialize creates or upgrades the schema. It is safe to call on every
// startup and never drops or rewrites existing values.
func (s *SQLiteDB) Initialize() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current int
	if err := tx.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := m.apply(s, tx); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		current = m.version
	}

	// PRAGMA does not accept bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", current)); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return tx.Commit()
}

// addMissingColumns diffs the live column set against the current schema and
// adds whatever is missing.
func (s *SQLiteDB) addMissingColumns(tx *sql.Tx) error {
	existing, err := tableColumns(tx, "restaurants")
	if err != nil {
		return err
	}

	var missing []string
	for _, name := range requiredColumns {
		if !existing[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("restaurants table lacks required columns: %s", strings.Join(missing, ", "))
	}

	for _, col := range optionalColumns {
		if existing[col.name] {
			continue
		}
		if _, err := tx.Exec("ALTER TABLE restaurants ADD COLUMN " + col.ddl); err != nil {
			return fmt.Errorf("add column %s: %w", col.name, err)
		}
		if col.name == "created_at" {
			if _, err := tx.Exec("UPDATE restaurants SET created_at = ? WHERE created_at IS NULL", s.now().UTC()); err != nil {
				return fmt.Errorf("backfill created_at: %w", err)
			}
		}
	}
	return nil
}

// tableColumns returns the set of column names reported by PRAGMA table_info.
func tableColumns(q interface {
	Query(query string, args ...any) (*sql.Rows, error)
}, table string) (map[string]bool, error) {
	rows, err := q.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column info: %w", err)
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}

// Columns returns the live column names of the restaurants table.
func (s *SQLiteDB) Columns() (map[string]bool, error) {
	return tableColumns(s.db, "restaurants")
}

// SchemaVersion returns the stored schema version.
func (s *SQLiteDB) SchemaVersion() (int, error) {
	var v int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
