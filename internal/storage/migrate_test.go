// ABOUTME: Tests for schema creation and upgrades of older databases
// ABOUTME: Covers legacy column backfill, idempotence, and rejection of foreign tables

package storage

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/matjip/internal/models"
)

// legacyDB writes a database file using an older, smaller restaurants table.
func legacyDB(t *testing.T, ddl string, inserts ...string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	raw, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open raw db: %v", err)
	}
	defer func() { _ = raw.Close() }()

	if _, err := raw.Exec(ddl); err != nil {
		t.Fatalf("failed to create legacy table: %v", err)
	}
	for _, stmt := range inserts {
		if _, err := raw.Exec(stmt); err != nil {
			t.Fatalf("failed to seed legacy row: %v", err)
		}
	}
	return dbPath
}

func TestInitialize_FreshDatabase(t *testing.T) {
	db := testDB(t)

	version, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("failed to read version: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("got version %d, want %d", version, CurrentSchemaVersion)
	}

	cols, err := db.Columns()
	if err != nil {
		t.Fatalf("failed to read columns: %v", err)
	}
	for _, name := range Columns {
		if !cols[name] {
			t.Errorf("missing column %s", name)
		}
	}
}

func TestInitialize_Idempotent(t *testing.T) {
	db := testDB(t)
	mustCreate(t, db, "a", 1, 1)

	for i := 0; i < 3; i++ {
		if err := db.Initialize(); err != nil {
			t.Fatalf("initialize run %d: %v", i, err)
		}
	}

	count, err := db.Count()
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d rows, want 1", count)
	}
}

func TestInitialize_UpgradesLegacyTable(t *testing.T) {
	dbPath := legacyDB(t,
		`CREATE TABLE restaurants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			category TEXT,
			memo TEXT,
			lat REAL NOT NULL,
			lon REAL NOT NULL
		)`,
		`INSERT INTO restaurants (name, category, memo, lat, lon) VALUES ('을지면옥', '한식', '평양냉면', 37.5663, 126.9916)`,
		`INSERT INTO restaurants (name, lat, lon) VALUES ('이름만', 35.0, 129.0)`,
	)

	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		t.Fatalf("failed to open legacy db: %v", err)
	}
	defer db.Close()

	cols, err := db.Columns()
	if err != nil {
		t.Fatalf("failed to read columns: %v", err)
	}
	for _, name := range []string{"favorite", "created_at", "updated_at", "rating", "price_range", "tags"} {
		if !cols[name] {
			t.Errorf("column %s was not added", name)
		}
	}

	restaurants, err := db.ListRestaurants()
	if err != nil {
		t.Fatalf("failed to list upgraded rows: %v", err)
	}
	if len(restaurants) != 2 {
		t.Fatalf("got %d rows, want 2", len(restaurants))
	}

	byName := map[string]bool{}
	for _, r := range restaurants {
		byName[r.Name] = true
		if r.Favorite {
			t.Errorf("%s: expected favorite false", r.Name)
		}
		if r.CreatedAt.IsZero() {
			t.Errorf("%s: expected created_at to be backfilled", r.Name)
		}
		if r.UpdatedAt != nil {
			t.Errorf("%s: expected no updated_at", r.Name)
		}
		if r.Rating != nil {
			t.Errorf("%s: expected absent rating", r.Name)
		}
		if r.Name == "을지면옥" && (r.Category != "한식" || r.Memo != "평양냉면") {
			t.Errorf("existing values disturbed: %+v", r)
		}
	}
	if !byName["을지면옥"] || !byName["이름만"] {
		t.Errorf("rows lost during upgrade: %v", byName)
	}

	// New rows work against the upgraded table.
	r := mustCreate(t, db, "new", 1, 1)
	if err := db.SetFavorite(r.ID, true); err != nil {
		t.Fatalf("failed to set favorite on upgraded table: %v", err)
	}
}

func TestInitialize_LegacyOffGridRatings(t *testing.T) {
	dbPath := legacyDB(t,
		`CREATE TABLE restaurants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			category TEXT,
			memo TEXT,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			rating REAL,
			favorite INTEGER
		)`,
		`INSERT INTO restaurants (name, memo, lat, lon, rating, favorite) VALUES ('사계절', 'old', 37.5, 127.0, 4.3, NULL)`,
		`INSERT INTO restaurants (name, lat, lon, rating) VALUES ('과대평가', 37.5, 127.0, 7)`,
		`INSERT INTO restaurants (name, lat, lon, rating) VALUES ('음수', 37.5, 127.0, -1)`,
	)

	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		t.Fatalf("failed to open legacy db: %v", err)
	}
	defer db.Close()

	restaurants, err := db.ListRestaurants()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	ratings := map[string]*float64{}
	for _, r := range restaurants {
		ratings[r.Name] = r.Rating
		if r.Favorite {
			t.Errorf("%s: NULL favorite should read as false", r.Name)
		}
	}
	if got := ratings["사계절"]; got == nil || *got != 4.5 {
		t.Errorf("4.3 should read back as 4.5, got %v", got)
	}
	if got := ratings["과대평가"]; got == nil || *got != 5 {
		t.Errorf("7 should read back as 5, got %v", got)
	}
	if got := ratings["음수"]; got != nil {
		t.Errorf("negative rating should read back as absent, got %v", *got)
	}

	// Editing a migrated row writes its snapped rating back.
	var target *models.Restaurant
	for _, r := range restaurants {
		if r.Name == "사계절" {
			target = r
		}
	}
	target.Memo = "changed"
	if err := db.UpdateRestaurant(target); err != nil {
		t.Fatalf("update of migrated row failed: %v", err)
	}
	if target.Memo != "changed" || target.Rating == nil || *target.Rating != 4.5 {
		t.Errorf("unexpected record after update: %+v", target)
	}

	var buf bytes.Buffer
	if err := ExportCSV(db, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if _, err := ImportCSV(testDB(t), &buf); err != nil {
		t.Errorf("exported legacy rows should import cleanly: %v", err)
	}
}

func TestInitialize_UpgradesTableWithoutVersion(t *testing.T) {
	// A full table written before user_version was tracked.
	dbPath := legacyDB(t, createRestaurantsTable,
		`INSERT INTO restaurants (name, lat, lon, favorite) VALUES ('단골', 1, 1, 1)`,
	)

	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	restaurants, err := db.ListRestaurants()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(restaurants) != 1 || !restaurants[0].Favorite {
		t.Errorf("existing favorite lost: %+v", restaurants)
	}

	version, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("failed to read version: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("got version %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestInitialize_RejectsTableWithoutCoordinates(t *testing.T) {
	dbPath := legacyDB(t, `CREATE TABLE restaurants (id INTEGER PRIMARY KEY, name TEXT)`)

	_, err := NewSQLiteDB(dbPath)
	if err == nil {
		t.Fatal("expected error for table without lat/lon")
	}
	if !strings.Contains(err.Error(), "lat") {
		t.Errorf("error should name the missing column, got %v", err)
	}
}
