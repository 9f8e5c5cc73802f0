// ABOUTME: SQLite storage implementation for restaurant bookmarks
// ABOUTME: Provides local-only persistence using pure Go SQLite driver

package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/matjip/internal/models"
	_ "modernc.org/sqlite"
)

// selectColumns is the column list read back into a models.Restaurant.
const selectColumns = `id, name, category, memo, lat, lon, address, phone, url,
	price_range, rating, tags, favorite, created_at, updated_at`

// SQLiteDB implements Repository with a local SQLite database.
type SQLiteDB struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Compile-time check that SQLiteDB implements Repository.
var _ Repository = (*SQLiteDB)(nil)

// NewSQLiteDB opens the database at path and brings its schema up to date.
// Creates the directory and database file if they don't exist.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serializes writers; every operation is a single
	// statement or transaction.
	db.SetMaxOpenConns(1)

	s := &SQLiteDB{db: db, path: path, now: time.Now}

	if err := s.Initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteDB) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Reset deletes every restaurant.
func (s *SQLiteDB) Reset() error {
	_, err := s.db.Exec("DELETE FROM restaurants")
	return err
}

// prepareRestaurant trims and validates the editable fields in place.
func prepareRestaurant(r *models.Restaurant) error {
	if r == nil {
		return &ValidationError{Field: "restaurant", Message: "is required"}
	}
	r.Name = strings.TrimSpace(r.Name)
	if err := models.ValidateName(r.Name); err != nil {
		return invalid("name", err)
	}
	if err := models.ValidateCoordinates(r.Lat, r.Lon); err != nil {
		return invalid("coordinates", err)
	}
	price, err := models.ParsePriceRange(string(r.PriceRange))
	if err != nil {
		return invalid("price_range", err)
	}
	r.PriceRange = price
	rating, err := models.NormalizeRating(r.Rating)
	if err != nil {
		return invalid("rating", err)
	}
	r.Rating = rating
	r.Category = strings.TrimSpace(r.Category)
	r.Memo = strings.TrimSpace(r.Memo)
	r.Address = strings.TrimSpace(r.Address)
	r.Phone = strings.TrimSpace(r.Phone)
	r.URL = strings.TrimSpace(r.URL)
	r.Tags = strings.TrimSpace(r.Tags)
	return nil
}

// CreateRestaurant inserts a new restaurant. It assigns the ID, stamps
// CreatedAt and resets Favorite to false.
func (s *SQLiteDB) CreateRestaurant(r *models.Restaurant) error {
	if err := prepareRestaurant(r); err != nil {
		return err
	}

	now := s.now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO restaurants (name, category, memo, lat, lon, address, phone, url,
			price_range, rating, tags, favorite, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		r.Name, r.Category, r.Memo, r.Lat, r.Lon, r.Address, r.Phone, r.URL,
		string(r.PriceRange), ratingArg(r.Rating), r.Tags, now,
	)
	if err != nil {
		return fmt.Errorf("insert restaurant: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted id: %w", err)
	}
	r.ID = id
	r.Favorite = false
	r.CreatedAt = now
	r.UpdatedAt = nil
	return nil
}

// GetRestaurant retrieves a restaurant by ID.
func (s *SQLiteDB) GetRestaurant(id int64) (*models.Restaurant, error) {
	row := s.db.QueryRow("SELECT "+selectColumns+" FROM restaurants WHERE id = ?", id)
	r, err := scanRestaurant(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRestaurants returns every restaurant, newest first with ties broken
// by descending ID.
func (s *SQLiteDB) ListRestaurants() ([]*models.Restaurant, error) {
	rows, err := s.db.Query("SELECT " + selectColumns + " FROM restaurants ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("query restaurants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var restaurants []*models.Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, rows.Err()
}

// UpdateRestaurant replaces the editable fields of an existing restaurant
// and stamps UpdatedAt. ID, CreatedAt and Favorite are never changed here.
// On success r is refreshed from the stored row.
func (s *SQLiteDB) UpdateRestaurant(r *models.Restaurant) error {
	if err := prepareRestaurant(r); err != nil {
		return err
	}

	now := s.now().UTC()
	res, err := s.db.Exec(
		`UPDATE restaurants
		 SET name = ?, category = ?, memo = ?, lat = ?, lon = ?, address = ?, phone = ?,
			url = ?, price_range = ?, rating = ?, tags = ?, updated_at = ?
		 WHERE id = ?`,
		r.Name, r.Category, r.Memo, r.Lat, r.Lon, r.Address, r.Phone, r.URL,
		string(r.PriceRange), ratingArg(r.Rating), r.Tags, now, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update restaurant: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	stored, err := s.GetRestaurant(r.ID)
	if err != nil {
		return err
	}
	*r = *stored
	return nil
}

// DeleteRestaurant permanently removes a restaurant.
func (s *SQLiteDB) DeleteRestaurant(id int64) error {
	res, err := s.db.Exec("DELETE FROM restaurants WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete restaurant: %w", err)
	}
	return requireAffected(res)
}

// SetFavorite sets the favorite flag and stamps UpdatedAt.
func (s *SQLiteDB) SetFavorite(id int64, favorite bool) error {
	res, err := s.db.Exec(
		"UPDATE restaurants SET favorite = ?, updated_at = ? WHERE id = ?",
		boolToInt(favorite), s.now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set favorite: %w", err)
	}
	return requireAffected(res)
}

// ImportRestaurants inserts a batch of restaurants in one transaction.
// Unlike CreateRestaurant it keeps Favorite, CreatedAt and UpdatedAt when
// they are set, so restores reproduce the exported records. Either every
// row is inserted or none is.
func (s *SQLiteDB) ImportRestaurants(rs []*models.Restaurant) (int, error) {
	for i, r := range rs {
		if err := prepareRestaurant(r); err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(
		`INSERT INTO restaurants (name, category, memo, lat, lon, address, phone, url,
			price_range, rating, tags, favorite, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := s.now().UTC()
	ids := make([]int64, len(rs))
	for i, r := range rs {
		createdAt := r.CreatedAt.UTC()
		if r.CreatedAt.IsZero() {
			createdAt = now
		}
		var updatedAt any
		if r.UpdatedAt != nil {
			updatedAt = r.UpdatedAt.UTC()
		}
		res, err := stmt.Exec(
			r.Name, r.Category, r.Memo, r.Lat, r.Lon, r.Address, r.Phone, r.URL,
			string(r.PriceRange), ratingArg(r.Rating), r.Tags, boolToInt(r.Favorite), createdAt, updatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i+1, err)
		}
		if ids[i], err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("read inserted id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	for i, r := range rs {
		r.ID = ids[i]
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
	}
	return len(rs), nil
}

// Count returns the number of stored restaurants.
func (s *SQLiteDB) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM restaurants").Scan(&n); err != nil {
		return 0, fmt.Errorf("count restaurants: %w", err)
	}
	return n, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ratingArg converts an optional rating to a driver value.
func ratingArg(r *float64) any {
	if r == nil {
		return nil
	}
	return *r
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRestaurant reads one row. Text columns may be NULL in databases
// written by older versions, so every optional column goes through a Null type.
func scanRestaurant(sc rowScanner) (*models.Restaurant, error) {
	var (
		r                                                models.Restaurant
		category, memo, address, phone, url, price, tags sql.NullString
		rating                                           sql.NullFloat64
		favorite                                         sql.NullInt64
		createdAt, updatedAt                             sql.NullTime
	)
	err := sc.Scan(&r.ID, &r.Name, &category, &memo, &r.Lat, &r.Lon, &address, &phone, &url,
		&price, &rating, &tags, &favorite, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan restaurant: %w", err)
	}

	r.Category = category.String
	r.Memo = memo.String
	r.Address = address.String
	r.Phone = phone.String
	r.URL = url.String
	r.PriceRange = models.PriceRange(price.String)
	r.Tags = tags.String
	r.Favorite = favorite.Valid && favorite.Int64 != 0
	if rating.Valid {
		r.Rating = models.SnapRating(rating.Float64)
	}
	if createdAt.Valid {
		r.CreatedAt = createdAt.Time.UTC()
	}
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		r.UpdatedAt = &t
	}
	return &r, nil
}
