// ABOUTME: CSV export and import for restaurant records
// ABOUTME: Header names match the table columns; imports are all-or-nothing

package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/harper/matjip/internal/models"
)

// Columns is the CSV header, in table column order.
var Columns = []string{
	"id", "name", "category", "memo", "lat", "lon", "address", "phone", "url",
	"price_range", "rating", "tags", "favorite", "created_at", "updated_at",
}

// MandatoryColumns must be present in an imported header.
var MandatoryColumns = []string{"name", "lat", "lon"}

// timestampLayouts are accepted when reading created_at/updated_at cells.
// The last two are what SQLite's CURRENT_TIMESTAMP and older exports produce.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ExportCSV writes every stored restaurant as CSV.
func ExportCSV(repo RestaurantRepository, w io.Writer) error {
	restaurants, err := repo.ListRestaurants()
	if err != nil {
		return fmt.Errorf("list restaurants: %w", err)
	}
	return WriteCSV(w, restaurants)
}

// WriteCSV writes the given restaurants with the standard header.
func WriteCSV(w io.Writer, restaurants []*models.Restaurant) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range restaurants {
		if err := cw.Write(csvRecord(r)); err != nil {
			return fmt.Errorf("write restaurant %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(r *models.Restaurant) []string {
	rating := ""
	if r.HasRating() {
		rating = formatFloat(*r.Rating)
	}
	updatedAt := ""
	if r.UpdatedAt != nil {
		updatedAt = r.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	favorite := "0"
	if r.Favorite {
		favorite = "1"
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Name,
		r.Category,
		r.Memo,
		formatFloat(r.Lat),
		formatFloat(r.Lon),
		r.Address,
		r.Phone,
		r.URL,
		string(r.PriceRange),
		rating,
		r.Tags,
		favorite,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		updatedAt,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ImportCSV reads restaurants from CSV and inserts each row as a new record.
// The header must contain name, lat and lon; otherwise an *ImportFormatError
// is returned and nothing is inserted. Any malformed row also rejects the
// whole file. IDs in the file are ignored and duplicates are not detected.
func ImportCSV(repo RestaurantRepository, r io.Reader) (int, error) {
	restaurants, err := ReadCSV(r)
	if err != nil {
		return 0, err
	}
	if len(restaurants) == 0 {
		return 0, nil
	}

	// Reverse so records that tie on created_at keep their file order when
	// listed newest first.
	reversed := make([]*models.Restaurant, len(restaurants))
	for i, rest := range restaurants {
		reversed[len(restaurants)-1-i] = rest
	}
	return repo.ImportRestaurants(reversed)
}

// ReadCSV parses restaurants from CSV without touching storage.
func ReadCSV(r io.Reader) ([]*models.Restaurant, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ImportFormatError{Missing: append([]string(nil), MandatoryColumns...)}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, name := range MandatoryColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &ImportFormatError{Missing: missing}
	}

	var restaurants []*models.Restaurant
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		rest, err := parseCSVRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		restaurants = append(restaurants, rest)
	}
	return restaurants, nil
}

func parseCSVRecord(record []string, index map[string]int) (*models.Restaurant, error) {
	get := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	lat, err := strconv.ParseFloat(get("lat"), 64)
	if err != nil {
		return nil, &ValidationError{Field: "lat", Message: fmt.Sprintf("not a number: %q", get("lat"))}
	}
	lon, err := strconv.ParseFloat(get("lon"), 64)
	if err != nil {
		return nil, &ValidationError{Field: "lon", Message: fmt.Sprintf("not a number: %q", get("lon"))}
	}

	r := models.NewRestaurant(get("name"), lat, lon)
	r.Category = get("category")
	r.Memo = get("memo")
	r.Address = get("address")
	r.Phone = get("phone")
	r.URL = get("url")
	r.Tags = get("tags")

	if r.PriceRange, err = models.ParsePriceRange(get("price_range")); err != nil {
		return nil, invalid("price_range", err)
	}

	if s := get("rating"); s != "" && !strings.EqualFold(s, "nan") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &ValidationError{Field: "rating", Message: fmt.Sprintf("not a number: %q", s)}
		}
		if v < 0 || v > models.MaxRating {
			return nil, &ValidationError{Field: "rating", Message: fmt.Sprintf("must be between 0 and %.1f, got %s", models.MaxRating, s)}
		}
		r.Rating = models.SnapRating(v)
	}

	if s := get("favorite"); s != "" {
		fav, err := strconv.ParseBool(s)
		if err != nil {
			return nil, &ValidationError{Field: "favorite", Message: fmt.Sprintf("not a boolean: %q", s)}
		}
		r.Favorite = fav
	}

	if s := get("created_at"); s != "" {
		t, err := parseTimestamp(s)
		if err != nil {
			return nil, invalid("created_at", err)
		}
		r.CreatedAt = t
	}
	if s := get("updated_at"); s != "" {
		t, err := parseTimestamp(s)
		if err != nil {
			return nil, invalid("updated_at", err)
		}
		r.UpdatedAt = &t
	}

	if err := prepareRestaurant(r); err != nil {
		return nil, err
	}
	return r, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
