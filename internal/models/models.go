// ABOUTME: Core data model for bookmarked restaurants
// ABOUTME: Provides validation, price tiers, and rating normalization

package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxNameLength is the longest accepted restaurant name in bytes.
const MaxNameLength = 255

// RatingStep is the granularity of star ratings.
const RatingStep = 0.5

// MaxRating is the highest star rating.
const MaxRating = 5.0

// ValidateCoordinates checks if latitude and longitude are within valid ranges.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return fmt.Errorf("coordinates cannot be NaN")
	}
	if math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return fmt.Errorf("coordinates cannot be infinite")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateName checks if a name is valid (non-empty, within length limits).
// Note: This validates the raw input - callers should trim whitespace themselves if needed.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("name cannot be empty or whitespace")
	}
	if len(trimmed) > MaxNameLength {
		return fmt.Errorf("name too long (max %d characters)", MaxNameLength)
	}
	return nil
}

// PriceRange is a price tier label. The zero value means "unset".
type PriceRange string

// Price tiers, cheapest first.
const (
	PriceUnset     PriceRange = ""
	PriceCheap     PriceRange = "₩ (저렴)"
	PriceModerate  PriceRange = "₩₩ (보통)"
	PricePricey    PriceRange = "₩₩₩ (조금 비쌈)"
	PriceExpensive PriceRange = "₩₩₩₩ (매우 비쌈)"
)

// PriceRanges lists every settable tier in ascending order.
var PriceRanges = []PriceRange{PriceCheap, PriceModerate, PricePricey, PriceExpensive}

// ParsePriceRange accepts a full tier label, the bare won signs ("₩₩"),
// the tier number ("1" to "4"), or an empty/"none" value for unset.
func ParsePriceRange(s string) (PriceRange, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none", "unset", "선택 안 함":
		return PriceUnset, nil
	}
	for i, p := range PriceRanges {
		signs := strings.Repeat("₩", i+1)
		if s == string(p) || s == signs || s == fmt.Sprint(i+1) {
			return p, nil
		}
	}
	return PriceUnset, fmt.Errorf("unknown price range %q", s)
}

// Tier returns 1 for the cheapest tier through 4, or 0 when unset.
func (p PriceRange) Tier() int {
	for i, r := range PriceRanges {
		if r == p {
			return i + 1
		}
	}
	return 0
}

// NormalizeRating maps a zero rating to nil (no rating) and rejects values
// outside [0, 5] or off the half-star grid.
func NormalizeRating(r *float64) (*float64, error) {
	if r == nil {
		return nil, nil
	}
	v := *r
	if math.IsNaN(v) || v < 0 || v > MaxRating {
		return nil, fmt.Errorf("rating must be between 0 and %.1f", MaxRating)
	}
	if v == 0 {
		return nil, nil
	}
	if math.Mod(v, RatingStep) != 0 {
		return nil, fmt.Errorf("rating must be in steps of %.1f", RatingStep)
	}
	return &v, nil
}

// SnapRating coerces a stored rating onto the half-star grid, clamped to
// [RatingStep, MaxRating]. Zero, negative and NaN values mean no rating.
// Older databases and CSV backups hold arbitrary floats such as 4.3.
func SnapRating(v float64) *float64 {
	if math.IsNaN(v) || v <= 0 {
		return nil
	}
	snapped := math.Round(v/RatingStep) * RatingStep
	snapped = math.Max(RatingStep, math.Min(MaxRating, snapped))
	return &snapped
}

// Restaurant is one bookmarked place.
type Restaurant struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	Memo       string     `json:"memo"`
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	Address    string     `json:"address"`
	Phone      string     `json:"phone"`
	URL        string     `json:"url"`
	PriceRange PriceRange `json:"price_range"`
	Rating     *float64   `json:"rating"`
	Tags       string     `json:"tags"`
	Favorite   bool       `json:"favorite"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// NewRestaurant creates an unsaved restaurant at the given coordinates.
func NewRestaurant(name string, lat, lon float64) *Restaurant {
	return &Restaurant{
		Name: strings.TrimSpace(name),
		Lat:  lat,
		Lon:  lon,
	}
}

// TagList splits the comma separated tags, dropping blanks.
func (r *Restaurant) TagList() []string {
	var tags []string
	for _, t := range strings.Split(r.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// HasRating reports whether a rating has been set.
func (r *Restaurant) HasRating() bool {
	return r.Rating != nil
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}
