// ABOUTME: Terminal UI formatting utilities
// ABOUTME: Provides human-readable output for restaurants, ratings, and stats

package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harper/matjip/internal/models"
	"github.com/harper/matjip/internal/query"
)

var faint = color.New(color.Faint)

// FormatCoordinates formats a lat/lon pair.
func FormatCoordinates(lat, lon float64) string {
	return fmt.Sprintf("(%.4f, %.4f)", lat, lon)
}

// FormatRating renders a rating as five stars with half steps, e.g.
// "★★★★½ 4.5", or "unrated".
func FormatRating(rating *float64) string {
	if rating == nil {
		return faint.Sprint("unrated")
	}
	full := int(math.Floor(*rating))
	half := *rating-float64(full) >= 0.5
	var b strings.Builder
	b.WriteString(strings.Repeat("★", full))
	n := full
	if half {
		b.WriteString("½")
		n++
	}
	b.WriteString(strings.Repeat("☆", 5-n))
	return fmt.Sprintf("%s %.1f", color.YellowString(b.String()), *rating)
}

// FormatRestaurantLine formats a restaurant as one list row.
func FormatRestaurantLine(r *models.Restaurant) string {
	if r == nil {
		return faint.Sprint("(invalid restaurant)")
	}

	name := color.GreenString(r.Name)
	if r.Favorite {
		name = color.YellowString("♥ ") + name
	}

	parts := []string{fmt.Sprintf("%s %s", faint.Sprintf("#%d", r.ID), name)}
	if r.Category != "" {
		parts = append(parts, color.CyanString(r.Category))
	}
	if r.HasRating() {
		parts = append(parts, FormatRating(r.Rating))
	}
	if r.PriceRange != models.PriceUnset {
		parts = append(parts, strings.Repeat("₩", r.PriceRange.Tier()))
	}

	where := r.Address
	if where == "" {
		where = FormatCoordinates(r.Lat, r.Lon)
	}
	parts = append(parts, faint.Sprint(where))

	return strings.Join(parts, " - ")
}

// FormatRestaurantDetail formats every field of a restaurant, one per line.
func FormatRestaurantDetail(r *models.Restaurant) string {
	if r == nil {
		return faint.Sprint("(invalid restaurant)")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", color.GreenString(r.Name), faint.Sprintf("#%d", r.ID))

	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "  %-10s %s\n", label+":", value)
	}
	row("Category", r.Category)
	row("Location", FormatCoordinates(r.Lat, r.Lon))
	row("Address", r.Address)
	row("Phone", r.Phone)
	row("URL", r.URL)
	row("Price", string(r.PriceRange))
	row("Rating", FormatRating(r.Rating))
	row("Tags", strings.Join(r.TagList(), ", "))
	row("Memo", r.Memo)
	if r.Favorite {
		row("Favorite", color.YellowString("yes"))
	}
	row("Added", FormatRelativeTime(r.CreatedAt))
	if r.UpdatedAt != nil {
		row("Updated", FormatRelativeTime(*r.UpdatedAt))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatStats formats a summary as a single line.
func FormatStats(s query.Summary) string {
	avg := faint.Sprint("no ratings")
	if s.AverageRating != nil {
		avg = fmt.Sprintf("average %.2f", *s.AverageRating)
	}
	return fmt.Sprintf("%s restaurants, %s favorites, %d rated (%s)",
		color.GreenString("%d", s.Total),
		color.YellowString("%d", s.Favorites),
		s.Rated,
		avg)
}

// FormatRelativeTime formats a time as relative to now.
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	// Handle future times (clock skew, bad data)
	if diff < 0 {
		return color.YellowString("in the future")
	}

	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	}
	if diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(diff.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
