// ABOUTME: Summary statistics over a list of restaurants
// ABOUTME: Total, favorites, and average rating of rated records

package query

import "github.com/harper/matjip/internal/models"

// Summary is the sidebar overview of a restaurant list.
type Summary struct {
	Total     int `json:"total"`
	Favorites int `json:"favorites"`
	Rated     int `json:"rated"`

	// AverageRating is nil when nothing is rated.
	AverageRating *float64 `json:"average_rating"`
}

// Summarize counts records and averages the ratings that are present.
func Summarize(records []*models.Restaurant) Summary {
	var s Summary
	var sum float64
	for _, r := range records {
		s.Total++
		if r.Favorite {
			s.Favorites++
		}
		if r.HasRating() {
			s.Rated++
			sum += *r.Rating
		}
	}
	if s.Rated > 0 {
		avg := sum / float64(s.Rated)
		s.AverageRating = &avg
	}
	return s
}
