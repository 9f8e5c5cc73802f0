// ABOUTME: Filter pipeline over a fetched snapshot of restaurants
// ABOUTME: Category, favorite, rating floor, keyword search, then sort; never touches storage

package query

import (
	"sort"
	"strings"

	"github.com/harper/matjip/internal/models"
)

// Category values that disable the category filter. 전체 is the label the
// map sidebar shows.
const (
	AllCategories   = "all"
	AllCategoriesKo = "전체"
)

// IsAllCategories reports whether category selects every category.
func IsAllCategories(category string) bool {
	category = strings.TrimSpace(category)
	return category == "" || strings.EqualFold(category, AllCategories) || category == AllCategoriesKo
}

// Filter selects and orders restaurants. The zero value keeps everything
// in SortRecent order.
type Filter struct {
	Category      string
	FavoritesOnly bool
	// MinRating of 0 or less disables the rating floor and keeps unrated records.
	MinRating float64
	Keyword   string
	// Fields limits keyword matching; nil means DefaultFields.
	Fields []Field
	Sort   SortOrder
}

// Apply runs the pipeline and returns a new slice. The input is not modified.
func Apply(records []*models.Restaurant, f Filter) []*models.Restaurant {
	out := make([]*models.Restaurant, 0, len(records))

	category := strings.TrimSpace(f.Category)
	filterCategory := !IsAllCategories(category)

	for _, r := range records {
		if filterCategory && r.Category != category {
			continue
		}
		if f.FavoritesOnly && !r.Favorite {
			continue
		}
		if f.MinRating > 0 && (r.Rating == nil || *r.Rating < f.MinRating) {
			continue
		}
		out = append(out, r)
	}

	out = Search(out, f.Keyword, f.Fields)
	Sort(out, f.Sort)
	return out
}

// Categories returns the distinct non-empty categories in ascending order.
func Categories(records []*models.Restaurant) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, r := range records {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		categories = append(categories, r.Category)
	}
	sort.Strings(categories)
	return categories
}
