// ABOUTME: Sort orders for restaurant lists
// ABOUTME: Recent, name, and rating with unrated records last

package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harper/matjip/internal/models"
)

// SortOrder names a list ordering.
type SortOrder string

const (
	// SortRecent is newest first, ties broken by descending id. It matches
	// the store's natural order and is the default.
	SortRecent SortOrder = "recent"
	// SortName is ascending by name, ties broken by ascending id.
	SortName SortOrder = "name"
	// SortRating is highest rated first with unrated records last, then
	// newest first.
	SortRating SortOrder = "rating"
)

// SortOrders lists the accepted orders, default first.
var SortOrders = []SortOrder{SortRecent, SortName, SortRating}

// SortOrderNames returns SortOrders as strings, for flag help and schemas.
func SortOrderNames() []string {
	names := make([]string, len(SortOrders))
	for i, o := range SortOrders {
		names[i] = string(o)
	}
	return names
}

// ParseSortOrder accepts any of SortOrders; blank means SortRecent.
func ParseSortOrder(s string) (SortOrder, error) {
	want := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	if want == "" {
		return SortRecent, nil
	}
	for _, o := range SortOrders {
		if o == want {
			return o, nil
		}
	}
	return SortRecent, fmt.Errorf("unknown sort order %q (want one of %s)", s, strings.Join(SortOrderNames(), ", "))
}

// Sort orders records in place.
func Sort(records []*models.Restaurant, order SortOrder) {
	var less func(a, b *models.Restaurant) bool
	switch order {
	case SortName:
		less = func(a, b *models.Restaurant) bool {
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.ID < b.ID
		}
	case SortRating:
		less = func(a, b *models.Restaurant) bool {
			if a.HasRating() != b.HasRating() {
				return a.HasRating()
			}
			if a.Rating != nil && *a.Rating != *b.Rating {
				return *a.Rating > *b.Rating
			}
			return newer(a, b)
		}
	default:
		less = newer
	}
	sort.SliceStable(records, func(i, j int) bool {
		return less(records[i], records[j])
	})
}

func newer(a, b *models.Restaurant) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
