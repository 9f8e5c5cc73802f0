// ABOUTME: Map display adapter: marker tuples and the selected position
// ABOUTME: The selection is a plain value passed between click events and add/edit inputs

package mapview

import (
	"fmt"

	"github.com/harper/matjip/internal/models"
)

// Seoul City Hall, the initial selection before any click.
const (
	DefaultLat = 37.566535
	DefaultLon = 126.977969
)

// DefaultZoom is the initial zoom level suggested to the map widget.
const DefaultZoom = 13

// Marker is what the map widget needs to draw one restaurant.
type Marker struct {
	ID       int64    `json:"id"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Label    string   `json:"label"`
	Category string   `json:"category,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
	Favorite bool     `json:"favorite"`
}

// MarkerFor builds the marker for one restaurant.
func MarkerFor(r *models.Restaurant) Marker {
	return Marker{
		ID:       r.ID,
		Lat:      r.Lat,
		Lon:      r.Lon,
		Label:    r.Name,
		Category: r.Category,
		Rating:   r.Rating,
		Favorite: r.Favorite,
	}
}

// Markers builds markers in the given order.
func Markers(records []*models.Restaurant) []Marker {
	markers := make([]Marker, len(records))
	for i, r := range records {
		markers[i] = MarkerFor(r)
	}
	return markers
}

// Selection is the currently selected map position. It pre-fills the
// coordinates of the add form.
type Selection struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DefaultSelection returns the selection shown before any click.
func DefaultSelection() Selection {
	return Selection{Lat: DefaultLat, Lon: DefaultLon}
}

// Click validates a clicked position and returns it as the new selection.
func Click(lat, lon float64) (Selection, error) {
	if err := models.ValidateCoordinates(lat, lon); err != nil {
		return Selection{}, fmt.Errorf("invalid click: %w", err)
	}
	return Selection{Lat: lat, Lon: lon}, nil
}

// Center returns where the map should be centered: the selection when
// there is one, otherwise the mean of the markers, otherwise the default.
func Center(markers []Marker, sel *Selection) Selection {
	if sel != nil {
		return *sel
	}
	if len(markers) == 0 {
		return DefaultSelection()
	}
	var lat, lon float64
	for _, m := range markers {
		lat += m.Lat
		lon += m.Lon
	}
	n := float64(len(markers))
	return Selection{Lat: lat / n, Lon: lon / n}
}
