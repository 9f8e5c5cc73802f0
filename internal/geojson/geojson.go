// ABOUTME: GeoJSON generation utilities
// ABOUTME: Converts restaurant markers and the selected position to FeatureCollections

package geojson

import (
	"encoding/json"

	"github.com/harper/matjip/internal/mapview"
)

// Feature kinds carried in the "kind" property.
const (
	KindRestaurant = "restaurant"
	KindSelection  = "selection"
)

// FeatureCollection represents a GeoJSON FeatureCollection. Center and Zoom
// are foreign members telling the map widget where to start.
type FeatureCollection struct {
	Type     string             `json:"type"`
	Features []Feature          `json:"features"`
	Center   *mapview.Selection `json:"center,omitempty"`
	Zoom     int                `json:"zoom,omitempty"`
}

// Feature represents a GeoJSON Feature.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry represents a GeoJSON Geometry.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// PointCoordinates represents [longitude, latitude] for a Point.
type PointCoordinates [2]float64

func point(lat, lon float64, props map[string]interface{}) Feature {
	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: PointCoordinates{lon, lat},
		},
		Properties: props,
	}
}

// FromMarkers converts markers to a FeatureCollection of Points. When sel is
// non-nil it is appended as a final feature of kind "selection". The
// collection is centered per mapview.Center at the default zoom.
func FromMarkers(markers []mapview.Marker, sel *mapview.Selection) *FeatureCollection {
	features := make([]Feature, 0, len(markers)+1)

	for _, m := range markers {
		props := map[string]interface{}{
			"id":       m.ID,
			"name":     m.Label,
			"favorite": m.Favorite,
			"kind":     KindRestaurant,
		}
		if m.Category != "" {
			props["category"] = m.Category
		}
		if m.Rating != nil {
			props["rating"] = *m.Rating
		}
		features = append(features, point(m.Lat, m.Lon, props))
	}

	if sel != nil {
		features = append(features, point(sel.Lat, sel.Lon, map[string]interface{}{
			"name":     "선택한 위치",
			"favorite": false,
			"kind":     KindSelection,
		}))
	}

	center := mapview.Center(markers, sel)
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
		Center:   &center,
		Zoom:     mapview.DefaultZoom,
	}
}

// ToJSON serializes a FeatureCollection to JSON.
func (fc *FeatureCollection) ToJSON() ([]byte, error) {
	return json.Marshal(fc)
}

// ToJSONIndent serializes a FeatureCollection to indented JSON.
func (fc *FeatureCollection) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(fc, "", "  ")
}
