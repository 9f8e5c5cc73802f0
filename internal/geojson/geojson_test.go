// ABOUTME: Unit tests for GeoJSON generation
// ABOUTME: Tests marker and selection feature collections

package geojson

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/harper/matjip/internal/mapview"
	"github.com/harper/matjip/internal/models"
)

func TestFromMarkers(t *testing.T) {
	markers := []mapview.Marker{
		{ID: 1, Lat: 37.5663, Lon: 126.9916, Label: "을지면옥", Category: "한식", Rating: models.Float64(4.5), Favorite: true},
		{ID: 2, Lat: 35.1796, Lon: 129.0756, Label: "돼지국밥"},
	}

	fc := FromMarkers(markers, nil)

	if fc.Type != "FeatureCollection" {
		t.Errorf("expected FeatureCollection type, got %s", fc.Type)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}

	feature := fc.Features[0]
	if feature.Type != "Feature" {
		t.Errorf("expected Feature type, got %s", feature.Type)
	}
	if feature.Geometry.Type != "Point" {
		t.Errorf("expected Point geometry, got %s", feature.Geometry.Type)
	}

	coords, ok := feature.Geometry.Coordinates.(PointCoordinates)
	if !ok {
		t.Fatal("expected PointCoordinates")
	}
	// GeoJSON uses [lng, lat] order
	if coords[0] != 126.9916 || coords[1] != 37.5663 {
		t.Errorf("expected [126.9916, 37.5663], got %v", coords)
	}

	if feature.Properties["name"] != "을지면옥" {
		t.Errorf("expected name 을지면옥, got %v", feature.Properties["name"])
	}
	if feature.Properties["favorite"] != true {
		t.Errorf("expected favorite true, got %v", feature.Properties["favorite"])
	}
	if feature.Properties["kind"] != KindRestaurant {
		t.Errorf("expected kind restaurant, got %v", feature.Properties["kind"])
	}
	if feature.Properties["rating"] != 4.5 {
		t.Errorf("expected rating 4.5, got %v", feature.Properties["rating"])
	}

	if _, ok := fc.Features[1].Properties["rating"]; ok {
		t.Error("unrated marker should not carry a rating")
	}
}

func TestFromMarkers_WithSelection(t *testing.T) {
	sel := mapview.DefaultSelection()
	fc := FromMarkers(nil, &sel)

	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	f := fc.Features[0]
	if f.Properties["kind"] != KindSelection {
		t.Errorf("expected selection kind, got %v", f.Properties["kind"])
	}
	coords := f.Geometry.Coordinates.(PointCoordinates)
	if coords[0] != mapview.DefaultLon || coords[1] != mapview.DefaultLat {
		t.Errorf("unexpected selection coordinates %v", coords)
	}
	if fc.Center == nil || *fc.Center != sel {
		t.Errorf("expected center on the selection, got %v", fc.Center)
	}
}

func TestFromMarkers_CenterAndZoom(t *testing.T) {
	markers := []mapview.Marker{
		{ID: 1, Lat: 37.0, Lon: 127.0, Label: "a"},
		{ID: 2, Lat: 35.0, Lon: 129.0, Label: "b"},
	}
	fc := FromMarkers(markers, nil)

	want := mapview.Selection{Lat: 36.0, Lon: 128.0}
	if fc.Center == nil || *fc.Center != want {
		t.Errorf("expected center %v, got %v", want, fc.Center)
	}
	if fc.Zoom != mapview.DefaultZoom {
		t.Errorf("expected zoom %d, got %d", mapview.DefaultZoom, fc.Zoom)
	}

	data, err := fc.ToJSON()
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if !strings.Contains(string(data), `"center":{"lat":36,"lon":128}`) {
		t.Errorf("expected center member, got %s", data)
	}
}

func TestFromMarkers_Empty(t *testing.T) {
	fc := FromMarkers(nil, nil)

	data, err := fc.ToJSON()
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if !strings.Contains(string(data), `"features":[]`) {
		t.Errorf("expected empty features array, got %s", data)
	}
}

func TestToJSONIndent(t *testing.T) {
	fc := FromMarkers([]mapview.Marker{{ID: 1, Lat: 1, Lon: 2, Label: "x"}}, nil)

	data, err := fc.ToJSONIndent()
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["type"] != "FeatureCollection" {
		t.Errorf("unexpected type %v", decoded["type"])
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("expected indented output")
	}
}
