// ABOUTME: Tests for MCP server, tools, and resources
// ABOUTME: Verifies MCP integration through the bookmark service with a mock repository

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/harper/matjip/internal/bookmarks"
	"github.com/harper/matjip/internal/geocode"
	"github.com/harper/matjip/internal/logging"
	"github.com/harper/matjip/internal/models"
	"github.com/harper/matjip/internal/storage"
)

// mockRepo implements storage.RestaurantRepository for testing.
type mockRepo struct {
	restaurants map[int64]*models.Restaurant
	nextID      int64

	createErr error
	getErr    error
	listErr   error
	updateErr error
	deleteErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{restaurants: make(map[int64]*models.Restaurant)}
}

func (m *mockRepo) CreateRestaurant(r *models.Restaurant) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	r.ID = m.nextID
	r.Favorite = false
	r.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(r.ID) * time.Second)
	stored := *r
	m.restaurants[r.ID] = &stored
	return nil
}

func (m *mockRepo) GetRestaurant(id int64) (*models.Restaurant, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.restaurants[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) ListRestaurants() ([]*models.Restaurant, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*models.Restaurant, 0, len(m.restaurants))
	for _, r := range m.restaurants {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockRepo) UpdateRestaurant(r *models.Restaurant) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	existing, ok := m.restaurants[r.ID]
	if !ok {
		return storage.ErrNotFound
	}
	r.Favorite = existing.Favorite
	r.CreatedAt = existing.CreatedAt
	now := existing.CreatedAt.Add(time.Hour)
	r.UpdatedAt = &now
	stored := *r
	m.restaurants[r.ID] = &stored
	return nil
}

func (m *mockRepo) DeleteRestaurant(id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.restaurants[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.restaurants, id)
	return nil
}

func (m *mockRepo) SetFavorite(id int64, favorite bool) error {
	r, ok := m.restaurants[id]
	if !ok {
		return storage.ErrNotFound
	}
	r.Favorite = favorite
	return nil
}

func (m *mockRepo) ImportRestaurants(rs []*models.Restaurant) (int, error) {
	for _, r := range rs {
		if err := m.CreateRestaurant(r); err != nil {
			return 0, err
		}
	}
	return len(rs), nil
}

func (m *mockRepo) Count() (int, error) {
	return len(m.restaurants), nil
}

var testResolver = geocode.Static{
	"서울특별시 중구 세종대로 110": {Lat: 37.5663, Lon: 126.9779, DisplayName: "서울특별시청"},
}

func newTestServer(t *testing.T, repo *mockRepo) *Server {
	t.Helper()
	svc := bookmarks.New(repo, testResolver, bookmarks.WithLogger(logging.Discard()))
	server, err := NewServer(svc)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server
}

func addRestaurant(t *testing.T, server *Server, name string, lat, lon float64) RestaurantOutput {
	t.Helper()
	_, output, err := server.handleAddRestaurant(context.Background(), nil, AddRestaurantInput{
		Name: name,
		Lat:  models.Float64(lat),
		Lon:  models.Float64(lon),
	})
	if err != nil {
		t.Fatalf("handleAddRestaurant failed: %v", err)
	}
	return output
}

func strPtr(s string) *string { return &s }

// Tests

func TestNewServer(t *testing.T) {
	server := newTestServer(t, newMockRepo())
	if server.svc == nil {
		t.Error("expected non-nil service")
	}
	if server.mcp == nil {
		t.Error("expected non-nil mcp server")
	}
}

func TestNewServer_NilService(t *testing.T) {
	_, err := NewServer(nil)
	if err == nil {
		t.Error("expected error for nil service")
	}
}

func TestHandleAddRestaurant(t *testing.T) {
	repo := newMockRepo()
	server := newTestServer(t, repo)

	result, output, err := server.handleAddRestaurant(context.Background(), nil, AddRestaurantInput{
		Name: "김밥천국",
		Lat:  models.Float64(37.5),
		Lon:  models.Float64(127.0),
		Tags: "분식, 김밥",
	})
	if err != nil {
		t.Fatalf("handleAddRestaurant failed: %v", err)
	}
	if result == nil || len(result.Content) != 1 {
		t.Fatal("expected one text content")
	}
	if output.ID == 0 || output.Favorite || output.Rating != nil {
		t.Errorf("unexpected output %+v", output)
	}
	if len(output.Tags) != 2 || output.Tags[1] != "김밥" {
		t.Errorf("expected split tags, got %v", output.Tags)
	}
	if n, _ := repo.Count(); n != 1 {
		t.Errorf("expected 1 restaurant, got %d", n)
	}
}

func TestHandleAddRestaurant_Geocodes(t *testing.T) {
	server := newTestServer(t, newMockRepo())

	_, output, err := server.handleAddRestaurant(context.Background(), nil, AddRestaurantInput{
		Name:    "시청 국밥",
		Address: "서울특별시 중구 세종대로 110",
	})
	if err != nil {
		t.Fatalf("handleAddRestaurant failed: %v", err)
	}
	if output.Lat != 37.5663 || output.Lon != 126.9779 {
		t.Errorf("expected geocoded coordinates, got %v,%v", output.Lat, output.Lon)
	}
}

func TestHandleAddRestaurant_UnresolvedAddress(t *testing.T) {
	server := newTestServer(t, newMockRepo())

	_, _, err := server.handleAddRestaurant(context.Background(), nil, AddRestaurantInput{
		Name:    "어딘가",
		Address: "존재하지않는주소123456",
	})
	if !errors.Is(err, storage.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestHandleAddRestaurant_InvalidName(t *testing.T) {
	server := newTestServer(t, newMockRepo())

	_, _, err := server.handleAddRestaurant(context.Background(), nil, AddRestaurantInput{
		Name: "  ",
		Lat:  models.Float64(37.5),
		Lon:  models.Float64(127.0),
	})
	if err == nil {
		t.Error("expected error for blank name")
	}
}

func TestHandleAddRestaurant_CreateError(t *testing.T) {
	repo := newMockRepo()
	repo.createErr = errors.New("database error")
	server := newTestServer(t, repo)

	_, _, err := server.handleAddRestaurant(context.Background(), nil, AddRestaurantInput{
		Name: "김밥천국",
		Lat:  models.Float64(37.5),
		Lon:  models.Float64(127.0),
	})
	if err == nil {
		t.Error("expected error when create fails")
	}
}

func TestHandleUpdateRestaurant_Partial(t *testing.T) {
	server := newTestServer(t, newMockRepo())
	added := addRestaurant(t, server, "원래 이름", 37.5, 127.0)

	_, output, err := server.handleUpdateRestaurant(context.Background(), nil, UpdateRestaurantInput{
		ID:     added.ID,
		Memo:   strPtr("국물이 진하다"),
		Rating: models.Float64(4.5),
	})
	if err != nil {
		t.Fatalf("handleUpdateRestaurant failed: %v", err)
	}
	if output.Name != "원래 이름" || output.Lat != 37.5 {
		t.Errorf("omitted fields should be kept, got %+v", output)
	}
	if output.Memo != "국물이 진하다" || output.Rating == nil || *output.Rating != 4.5 {
		t.Errorf("given fields should change, got %+v", output)
	}
	if output.UpdatedAt == nil {
		t.Error("expected updated_at to be set")
	}
}

func TestHandleUpdateRestaurant_NewAddressGeocodes(t *testing.T) {
	server := newTestServer(t, newMockRepo())
	added := addRestaurant(t, server, "이사한 집", 35.1, 129.0)

	_, output, err := server.handleUpdateRestaurant(context.Background(), nil, UpdateRestaurantInput{
		ID:      added.ID,
		Address: strPtr("서울특별시 중구 세종대로 110"),
	})
	if err != nil {
		t.Fatalf("handleUpdateRestaurant failed: %v", err)
	}
	if output.Lat != 37.5663 || output.Lon != 126.9779 {
		t.Errorf("new address should be geocoded, got %v,%v", output.Lat, output.Lon)
	}

	_, _, err = server.handleUpdateRestaurant(context.Background(), nil, UpdateRestaurantInput{
		ID:      added.ID,
		Address: strPtr("존재하지않는주소123456"),
	})
	if !errors.Is(err, storage.ErrValidation) {
		t.Errorf("unresolvable address without coordinates should fail validation, got %v", err)
	}

	_, output, err = server.handleUpdateRestaurant(context.Background(), nil, UpdateRestaurantInput{
		ID:      added.ID,
		Address: strPtr("존재하지않는주소123456"),
		Lat:     models.Float64(37.1),
		Lon:     models.Float64(127.1),
	})
	if err != nil {
		t.Fatalf("manual coordinates should succeed: %v", err)
	}
	if output.Address != "존재하지않는주소123456" || output.Lat != 37.1 {
		t.Errorf("unexpected output %+v", output)
	}
}

func TestHandleUpdateRestaurant_NotFound(t *testing.T) {
	server := newTestServer(t, newMockRepo())

	_, _, err := server.handleUpdateRestaurant(context.Background(), nil, UpdateRestaurantInput{ID: 42, Name: strPtr("x")})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHandleUpdateRestaurant_UpdateError(t *testing.T) {
	repo := newMockRepo()
	server := newTestServer(t, repo)
	added := addRestaurant(t, server, "실패", 37.5, 127.0)
	repo.updateErr = errors.New("database error")

	_, _, err := server.handleUpdateRestaurant(context.Background(), nil, UpdateRestaurantInput{ID: added.ID, Name: strPtr("y")})
	if err == nil {
		t.Error("expected error when update fails")
	}
}

func TestHandleDeleteRestaurant(t *testing.T) {
	repo := newMockRepo()
	server := newTestServer(t, repo)
	added := addRestaurant(t, server, "폐업", 37.5, 127.0)

	_, output, err := server.handleDeleteRestaurant(context.Background(), nil, IDInput{ID: added.ID})
	if err != nil {
		t.Fatalf("handleDeleteRestaurant failed: %v", err)
	}
	if !output.Success {
		t.Error("expected success")
	}
	if n, _ := repo.Count(); n != 0 {
		t.Errorf("expected 0 restaurants, got %d", n)
	}

	_, _, err = server.handleDeleteRestaurant(context.Background(), nil, IDInput{ID: added.ID})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestHandleDeleteRestaurant_DeleteError(t *testing.T) {
	repo := newMockRepo()
	server := newTestServer(t, repo)
	added := addRestaurant(t, server, "폐업", 37.5, 127.0)
	repo.deleteErr = errors.New("database error")

	_, _, err := server.handleDeleteRestaurant(context.Background(), nil, IDInput{ID: added.ID})
	if err == nil {
		t.Error("expected error when delete fails")
	}
}

func TestHandleToggleFavorite(t *testing.T) {
	server := newTestServer(t, newMockRepo())
	added := addRestaurant(t, server, "단골", 37.5, 127.0)

	_, output, err := server.handleToggleFavorite(context.Background(), nil, ToggleFavoriteInput{ID: added.ID})
	if err != nil || !output.Favorite {
		t.Fatalf("toggle on: got %+v, %v", output, err)
	}

	off := false
	_, output, err = server.handleToggleFavorite(context.Background(), nil, ToggleFavoriteInput{ID: added.ID, Favorite: &off})
	if err != nil || output.Favorite {
		t.Fatalf("explicit off: got %+v, %v", output, err)
	}

	_, _, err = server.handleToggleFavorite(context.Background(), nil, ToggleFavoriteInput{ID: 999})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHandleListRestaurants(t *testing.T) {
	server := newTestServer(t, newMockRepo())
	ctx := context.Background()

	for _, in := range []AddRestaurantInput{
		{Name: "을지면옥", Category: "한식", Rating: models.Float64(4.5), Lat: models.Float64(37.5), Lon: models.Float64(127)},
		{Name: "스시", Category: "일식", Rating: models.Float64(3), Lat: models.Float64(37.5), Lon: models.Float64(127)},
		{Name: "분식집", Category: "분식", Memo: "떡볶이 맛집", Lat: models.Float64(37.5), Lon: models.Float64(127)},
	} {
		if _, _, err := server.handleAddRestaurant(ctx, nil, in); err != nil {
			t.Fatalf("add %s: %v", in.Name, err)
		}
	}

	_, output, err := server.handleListRestaurants(ctx, nil, ListRestaurantsInput{})
	if err != nil {
		t.Fatalf("handleListRestaurants failed: %v", err)
	}
	if output.Count != 3 || output.Restaurants[0].Name != "분식집" {
		t.Errorf("expected newest first, got %+v", output.Restaurants)
	}

	_, output, _ = server.handleListRestaurants(ctx, nil, ListRestaurantsInput{Sort: "rating"})
	if output.Restaurants[0].Name != "을지면옥" || output.Restaurants[2].Rating != nil {
		t.Errorf("rating sort wrong: %+v", output.Restaurants)
	}

	_, output, _ = server.handleListRestaurants(ctx, nil, ListRestaurantsInput{Keyword: "떡볶이"})
	if output.Count != 1 || output.Restaurants[0].Name != "분식집" {
		t.Errorf("keyword filter wrong: %+v", output.Restaurants)
	}

	_, output, _ = server.handleListRestaurants(ctx, nil, ListRestaurantsInput{Category: "일식"})
	if output.Count != 1 {
		t.Errorf("category filter wrong: %+v", output.Restaurants)
	}

	if _, _, err := server.handleListRestaurants(ctx, nil, ListRestaurantsInput{Sort: "price"}); err == nil {
		t.Error("expected error for unknown sort order")
	}
}

func TestHandleListRestaurants_Empty(t *testing.T) {
	server := newTestServer(t, newMockRepo())

	_, output, err := server.handleListRestaurants(context.Background(), nil, ListRestaurantsInput{})
	if err != nil {
		t.Fatalf("handleListRestaurants failed: %v", err)
	}
	if output.Count != 0 || output.Restaurants == nil {
		t.Errorf("expected empty non-nil list, got %+v", output)
	}
}

func TestHandleListRestaurants_Error(t *testing.T) {
	repo := newMockRepo()
	repo.listErr = errors.New("database error")
	server := newTestServer(t, repo)

	_, _, err := server.handleListRestaurants(context.Background(), nil, ListRestaurantsInput{})
	if err == nil {
		t.Error("expected error when list fails")
	}
}

func TestHandleGeocodeAddress(t *testing.T) {
	server := newTestServer(t, newMockRepo())
	ctx := context.Background()

	_, output, err := server.handleGeocodeAddress(ctx, nil, GeocodeInput{Address: "서울특별시 중구 세종대로 110"})
	if err != nil {
		t.Fatalf("handleGeocodeAddress failed: %v", err)
	}
	if !output.Found || output.DisplayName != "서울특별시청" {
		t.Errorf("unexpected output %+v", output)
	}

	_, output, err = server.handleGeocodeAddress(ctx, nil, GeocodeInput{Address: "존재하지않는주소123456"})
	if err != nil || output.Found {
		t.Errorf("unknown address should report found=false, got %+v, %v", output, err)
	}

	if _, _, err := server.handleGeocodeAddress(ctx, nil, GeocodeInput{Address: " "}); err == nil {
		t.Error("expected error for blank address")
	}
}

func TestHandleRestaurantsResource(t *testing.T) {
	server := newTestServer(t, newMockRepo())
	added := addRestaurant(t, server, "김밥천국", 37.5, 127.0)
	if _, _, err := server.handleToggleFavorite(context.Background(), nil, ToggleFavoriteInput{ID: added.ID}); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	result, err := server.handleRestaurantsResource(context.Background(), nil)
	if err != nil {
		t.Fatalf("handleRestaurantsResource failed: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(result.Contents))
	}
	content := result.Contents[0]
	if content.URI != "matjip://restaurants" {
		t.Errorf("expected URI 'matjip://restaurants', got %q", content.URI)
	}
	if content.MIMEType != "application/json" {
		t.Errorf("expected MIME type 'application/json', got %q", content.MIMEType)
	}

	var body RestaurantsResource
	if err := json.Unmarshal([]byte(content.Text), &body); err != nil {
		t.Fatalf("resource is not JSON: %v", err)
	}
	if len(body.Restaurants) != 1 || body.Stats.Favorites != 1 {
		t.Errorf("unexpected resource body %+v", body)
	}
}

func TestHandleRestaurantsResource_Error(t *testing.T) {
	repo := newMockRepo()
	repo.listErr = errors.New("database error")
	server := newTestServer(t, repo)

	_, err := server.handleRestaurantsResource(context.Background(), nil)
	if err == nil {
		t.Error("expected error when list fails")
	}
}
