// ABOUTME: MCP tool definitions and handlers
// ABOUTME: Add, update, delete, favorite, list, and geocode restaurants for AI agents

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harper/matjip/internal/bookmarks"
	"github.com/harper/matjip/internal/models"
	"github.com/harper/matjip/internal/query"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	s.registerAddRestaurantTool()
	s.registerUpdateRestaurantTool()
	s.registerDeleteRestaurantTool()
	s.registerToggleFavoriteTool()
	s.registerListRestaurantsTool()
	s.registerGeocodeAddressTool()
}

// RestaurantOutput defines output for restaurant tools.
type RestaurantOutput struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Category   string     `json:"category,omitempty"`
	Memo       string     `json:"memo,omitempty"`
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	Address    string     `json:"address,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	URL        string     `json:"url,omitempty"`
	PriceRange string     `json:"price_range,omitempty"`
	Rating     *float64   `json:"rating,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Favorite   bool       `json:"favorite"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

func restaurantOutput(r *models.Restaurant) RestaurantOutput {
	return RestaurantOutput{
		ID:         r.ID,
		Name:       r.Name,
		Category:   r.Category,
		Memo:       r.Memo,
		Lat:        r.Lat,
		Lon:        r.Lon,
		Address:    r.Address,
		Phone:      r.Phone,
		URL:        r.URL,
		PriceRange: string(r.PriceRange),
		Rating:     r.Rating,
		Tags:       r.TagList(),
		Favorite:   r.Favorite,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// textResult renders output as indented JSON text content.
func textResult(output any) *mcp.CallToolResult {
	jsonBytes, _ := json.MarshalIndent(output, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonBytes)}},
	}
}

// restaurantFields are the editable properties shared by add and update.
func restaurantFields() map[string]interface{} {
	return map[string]interface{}{
		"name": map[string]interface{}{
			"type":        "string",
			"description": "Restaurant name",
		},
		"lat": map[string]interface{}{
			"type":        "number",
			"description": "Latitude (-90 to 90). Omit together with lon to geocode the address.",
		},
		"lon": map[string]interface{}{
			"type":        "number",
			"description": "Longitude (-180 to 180)",
		},
		"category": map[string]interface{}{
			"type":        "string",
			"description": "Category such as 한식, 일식, 카페",
		},
		"memo": map[string]interface{}{
			"type":        "string",
			"description": "Free-form note",
		},
		"address": map[string]interface{}{
			"type":        "string",
			"description": "Street address; resolved to coordinates when lat/lon are omitted",
		},
		"phone": map[string]interface{}{
			"type": "string",
		},
		"url": map[string]interface{}{
			"type": "string",
		},
		"price_range": map[string]interface{}{
			"type":        "string",
			"description": "Price tier 1-4 (or ₩ to ₩₩₩₩); empty for unset",
		},
		"rating": map[string]interface{}{
			"type":        "number",
			"description": "Star rating 0.5-5 in half steps; 0 clears it",
		},
		"tags": map[string]interface{}{
			"type":        "string",
			"description": "Comma separated tags",
		},
	}
}

// AddRestaurantInput defines input for add_restaurant tool.
type AddRestaurantInput struct {
	Name       string   `json:"name"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
	Category   string   `json:"category,omitempty"`
	Memo       string   `json:"memo,omitempty"`
	Address    string   `json:"address,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	URL        string   `json:"url,omitempty"`
	PriceRange string   `json:"price_range,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	Tags       string   `json:"tags,omitempty"`
}

func (s *Server) registerAddRestaurantTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_restaurant",
		Description: "Bookmark a restaurant. Give lat/lon, or an address to look up. New bookmarks are not favorites.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": restaurantFields(),
			"required":   []string{"name"},
		},
	}, s.handleAddRestaurant)
}

func (s *Server) handleAddRestaurant(ctx context.Context, req *mcp.CallToolRequest, input AddRestaurantInput) (*mcp.CallToolResult, RestaurantOutput, error) {
	r, err := s.svc.Add(ctx, bookmarks.Draft{
		Name:       input.Name,
		Category:   input.Category,
		Memo:       input.Memo,
		Lat:        input.Lat,
		Lon:        input.Lon,
		Address:    input.Address,
		Phone:      input.Phone,
		URL:        input.URL,
		PriceRange: input.PriceRange,
		Rating:     input.Rating,
		Tags:       input.Tags,
	})
	if err != nil {
		return nil, RestaurantOutput{}, fmt.Errorf("failed to add restaurant: %w", err)
	}

	output := restaurantOutput(r)
	return textResult(output), output, nil
}

// UpdateRestaurantInput defines input for update_restaurant tool. Omitted
// fields keep their stored values.
type UpdateRestaurantInput struct {
	ID         int64    `json:"id"`
	Name       *string  `json:"name,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
	Category   *string  `json:"category,omitempty"`
	Memo       *string  `json:"memo,omitempty"`
	Address    *string  `json:"address,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	URL        *string  `json:"url,omitempty"`
	PriceRange *string  `json:"price_range,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	Tags       *string  `json:"tags,omitempty"`
}

func (s *Server) registerUpdateRestaurantTool() {
	props := restaurantFields()
	props["id"] = map[string]interface{}{
		"type":        "integer",
		"description": "ID of the restaurant to edit",
	}
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update_restaurant",
		Description: "Edit a bookmarked restaurant. Only the given fields change. A new address without lat/lon is geocoded.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": props,
			"required":   []string{"id"},
		},
	}, s.handleUpdateRestaurant)
}

// overlay replaces *dst with *src when src is set.
func overlay(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func (s *Server) handleUpdateRestaurant(ctx context.Context, req *mcp.CallToolRequest, input UpdateRestaurantInput) (*mcp.CallToolResult, RestaurantOutput, error) {
	existing, err := s.svc.Get(input.ID)
	if err != nil {
		return nil, RestaurantOutput{}, fmt.Errorf("restaurant %d: %w", input.ID, err)
	}

	d := bookmarks.DraftFrom(existing)
	overlay(&d.Name, input.Name)
	overlay(&d.Category, input.Category)
	overlay(&d.Memo, input.Memo)
	overlay(&d.Phone, input.Phone)
	overlay(&d.URL, input.URL)
	overlay(&d.PriceRange, input.PriceRange)
	overlay(&d.Tags, input.Tags)
	if input.Rating != nil {
		d.Rating = input.Rating
	}

	switch {
	case input.Lat != nil || input.Lon != nil:
		if input.Lat != nil {
			d.Lat = input.Lat
		}
		if input.Lon != nil {
			d.Lon = input.Lon
		}
		overlay(&d.Address, input.Address)
	case input.Address != nil && strings.TrimSpace(*input.Address) != existing.Address:
		d.Address = *input.Address
		d.Lat, d.Lon = nil, nil
	default:
		overlay(&d.Address, input.Address)
	}

	r, err := s.svc.Update(ctx, input.ID, d)
	if err != nil {
		return nil, RestaurantOutput{}, fmt.Errorf("failed to update restaurant: %w", err)
	}

	output := restaurantOutput(r)
	return textResult(output), output, nil
}

// IDInput identifies one restaurant.
type IDInput struct {
	ID int64 `json:"id"`
}

// DeleteOutput defines output for delete_restaurant tool.
type DeleteOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) registerDeleteRestaurantTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_restaurant",
		Description: "Permanently delete a bookmarked restaurant. This cannot be undone.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "ID of the restaurant to delete",
				},
			},
			"required": []string{"id"},
		},
	}, s.handleDeleteRestaurant)
}

func (s *Server) handleDeleteRestaurant(_ context.Context, req *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, DeleteOutput, error) {
	existing, err := s.svc.Get(input.ID)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("restaurant %d: %w", input.ID, err)
	}
	if err := s.svc.Delete(input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete restaurant: %w", err)
	}

	output := DeleteOutput{
		Success: true,
		Message: fmt.Sprintf("Deleted '%s'", existing.Name),
	}
	return textResult(output), output, nil
}

// ToggleFavoriteInput defines input for toggle_favorite tool.
type ToggleFavoriteInput struct {
	ID       int64 `json:"id"`
	Favorite *bool `json:"favorite,omitempty"`
}

func (s *Server) registerToggleFavoriteTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "toggle_favorite",
		Description: "Flip a restaurant's favorite flag, or set it explicitly with favorite.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "ID of the restaurant",
				},
				"favorite": map[string]interface{}{
					"type":        "boolean",
					"description": "Optional explicit value",
				},
			},
			"required": []string{"id"},
		},
	}, s.handleToggleFavorite)
}

func (s *Server) handleToggleFavorite(_ context.Context, req *mcp.CallToolRequest, input ToggleFavoriteInput) (*mcp.CallToolResult, RestaurantOutput, error) {
	var (
		r   *models.Restaurant
		err error
	)
	if input.Favorite != nil {
		r, err = s.svc.SetFavorite(input.ID, *input.Favorite)
	} else {
		r, err = s.svc.ToggleFavorite(input.ID)
	}
	if err != nil {
		return nil, RestaurantOutput{}, fmt.Errorf("restaurant %d: %w", input.ID, err)
	}

	output := restaurantOutput(r)
	return textResult(output), output, nil
}

// ListRestaurantsInput defines input for list_restaurants tool.
type ListRestaurantsInput struct {
	Category      string  `json:"category,omitempty"`
	FavoritesOnly bool    `json:"favorites_only,omitempty"`
	MinRating     float64 `json:"min_rating,omitempty"`
	Keyword       string  `json:"keyword,omitempty"`
	Sort          string  `json:"sort,omitempty"`
}

// ListRestaurantsOutput defines output for list_restaurants tool.
type ListRestaurantsOutput struct {
	Restaurants []RestaurantOutput `json:"restaurants"`
	Count       int                `json:"count"`
}

func (s *Server) registerListRestaurantsTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_restaurants",
		Description: "List bookmarked restaurants, optionally filtered and sorted.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Only this category; 'all' or empty for every category",
				},
				"favorites_only": map[string]interface{}{
					"type": "boolean",
				},
				"min_rating": map[string]interface{}{
					"type":        "number",
					"description": "Minimum star rating; unrated restaurants are excluded when set",
				},
				"keyword": map[string]interface{}{
					"type":        "string",
					"description": "Case-insensitive text to find in name, tags, memo, or address",
				},
				"sort": map[string]interface{}{
					"type":        "string",
					"description": "recent (default), name, or rating",
					"enum":        query.SortOrderNames(),
				},
			},
		},
	}, s.handleListRestaurants)
}

func (s *Server) handleListRestaurants(_ context.Context, req *mcp.CallToolRequest, input ListRestaurantsInput) (*mcp.CallToolResult, ListRestaurantsOutput, error) {
	order, err := query.ParseSortOrder(input.Sort)
	if err != nil {
		return nil, ListRestaurantsOutput{}, err
	}

	records, err := s.svc.List(query.Filter{
		Category:      input.Category,
		FavoritesOnly: input.FavoritesOnly,
		MinRating:     input.MinRating,
		Keyword:       input.Keyword,
		Sort:          order,
	})
	if err != nil {
		return nil, ListRestaurantsOutput{}, fmt.Errorf("failed to list restaurants: %w", err)
	}

	output := ListRestaurantsOutput{
		Restaurants: make([]RestaurantOutput, len(records)),
		Count:       len(records),
	}
	for i, r := range records {
		output.Restaurants[i] = restaurantOutput(r)
	}
	return textResult(output), output, nil
}

// GeocodeInput defines input for geocode_address tool.
type GeocodeInput struct {
	Address string `json:"address"`
}

// GeocodeOutput defines output for geocode_address tool.
type GeocodeOutput struct {
	Found       bool    `json:"found"`
	Lat         float64 `json:"lat,omitempty"`
	Lon         float64 `json:"lon,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
}

func (s *Server) registerGeocodeAddressTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "geocode_address",
		Description: "Look up coordinates for an address without saving anything.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"address": map[string]interface{}{
					"type":        "string",
					"description": "Free-form address, e.g. '서울특별시 중구 세종대로 110'",
				},
			},
			"required": []string{"address"},
		},
	}, s.handleGeocodeAddress)
}

func (s *Server) handleGeocodeAddress(ctx context.Context, req *mcp.CallToolRequest, input GeocodeInput) (*mcp.CallToolResult, GeocodeOutput, error) {
	if strings.TrimSpace(input.Address) == "" {
		return nil, GeocodeOutput{}, fmt.Errorf("address is required")
	}

	var output GeocodeOutput
	if coords, ok := s.svc.Geocode(ctx, input.Address); ok {
		output = GeocodeOutput{
			Found:       true,
			Lat:         coords.Lat,
			Lon:         coords.Lon,
			DisplayName: coords.DisplayName,
		}
	}
	return textResult(output), output, nil
}
