// ABOUTME: MCP resource definitions
// ABOUTME: Provides a read-only view of every bookmark with summary stats

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harper/matjip/internal/query"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// restaurantsURI names the restaurant list resource.
const restaurantsURI = "matjip://restaurants"

// RestaurantsResource is the JSON body of the restaurant list resource.
type RestaurantsResource struct {
	Restaurants []RestaurantOutput `json:"restaurants"`
	Categories  []string           `json:"categories"`
	Stats       query.Summary      `json:"stats"`
}

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        restaurantsURI,
		Description: "All bookmarked restaurants, newest first, with categories and stats",
		URI:         restaurantsURI,
		MIMEType:    "application/json",
	}, s.handleRestaurantsResource)
}

func (s *Server) handleRestaurantsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	records, err := s.svc.List(query.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}

	output := RestaurantsResource{
		Restaurants: make([]RestaurantOutput, len(records)),
		Categories:  query.Categories(records),
		Stats:       query.Summarize(records),
	}
	for i, r := range records {
		output.Restaurants[i] = restaurantOutput(r)
	}

	jsonBytes, _ := json.MarshalIndent(output, "", "  ") //nolint:errchkjson // output is always serializable

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      restaurantsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		},
	}, nil
}
