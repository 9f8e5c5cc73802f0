// ABOUTME: Address to coordinate resolution used when saving restaurants
// ABOUTME: Defines the Resolver interface, its errors, and an in-memory resolver

package geocode

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrEmptyAddress is returned for blank input; no request is made.
	ErrEmptyAddress = errors.New("address is empty")
	// ErrNoMatch means the provider answered but found nothing.
	ErrNoMatch = errors.New("no match for address")
	// ErrUnavailable covers timeouts, transport failures and bad responses.
	ErrUnavailable = errors.New("geocoder unavailable")
)

// Coordinates is a resolved position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	// DisplayName is the provider's label for the match, when it has one.
	DisplayName string `json:"display_name,omitempty"`
}

// Resolver turns a free-form address into coordinates. Resolve never fails:
// any problem yields ok == false.
type Resolver interface {
	Resolve(ctx context.Context, address string) (Coordinates, bool)
}

// Static resolves addresses from a fixed table. Lookups ignore surrounding
// whitespace but are otherwise exact.
type Static map[string]Coordinates

// Resolve implements Resolver.
func (s Static) Resolve(_ context.Context, address string) (Coordinates, bool) {
	c, ok := s[strings.TrimSpace(address)]
	return c, ok
}

// Disabled never resolves anything. It is used when no geocoder is configured.
type Disabled struct{}

// Resolve implements Resolver.
func (Disabled) Resolve(context.Context, string) (Coordinates, bool) {
	return Coordinates{}, false
}
