// ABOUTME: Nominatim-compatible HTTP geocoding client
// ABOUTME: Bounded by a request timeout; every failure maps to an absent result in Resolve

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public OpenStreetMap Nominatim endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 5 * time.Second
	// DefaultUserAgent identifies requests; Nominatim's usage policy requires one.
	DefaultUserAgent = "matjip/1.0"
)

// RESTClient joins endpoint paths onto a base URL and sends requests with
// a bounded http.Client.
type RESTClient struct {
	baseURL string
	client  *http.Client
}

// NewRESTClient creates a client for baseURL. A nil client gets a fresh
// http.Client with the timeout; a non-nil client has its timeout overridden
// when timeout is positive.
func NewRESTClient(baseURL string, timeout time.Duration, client *http.Client) *RESTClient {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	trimmed = strings.TrimRight(trimmed, "/")
	if client == nil {
		client = &http.Client{Timeout: timeoutOrDefault(timeout)}
	} else if timeout > 0 {
		client.Timeout = timeout
	}
	return &RESTClient{baseURL: trimmed, client: client}
}

// NewRequest builds a request for endpoint relative to the base URL.
func (c *RESTClient) NewRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	return http.NewRequestWithContext(ctx, method, u, body)
}

// Do sends the request.
func (c *RESTClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

func timeoutOrDefault(value time.Duration) time.Duration {
	if value <= 0 {
		return DefaultTimeout
	}
	return value
}

// Options configures a NominatimClient. Zero values take the defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// CountryCodes optionally biases results, e.g. "kr".
	CountryCodes string
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// NominatimClient looks up addresses with the Nominatim search API.
type NominatimClient struct {
	rest         *RESTClient
	timeout      time.Duration
	userAgent    string
	countryCodes string
	logger       *slog.Logger
}

// Compile-time check that NominatimClient implements Resolver.
var _ Resolver = (*NominatimClient)(nil)

// NewNominatimClient creates a client from opts.
func NewNominatimClient(opts Options) *NominatimClient {
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = DefaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NominatimClient{
		rest:         NewRESTClient(opts.BaseURL, opts.Timeout, opts.HTTPClient),
		timeout:      timeoutOrDefault(opts.Timeout),
		userAgent:    ua,
		countryCodes: strings.TrimSpace(opts.CountryCodes),
		logger:       logger,
	}
}

// searchResult is one element of the jsonv2 search response. Nominatim
// encodes coordinates as strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup resolves address to its best match. Errors wrap ErrEmptyAddress,
// ErrNoMatch or ErrUnavailable.
func (c *NominatimClient) Lookup(ctx context.Context, address string) (Coordinates, error) {
	q := strings.TrimSpace(address)
	if q == "" {
		return Coordinates{}, ErrEmptyAddress
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.rest.NewRequest(ctx, http.MethodGet, "/search", nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	values := url.Values{}
	values.Set("q", q)
	values.Set("format", "jsonv2")
	values.Set("limit", "1")
	if c.countryCodes != "" {
		values.Set("countrycodes", c.countryCodes)
	}
	req.URL.RawQuery = values.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("geocode request", slog.String("url", req.URL.String()))

	res, err := c.rest.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return Coordinates{}, fmt.Errorf("%w: unexpected status %d: %s", ErrUnavailable, res.StatusCode, strings.TrimSpace(string(body)))
	}

	var results []searchResult
	if err := json.NewDecoder(res.Body).Decode(&results); err != nil {
		return Coordinates{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(results) == 0 {
		return Coordinates{}, ErrNoMatch
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: bad latitude %q", ErrUnavailable, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: bad longitude %q", ErrUnavailable, results[0].Lon)
	}

	return Coordinates{Lat: lat, Lon: lon, DisplayName: results[0].DisplayName}, nil
}

// Resolve implements Resolver. Failures are logged at warn level and
// reported as ok == false; a blank address is silently absent.
func (c *NominatimClient) Resolve(ctx context.Context, address string) (Coordinates, bool) {
	coords, err := c.Lookup(ctx, address)
	if err != nil {
		if !errors.Is(err, ErrEmptyAddress) {
			c.logger.Warn("geocode failed", slog.String("address", address), slog.Any("error", err))
		}
		return Coordinates{}, false
	}
	return coords, true
}
