// ABOUTME: Presentation commands shared by the CLI, HTTP API, and MCP server
// ABOUTME: Wraps the store, query pipeline, and geocoder; tells a Notifier about mutations

package bookmarks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/harper/matjip/internal/geocode"
	"github.com/harper/matjip/internal/geojson"
	"github.com/harper/matjip/internal/mapview"
	"github.com/harper/matjip/internal/models"
	"github.com/harper/matjip/internal/query"
	"github.com/harper/matjip/internal/storage"
)

// Change actions reported to a Notifier.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionFavorite = "favorite"
	ActionImported = "imported"
)

// Change describes one committed mutation. ID is zero for bulk imports.
type Change struct {
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
}

// Notifier is told about every successful mutation.
type Notifier interface {
	Notify(Change)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Change)

// Notify implements Notifier.
func (f NotifierFunc) Notify(c Change) { f(c) }

// Draft holds user input for a new or edited restaurant. Nil coordinates
// ask the service to resolve Address.
type Draft struct {
	Name       string   `json:"name"`
	Category   string   `json:"category,omitempty"`
	Memo       string   `json:"memo,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
	Address    string   `json:"address,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	URL        string   `json:"url,omitempty"`
	PriceRange string   `json:"price_range,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	Tags       string   `json:"tags,omitempty"`
}

// DraftFrom copies a stored record into a Draft, for partial edits.
func DraftFrom(r *models.Restaurant) Draft {
	return Draft{
		Name:       r.Name,
		Category:   r.Category,
		Memo:       r.Memo,
		Lat:        models.Float64(r.Lat),
		Lon:        models.Float64(r.Lon),
		Address:    r.Address,
		Phone:      r.Phone,
		URL:        r.URL,
		PriceRange: string(r.PriceRange),
		Rating:     r.Rating,
		Tags:       r.Tags,
	}
}

// Option configures a Service.
type Option func(*Service)

// WithSearchFields sets the fields keyword search looks at.
func WithSearchFields(fields []query.Field) Option {
	return func(s *Service) {
		if len(fields) > 0 {
			s.fields = fields
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier sets the mutation listener.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// Service implements the presentation commands. It holds no record state;
// every read goes to the store.
type Service struct {
	repo     storage.RestaurantRepository
	geocoder geocode.Resolver
	fields   []query.Field
	logger   *slog.Logger
	notifier Notifier
}

// New creates a Service. A nil resolver disables address lookup.
func New(repo storage.RestaurantRepository, resolver geocode.Resolver, opts ...Option) *Service {
	if resolver == nil {
		resolver = geocode.Disabled{}
	}
	s := &Service{
		repo:     repo,
		geocoder: resolver,
		fields:   query.DefaultFields,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNotifier replaces the mutation listener after construction.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// SearchFields returns the configured keyword search fields.
func (s *Service) SearchFields() []query.Field {
	return s.fields
}

func (s *Service) notify(action string, id int64) {
	if s.notifier != nil {
		s.notifier.Notify(Change{Action: action, ID: id})
	}
}

// build turns a draft into an unsaved record, resolving the address when
// coordinates are missing.
func (s *Service) build(ctx context.Context, d Draft) (*models.Restaurant, error) {
	price, err := models.ParsePriceRange(d.PriceRange)
	if err != nil {
		return nil, &storage.ValidationError{Field: "price_range", Message: err.Error()}
	}

	r := &models.Restaurant{
		Name:       strings.TrimSpace(d.Name),
		Category:   strings.TrimSpace(d.Category),
		Memo:       strings.TrimSpace(d.Memo),
		Address:    strings.TrimSpace(d.Address),
		Phone:      strings.TrimSpace(d.Phone),
		URL:        strings.TrimSpace(d.URL),
		PriceRange: price,
		Rating:     d.Rating,
		Tags:       strings.TrimSpace(d.Tags),
	}
	if err := models.ValidateName(r.Name); err != nil {
		return nil, &storage.ValidationError{Field: "name", Message: err.Error()}
	}

	if d.Lat != nil && d.Lon != nil {
		r.Lat, r.Lon = *d.Lat, *d.Lon
		return r, nil
	}

	if r.Address != "" {
		if coords, ok := s.geocoder.Resolve(ctx, r.Address); ok {
			s.logger.Info("resolved address", slog.String("address", r.Address),
				slog.Float64("lat", coords.Lat), slog.Float64("lon", coords.Lon))
			r.Lat, r.Lon = coords.Lat, coords.Lon
			return r, nil
		}
		return nil, &storage.ValidationError{
			Field:   "lat",
			Message: fmt.Sprintf("coordinates are required; could not resolve address %q", r.Address),
		}
	}
	return nil, &storage.ValidationError{Field: "lat", Message: "coordinates are required"}
}

// Add saves a new restaurant.
func (s *Service) Add(ctx context.Context, d Draft) (*models.Restaurant, error) {
	r, err := s.build(ctx, d)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateRestaurant(r); err != nil {
		return nil, err
	}
	s.logger.Debug("restaurant created", slog.Int64("id", r.ID))
	s.notify(ActionCreated, r.ID)
	return r, nil
}

// Update replaces every editable field of restaurant id with the draft.
func (s *Service) Update(ctx context.Context, id int64, d Draft) (*models.Restaurant, error) {
	if _, err := s.repo.GetRestaurant(id); err != nil {
		return nil, err
	}
	r, err := s.build(ctx, d)
	if err != nil {
		return nil, err
	}
	r.ID = id
	if err := s.repo.UpdateRestaurant(r); err != nil {
		return nil, err
	}
	s.logger.Debug("restaurant updated", slog.Int64("id", id))
	s.notify(ActionUpdated, id)
	return r, nil
}

// Delete permanently removes restaurant id.
func (s *Service) Delete(id int64) error {
	if err := s.repo.DeleteRestaurant(id); err != nil {
		return err
	}
	s.logger.Debug("restaurant deleted", slog.Int64("id", id))
	s.notify(ActionDeleted, id)
	return nil
}

// SetFavorite sets the favorite flag and returns the updated record.
func (s *Service) SetFavorite(id int64, favorite bool) (*models.Restaurant, error) {
	if err := s.repo.SetFavorite(id, favorite); err != nil {
		return nil, err
	}
	s.notify(ActionFavorite, id)
	return s.repo.GetRestaurant(id)
}

// ToggleFavorite flips the favorite flag of a freshly read record.
func (s *Service) ToggleFavorite(id int64) (*models.Restaurant, error) {
	r, err := s.repo.GetRestaurant(id)
	if err != nil {
		return nil, err
	}
	return s.SetFavorite(id, !r.Favorite)
}

// Get returns one restaurant.
func (s *Service) Get(id int64) (*models.Restaurant, error) {
	return s.repo.GetRestaurant(id)
}

// List fetches every restaurant and runs the filter pipeline. A filter
// without fields uses the configured search fields.
func (s *Service) List(f query.Filter) ([]*models.Restaurant, error) {
	all, err := s.repo.ListRestaurants()
	if err != nil {
		return nil, err
	}
	if len(f.Fields) == 0 {
		f.Fields = s.fields
	}
	return query.Apply(all, f), nil
}

// Categories returns the selectable categories, without the "all" sentinel.
func (s *Service) Categories() ([]string, error) {
	all, err := s.repo.ListRestaurants()
	if err != nil {
		return nil, err
	}
	return query.Categories(all), nil
}

// Stats summarizes every stored restaurant.
func (s *Service) Stats() (query.Summary, error) {
	all, err := s.repo.ListRestaurants()
	if err != nil {
		return query.Summary{}, err
	}
	return query.Summarize(all), nil
}

// Geocode resolves an address without saving anything.
func (s *Service) Geocode(ctx context.Context, address string) (geocode.Coordinates, bool) {
	return s.geocoder.Resolve(ctx, address)
}

// Markers returns map markers for the filtered list.
func (s *Service) Markers(f query.Filter) ([]mapview.Marker, error) {
	records, err := s.List(f)
	if err != nil {
		return nil, err
	}
	return mapview.Markers(records), nil
}

// MapFeatures returns the filtered markers and the selection as GeoJSON.
func (s *Service) MapFeatures(f query.Filter, sel *mapview.Selection) (*geojson.FeatureCollection, error) {
	markers, err := s.Markers(f)
	if err != nil {
		return nil, err
	}
	return geojson.FromMarkers(markers, sel), nil
}

// ExportCSV writes every restaurant as CSV.
func (s *Service) ExportCSV(w io.Writer) error {
	return storage.ExportCSV(s.repo, w)
}

// ImportCSV appends the rows of a CSV file as new restaurants.
func (s *Service) ImportCSV(r io.Reader) (int, error) {
	n, err := storage.ImportCSV(s.repo, r)
	if err != nil {
		return 0, err
	}
	s.logger.Info("csv imported", slog.Int("count", n))
	if n > 0 {
		s.notify(ActionImported, 0)
	}
	return n, nil
}

// ExportBackup returns a YAML backup of every restaurant.
func (s *Service) ExportBackup() ([]byte, error) {
	return storage.ExportToYAML(s.repo)
}

// ImportBackup restores restaurants from a YAML backup.
func (s *Service) ImportBackup(data []byte) (int, error) {
	n, err := storage.ImportFromYAML(s.repo, data)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.notify(ActionImported, 0)
	}
	return n, nil
}

// ExportMarkdown renders every restaurant as markdown.
func (s *Service) ExportMarkdown() ([]byte, error) {
	return storage.ExportToMarkdown(s.repo)
}
