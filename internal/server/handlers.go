// ABOUTME: HTTP handlers for restaurants, categories, stats, geocoding, CSV, and the map feed
// ABOUTME: Each handler parses input, calls the bookmarks service, and returns JSON

package server

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/harper/matjip/internal/bookmarks"
	"github.com/harper/matjip/internal/mapview"
	"github.com/harper/matjip/internal/query"
	"github.com/harper/matjip/internal/storage"
)

// maxImportBytes caps CSV uploads.
const maxImportBytes = 10 << 20

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// parseID reads the :id path parameter.
func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &storage.ValidationError{Field: "id", Message: "must be a positive integer"}
	}
	return id, nil
}

// parseFilter reads list filters from the query string.
func parseFilter(c echo.Context) (query.Filter, error) {
	f := query.Filter{
		Category: c.QueryParam("category"),
		Keyword:  c.QueryParam("q"),
	}

	if raw := strings.TrimSpace(c.QueryParam("favorite")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, &storage.ValidationError{Field: "favorite", Message: "must be true or false"}
		}
		f.FavoritesOnly = v
	}
	if raw := strings.TrimSpace(c.QueryParam("min_rating")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, &storage.ValidationError{Field: "min_rating", Message: "must be a number"}
		}
		f.MinRating = v
	}
	order, err := query.ParseSortOrder(c.QueryParam("sort"))
	if err != nil {
		return f, &storage.ValidationError{Field: "sort", Message: err.Error()}
	}
	f.Sort = order
	return f, nil
}

// bindJSON binds a request body declared as application/json into v.
// Any other content type answers 415.
func bindJSON(c echo.Context, v any) error {
	mediaType, _, _ := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
	if mediaType != echo.MIMEApplicationJSON {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "content type must be application/json")
	}
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}

func bindDraft(c echo.Context) (bookmarks.Draft, error) {
	var d bookmarks.Draft
	err := bindJSON(c, &d)
	return d, err
}

func (s *Server) handleList(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return err
	}
	records, err := s.svc.List(f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) handleCreate(c echo.Context) error {
	d, err := bindDraft(c)
	if err != nil {
		return err
	}
	r, err := s.svc.Add(c.Request().Context(), d)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

func (s *Server) handleGet(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	r, err := s.svc.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) handleUpdate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := bindDraft(c)
	if err != nil {
		return err
	}
	r, err := s.svc.Update(c.Request().Context(), id, d)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) handleDelete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := s.svc.Delete(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleFavorite toggles the flag, or sets it when the body carries
// {"favorite": bool}.
func (s *Server) handleFavorite(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var body struct {
		Favorite *bool `json:"favorite"`
	}
	if c.Request().ContentLength != 0 {
		if err := bindJSON(c, &body); err != nil {
			return err
		}
	}

	if body.Favorite != nil {
		r, err := s.svc.SetFavorite(id, *body.Favorite)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, r)
	}
	r, err := s.svc.ToggleFavorite(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) handleCategories(c echo.Context) error {
	cats, err := s.svc.Categories()
	if err != nil {
		return err
	}
	if cats == nil {
		cats = []string{}
	}
	return c.JSON(http.StatusOK, cats)
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.svc.Stats()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

type geocodeResponse struct {
	Found       bool    `json:"found"`
	Lat         float64 `json:"lat,omitempty"`
	Lon         float64 `json:"lon,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
}

func (s *Server) handleGeocode(c echo.Context) error {
	address := strings.TrimSpace(c.QueryParam("address"))
	if address == "" {
		return &storage.ValidationError{Field: "address", Message: "is required"}
	}
	coords, ok := s.svc.Geocode(c.Request().Context(), address)
	if !ok {
		return c.JSON(http.StatusOK, geocodeResponse{})
	}
	return c.JSON(http.StatusOK, geocodeResponse{
		Found:       true,
		Lat:         coords.Lat,
		Lon:         coords.Lon,
		DisplayName: coords.DisplayName,
	})
}

func (s *Server) handleExportCSV(c echo.Context) error {
	var buf bytes.Buffer
	if err := s.svc.ExportCSV(&buf); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="matjip.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// handleImport accepts a text/csv body or a multipart form with a file field.
func (s *Server) handleImport(c echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxImportBytes)
	var src io.Reader = req.Body

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))
	switch mediaType {
	case "text/csv":
	case echo.MIMEMultipartForm:
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return err
			}
			return &storage.ValidationError{Field: "file", Message: "multipart upload needs a file field"}
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		src = f
	default:
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "content type must be text/csv or multipart/form-data")
	}

	n, err := s.svc.ImportCSV(src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"imported": n})
}

// parseSelection reads an optional lat/lon pair. Both or neither must be set.
func parseSelection(c echo.Context) (*mapview.Selection, error) {
	rawLat, rawLon := strings.TrimSpace(c.QueryParam("lat")), strings.TrimSpace(c.QueryParam("lon"))
	if rawLat == "" && rawLon == "" {
		return nil, nil
	}
	lat, errLat := strconv.ParseFloat(rawLat, 64)
	lon, errLon := strconv.ParseFloat(rawLon, 64)
	if errLat != nil || errLon != nil {
		return nil, &storage.ValidationError{Field: "lat", Message: "lat and lon must both be numbers"}
	}
	sel, err := mapview.Click(lat, lon)
	if err != nil {
		return nil, &storage.ValidationError{Field: "lat", Message: err.Error()}
	}
	return &sel, nil
}

func (s *Server) handleMap(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return err
	}
	sel, err := parseSelection(c)
	if err != nil {
		return err
	}
	fc, err := s.svc.MapFeatures(f, sel)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fc)
}

func (s *Server) handleMapClick(c echo.Context) error {
	var body struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	if body.Lat == nil || body.Lon == nil {
		return &storage.ValidationError{Field: "lat", Message: "lat and lon are required"}
	}
	sel, err := mapview.Click(*body.Lat, *body.Lon)
	if err != nil {
		return &storage.ValidationError{Field: "lat", Message: err.Error()}
	}
	return c.JSON(http.StatusOK, sel)
}

func (s *Server) handleWebsocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", slog.Any("error", err))
		return nil
	}
	s.hub.Attach(conn)
	return nil
}
