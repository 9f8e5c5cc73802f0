// ABOUTME: Backup and export functionality for restaurant data
// ABOUTME: Supports YAML backup format and markdown export

package storage

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harper/matjip/internal/models"
	"gopkg.in/yaml.v3"
)

// BackupVersion is the current backup format version.
const BackupVersion = "1.0"

// BackupTool identifies backups written by this program.
const BackupTool = "matjip"

// Backup represents the YAML backup format.
type Backup struct {
	Version     string             `yaml:"version"`
	ExportedAt  time.Time          `yaml:"exported_at"`
	Tool        string             `yaml:"tool"`
	Restaurants []RestaurantBackup `yaml:"restaurants"`
}

// RestaurantBackup represents a restaurant in the backup format.
type RestaurantBackup struct {
	ID         int64      `yaml:"id"`
	Name       string     `yaml:"name"`
	Category   string     `yaml:"category,omitempty"`
	Memo       string     `yaml:"memo,omitempty"`
	Lat        float64    `yaml:"lat"`
	Lon        float64    `yaml:"lon"`
	Address    string     `yaml:"address,omitempty"`
	Phone      string     `yaml:"phone,omitempty"`
	URL        string     `yaml:"url,omitempty"`
	PriceRange string     `yaml:"price_range,omitempty"`
	Rating     *float64   `yaml:"rating,omitempty"`
	Tags       string     `yaml:"tags,omitempty"`
	Favorite   bool       `yaml:"favorite"`
	CreatedAt  time.Time  `yaml:"created_at"`
	UpdatedAt  *time.Time `yaml:"updated_at,omitempty"`
}

// ExportToYAML exports all restaurants to YAML format.
func ExportToYAML(repo RestaurantRepository) ([]byte, error) {
	restaurants, err := repo.ListRestaurants()
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}

	backup := Backup{
		Version:     BackupVersion,
		ExportedAt:  time.Now().UTC(),
		Tool:        BackupTool,
		Restaurants: make([]RestaurantBackup, len(restaurants)),
	}

	for i, r := range restaurants {
		backup.Restaurants[i] = RestaurantBackup{
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
			Tags:       r.Tags,
			Favorite:   r.Favorite,
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		}
	}

	return yaml.Marshal(backup)
}

// ImportFromYAML restores restaurants from a YAML backup. Like CSV import
// it appends new records and does not deduplicate.
func ImportFromYAML(repo RestaurantRepository, data []byte) (int, error) {
	var backup Backup
	if err := yaml.Unmarshal(data, &backup); err != nil {
		return 0, fmt.Errorf("parse yaml: %w", err)
	}

	if backup.Version != BackupVersion {
		return 0, fmt.Errorf("unsupported backup version: %s (expected %s)", backup.Version, BackupVersion)
	}

	if backup.Tool != BackupTool {
		return 0, fmt.Errorf("wrong tool: %s (expected %s)", backup.Tool, BackupTool)
	}

	// Backups list newest first; insert oldest first so ids keep increasing
	// with age.
	restaurants := make([]*models.Restaurant, 0, len(backup.Restaurants))
	for i := len(backup.Restaurants) - 1; i >= 0; i-- {
		b := backup.Restaurants[i]
		restaurants = append(restaurants, &models.Restaurant{
			Name:       b.Name,
			Category:   b.Category,
			Memo:       b.Memo,
			Lat:        b.Lat,
			Lon:        b.Lon,
			Address:    b.Address,
			Phone:      b.Phone,
			URL:        b.URL,
			PriceRange: models.PriceRange(b.PriceRange),
			Rating:     b.Rating,
			Tags:       b.Tags,
			Favorite:   b.Favorite,
			CreatedAt:  b.CreatedAt,
			UpdatedAt:  b.UpdatedAt,
		})
	}
	if len(restaurants) == 0 {
		return 0, nil
	}

	return repo.ImportRestaurants(restaurants)
}

// ExportToMarkdown renders all restaurants as a markdown document grouped
// by category.
func ExportToMarkdown(repo RestaurantRepository) ([]byte, error) {
	restaurants, err := repo.ListRestaurants()
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return RenderMarkdown(restaurants, time.Now().UTC()), nil
}

// RenderMarkdown renders the given restaurants, keeping their order within
// each category section.
func RenderMarkdown(restaurants []*models.Restaurant, now time.Time) []byte {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# 맛집 지도 Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(restaurants) == 0 {
		sb.WriteString("No restaurants saved.\n")
		return []byte(sb.String())
	}

	groups := make(map[string][]*models.Restaurant)
	for _, r := range restaurants {
		groups[r.Category] = append(groups[r.Category], r)
	}
	categories := make([]string, 0, len(groups))
	for c := range groups {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, c := range categories {
		title := c
		if title == "" {
			title = "Uncategorized"
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", title))
		sb.WriteString("| Name | Rating | Price | Address | Coordinates |\n")
		sb.WriteString("|------|--------|-------|---------|-------------|\n")

		for _, r := range groups[c] {
			name := markdownCell(r.Name)
			if r.Favorite {
				name = "★ " + name
			}
			rating := "-"
			if r.HasRating() {
				rating = fmt.Sprintf("%.1f", *r.Rating)
			}
			price := "-"
			if r.PriceRange != models.PriceUnset {
				price = markdownCell(string(r.PriceRange))
			}
			address := "-"
			if r.Address != "" {
				address = markdownCell(r.Address)
			}
			coords := fmt.Sprintf("(%.4f, %.4f)", r.Lat, r.Lon)
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n", name, rating, price, address, coords))
		}

		sb.WriteString("\n")
	}

	return []byte(sb.String())
}

func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
