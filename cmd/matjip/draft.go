// ABOUTME: Shared restaurant field flags for add and edit
// ABOUTME: Overlays only the flags the user actually set onto a draft

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/matjip/internal/bookmarks"
	"github.com/harper/matjip/internal/models"
	"github.com/harper/matjip/internal/storage"
	"github.com/spf13/cobra"
)

func registerDraftFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("lat", 0, "latitude")
	cmd.Flags().Float64("lon", 0, "longitude")
	cmd.Flags().StringP("address", "a", "", "street address, geocoded when --lat/--lon are omitted")
	cmd.Flags().StringP("category", "c", "", "category, e.g. 한식")
	cmd.Flags().StringP("memo", "m", "", "free-form note")
	cmd.Flags().String("phone", "", "phone number")
	cmd.Flags().String("url", "", "homepage or review link")
	cmd.Flags().StringP("price", "p", "", "price tier 1-4 (₩ to ₩₩₩₩)")
	cmd.Flags().Float64P("rating", "r", 0, "rating from 0.5 to 5 in half steps (0 clears)")
	cmd.Flags().StringP("tags", "t", "", "comma separated tags")
}

// applyDraftFlags copies every changed flag onto d. Changing the address
// without new coordinates drops the old ones so the address is geocoded.
func applyDraftFlags(cmd *cobra.Command, d bookmarks.Draft) bookmarks.Draft {
	flags := cmd.Flags()

	strs := map[string]*string{
		"address":  &d.Address,
		"category": &d.Category,
		"memo":     &d.Memo,
		"phone":    &d.Phone,
		"url":      &d.URL,
		"price":    &d.PriceRange,
		"tags":     &d.Tags,
	}
	for name, field := range strs {
		if flags.Changed(name) {
			*field, _ = flags.GetString(name)
		}
	}

	latSet, lonSet := flags.Changed("lat"), flags.Changed("lon")
	if latSet {
		lat, _ := flags.GetFloat64("lat")
		d.Lat = models.Float64(lat)
	}
	if lonSet {
		lon, _ := flags.GetFloat64("lon")
		d.Lon = models.Float64(lon)
	}
	if flags.Changed("address") && !latSet && !lonSet {
		d.Lat, d.Lon = nil, nil
	}

	if flags.Changed("rating") {
		rating, _ := flags.GetFloat64("rating")
		d.Rating = models.Float64(rating)
	}
	return d
}

// explainSaveError adds a hint when an address could not be located.
func explainSaveError(err error, d bookmarks.Draft) error {
	var verr *storage.ValidationError
	if errors.As(err, &verr) && verr.Field == "lat" && d.Address != "" && (d.Lat == nil || d.Lon == nil) {
		color.Yellow("⚠ Could not locate %q; pass --lat and --lon to place it manually", d.Address)
	}
	return fmt.Errorf("failed to save restaurant: %w", err)
}
