// ABOUTME: Restaurant list command
// ABOUTME: Filters by category, favorite, rating, and keyword, then sorts

package main

import (
	"fmt"
	"strings"

	"github.com/harper/matjip/internal/query"
	"github.com/harper/matjip/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List bookmarked restaurants",
	Long: `List bookmarked restaurants, newest first.

Examples:
  matjip list
  matjip list --category 한식 --favorites
  matjip list --min-rating 4 --sort rating
  matjip list -q 냉면`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}

		records, err := svc.List(f)
		if err != nil {
			return fmt.Errorf("failed to list restaurants: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No restaurants found. Use 'matjip add' to bookmark one.")
			return nil
		}

		for _, r := range records {
			fmt.Fprintln(out, ui.FormatRestaurantLine(r))
		}
		return nil
	},
}

func filterFromFlags(cmd *cobra.Command) (query.Filter, error) {
	category, _ := cmd.Flags().GetString("category")
	favorites, _ := cmd.Flags().GetBool("favorites")
	minRating, _ := cmd.Flags().GetFloat64("min-rating")
	keyword, _ := cmd.Flags().GetString("search")
	sortRaw, _ := cmd.Flags().GetString("sort")

	order, err := query.ParseSortOrder(sortRaw)
	if err != nil {
		return query.Filter{}, err
	}
	if minRating < 0 || minRating > 5 {
		return query.Filter{}, fmt.Errorf("--min-rating must be between 0 and 5, got %v", minRating)
	}

	return query.Filter{
		Category:      category,
		FavoritesOnly: favorites,
		MinRating:     minRating,
		Keyword:       keyword,
		Sort:          order,
	}, nil
}

func init() {
	listCmd.Flags().StringP("category", "c", "", "only this category")
	listCmd.Flags().BoolP("favorites", "f", false, "only favorites")
	listCmd.Flags().Float64("min-rating", 0, "only restaurants rated at least this")
	listCmd.Flags().StringP("search", "q", "", "keyword to match")
	listCmd.Flags().StringP("sort", "s", string(query.SortRecent),
		"sort order: "+strings.Join(query.SortOrderNames(), ", "))

	rootCmd.AddCommand(listCmd)
}
