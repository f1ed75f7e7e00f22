package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roso1102/reboard/internal/intent"
	"github.com/roso1102/reboard/internal/model"
	"github.com/roso1102/reboard/internal/rank"
	"github.com/roso1102/reboard/internal/store"
)

var (
	searchCategory   string
	searchGrade      string
	searchPriceMin   int
	searchPriceMax   int
	searchMinReuse   int
	searchLocation   string
	searchSort       string
	searchNoExternal bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search listed components by intent or plain text",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer e.Close()

		query := ""
		if len(args) > 0 {
			query = args[0]
		}

		sortMode, err := rank.ParseSortMode(searchSort)
		if err != nil {
			return err
		}

		var features model.IntentFeatures
		if query != "" {
			if searchNoExternal {
				features = intent.Extract(query)
			} else {
				features = e.intents.Extract(ctx, query)
			}
		}

		catalog, err := e.market.Components(ctx, store.ComponentFilter{Status: model.StatusListed})
		if err != nil {
			return err
		}

		ranked := rank.Rank(catalog, rank.Request{
			Query:  query,
			Intent: features,
			Filter: rank.Filter{
				Category:       searchCategory,
				Grade:          model.Grade(strings.ToUpper(searchGrade)),
				PriceMin:       searchPriceMin,
				PriceMax:       searchPriceMax,
				MinReusability: searchMinReuse,
				Location:       searchLocation,
			},
			Sort: sortMode,
		})

		zap.L().Info("search complete",
			zap.String("query", query),
			zap.Bool("intent", features.HasIntent),
			zap.Int("results", len(ranked)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "filter by category")
	searchCmd.Flags().StringVar(&searchGrade, "grade", "", "filter by grade (A-D)")
	searchCmd.Flags().IntVar(&searchPriceMin, "price-min", 0, "minimum price in INR")
	searchCmd.Flags().IntVar(&searchPriceMax, "price-max", 0, "maximum price in INR")
	searchCmd.Flags().IntVar(&searchMinReuse, "min-reusability", 0, "minimum reusability score")
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "filter by seller location")
	searchCmd.Flags().StringVar(&searchSort, "sort", "relevance", "sort mode: relevance|price-low|price-high|reusability")
	searchCmd.Flags().BoolVar(&searchNoExternal, "no-external", false, "skip external intent extraction")
	rootCmd.AddCommand(searchCmd)
}
