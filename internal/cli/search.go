package cli

import (
	"fmt"
	"strings"

	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/search"

	"github.com/spf13/cobra"
)

func newSearchCmd(e *env) *cobra.Command {
	var (
		in                       search.FilterInput
		province, district, ward string
		page                     int
	)
	cmd := &cobra.Command{
		Use:   "search [keyword...]",
		Short: "Search rooms by keyword or by filters",
		Long: `Search rooms.

With a keyword the filters are ignored and the keyword search is used.
Without a keyword the filters are sent, even when none is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in.Province = domain.Place{Name: province}
			in.District = domain.Place{Name: district}
			in.Ward = domain.Place{Name: ward}

			keyword := strings.Join(args, " ")
			if err := e.services.Search.UpdateSelection(in.Apply); err != nil && strings.TrimSpace(keyword) == "" {
				return err
			}
			e.services.Search.SetKeyword(keyword)

			result, err := e.services.Search.Search(ctx)
			if err != nil {
				return err
			}
			if page > 1 {
				if result, err = e.services.Search.LoadPage(ctx, page); err != nil {
					return err
				}
			}

			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return printSearchPage(cmd.OutOrStdout(), result)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Price.Bucket, "price", "", "price range, e.g. 1m-3m (see: roomfinder options)")
	f.StringVar(&in.Price.Min, "price-min", "", "custom minimum price")
	f.StringVar(&in.Price.Max, "price-max", "", "custom maximum price")
	f.StringVar(&in.Area.Bucket, "area", "", "area range, e.g. 20-30")
	f.StringVar(&in.Area.Min, "area-min", "", "custom minimum area")
	f.StringVar(&in.Area.Max, "area-max", "", "custom maximum area")
	f.StringVar(&province, "province", "", "province name")
	f.StringVar(&district, "district", "", "district name")
	f.StringVar(&ward, "ward", "", "ward name")
	f.StringVar(&in.FurnitureCondition, "furniture", "", "new or used")
	f.StringVar(&in.Utility, "utility", "", "high, medium or low")
	f.IntVar(&page, "page", 1, "page number")
	cmd.MarkFlagsMutuallyExclusive("price", "price-min")
	cmd.MarkFlagsMutuallyExclusive("price", "price-max")
	cmd.MarkFlagsMutuallyExclusive("area", "area-min")
	cmd.MarkFlagsMutuallyExclusive("area", "area-max")
	return cmd
}

func newOptionsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the available filter values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := e.services.Search.Options()
			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), opts)
			}
			tw := newTable(cmd.OutOrStdout())
			groups := []struct {
				name string
				opts []domain.Option
			}{
				{"price", opts.Price},
				{"area", opts.Area},
				{"furniture", opts.Furniture},
				{"utility", opts.Utility},
			}
			for _, g := range groups {
				for _, o := range g.opts {
					if o.Value == "" {
						continue
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", g.name, o.Value, o.Label)
				}
			}
			return tw.Flush()
		},
	}
}
