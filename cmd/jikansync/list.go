package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/varoOP/jikansync/internal/app"
	"github.com/varoOP/jikansync/internal/domain"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search anime by keyword",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		application, err := app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		result, err := application.AnimeService.Search(cmd.Context(), args[0], page)
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var topCmd = &cobra.Command{
	Use:   "top [type]",
	Short: "List top-ranked anime, optionally filtered by type (tv, movie, ova, special, ona, music)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		var listing domain.ListingType
		if len(args) == 1 {
			listing = domain.ListingType(args[0])
		}

		application, err := app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		result, err := application.AnimeService.Top(cmd.Context(), listing, page)
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

var seasonalCmd = &cobra.Command{
	Use:   "seasonal <season> <year>",
	Short: "List anime airing in a season (winter, spring, summer, fall)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		year, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid year %q: %w", args[1], err)
		}

		application, err := app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		result, err := application.AnimeService.Seasonal(cmd.Context(), domain.Season(args[0]), year, page)
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, topCmd, seasonalCmd} {
		cmd.Flags().Int("page", 1, "result page to fetch")
		rootCmd.AddCommand(cmd)
	}
}
