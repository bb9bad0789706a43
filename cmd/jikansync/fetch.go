package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/varoOP/jikansync/internal/app"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <mal-id>",
	Short: "Fetch an anime by MAL id, syncing it into the local store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		malID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid mal id %q: %w", args[0], err)
		}

		application, err := app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		anime, err := application.AnimeService.FetchByID(cmd.Context(), malID)
		if err != nil {
			return err
		}

		return printJSON(anime)
	},
}

var ensureCmd = &cobra.Command{
	Use:   "ensure <mal-id>",
	Short: "Ensure a local record exists for a MAL id and print its local id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		malID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid mal id %q: %w", args[0], err)
		}

		application, err := app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		localID, err := application.AnimeService.EnsureExists(cmd.Context(), malID)
		if err != nil {
			return err
		}

		fmt.Println(localID)
		return nil
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "   ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(ensureCmd)
}
