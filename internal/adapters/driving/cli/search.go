package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/services"
)

var (
	searchPage int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the Imgur gallery",
	Long: `Fetches one page of Imgur gallery results for the query.
Multiple arguments are joined with spaces.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "result page to fetch")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// imageJSON is the --json representation of one result.
type imageJSON struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url,omitempty"`
	Link     string `json:"link,omitempty"`
	IsAlbum  bool   `json:"is_album"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	svc, err := requireServices()
	if err != nil {
		return err
	}

	imageBase := domain.DefaultImageBaseURL
	if svc.Settings != nil {
		if settings, err := svc.Settings.Get(); err == nil {
			imageBase = settings.Catalog.ImageBaseURL
		}
	}

	records, err := services.AwaitSearch(cmd.Context(), svc.Repository, searchPage, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, records, imageBase)
	}
	outputSearchTable(cmd, records, imageBase)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, records domain.ResultPage, imageBase string) error {
	out := make([]imageJSON, len(records))
	for i, rec := range records {
		out[i] = imageJSON{
			ID:       rec.ID,
			Title:    rec.Title,
			ImageURL: rec.CoverURL(imageBase),
			Link:     rec.Link,
			IsAlbum:  rec.IsAlbum,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, records domain.ResultPage, imageBase string) {
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No results found.")
		return
	}

	fmt.Fprintf(out, "Page %d:\n\n", searchPage)
	for i, rec := range records {
		title := rec.Title
		if title == "" {
			title = "(untitled)"
		}
		kind := ""
		if rec.IsAlbum {
			kind = " [album]"
		}

		fmt.Fprintf(out, "  [%d] %s%s\n", i+1, title, kind)
		fmt.Fprintf(out, "      id: %s\n", rec.ID)
		if url := rec.CoverURL(imageBase); url != "" {
			fmt.Fprintf(out, "      %s\n", url)
		}
		fmt.Fprintln(out)
	}
}
