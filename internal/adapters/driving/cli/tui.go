package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui"
	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive image browser",
	Long: `Launch the interactive terminal browser.

Results update as you type and more load as you scroll towards the end
of the list. Select an image to read or edit its comment.

Controls:
  (type)   - Search
  ↑/k, ↓/j - Navigate results
  Enter    - Search now / Comment on image
  ctrl+s   - Save comment
  Esc      - Back
  ?        - Help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Recover so the terminal is left usable with a stack trace
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	svc, err := requireServices()
	if err != nil {
		return err
	}

	settings := domain.DefaultAppSettings()
	if svc.Settings != nil {
		s, err := svc.Settings.Get()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		settings = *s
	}

	logger.SetTimestamps(true)
	stop := startBackground(cmd.Context(), svc)
	defer stop()

	app, err := tui.NewApp(&tui.Ports{
		Repository:   svc.Repository,
		Search:       settings.Search,
		ImageBaseURL: settings.Catalog.ImageBaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
