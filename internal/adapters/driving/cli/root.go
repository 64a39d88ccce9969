// Package cli provides the cobra command tree for imgscout.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driven"
	"github.com/custodia-labs/imgscout/internal/core/ports/driving"
	"github.com/custodia-labs/imgscout/internal/logger"
)

// version is set at build time via Execute.
var version = "dev"

// Persistent flag values.
var (
	verbose     bool
	configDir   string
	dataDir     string
	ephemeral   bool
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "imgscout",
	Short: "Search Imgur and keep notes on images",
	Long: `imgscout searches the Imgur gallery by keyword and lets you attach a
private comment to any image. Comments are stored locally in SQLite.

Run 'imgscout tui' for the interactive browser, or use the search and
comment commands from scripts.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.imgscout)")
	flags.StringVar(&dataDir, "data-dir", "", "comment database directory (overrides storage.data_dir)")
	flags.BoolVar(&ephemeral, "ephemeral", false, "keep comments in memory only")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address for tui and mcp")
}

// Options carries the persistent flags to the services factory.
type Options struct {
	ConfigDir string
	DataDir   string
	Ephemeral bool
}

// Services is the set of core services the commands drive.
type Services struct {
	// Repository runs searches and stores comments.
	Repository driving.ImageRepository

	// Settings reads and writes configuration.
	Settings driving.SettingsService

	// Watch starts pushing configuration changes into the running services.
	// Optional; long-running commands call it.
	Watch func(ctx context.Context) (stop func(), err error)

	// Metrics serves the metrics registry. Optional.
	Metrics http.Handler

	// Exchanger builds the OAuth2 token exchanger for the given catalog
	// settings. Optional; auth login requires it.
	Exchanger func(domain.CatalogSettings) driven.TokenExchanger

	// Close releases the repository and stores.
	Close func(ctx context.Context) error
}

// ServicesFactory builds the services from the command-line options.
type ServicesFactory func(Options) (*Services, error)

var (
	servicesMu      sync.Mutex
	servicesFactory ServicesFactory
	servicesOnce    *sync.Once
	servicesValue   *Services
	servicesErr     error
)

// SetServicesFactory sets the function used to build services on first use.
func SetServicesFactory(f ServicesFactory) {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	servicesFactory = f
	servicesOnce = new(sync.Once)
	servicesValue = nil
	servicesErr = nil
}

// getServices returns the process-wide services, building them once.
// Concurrent callers share the same instance.
func getServices() (*Services, error) {
	servicesMu.Lock()
	once, factory := servicesOnce, servicesFactory
	servicesMu.Unlock()

	if factory == nil || once == nil {
		return nil, errors.New("services not configured")
	}

	once.Do(func() {
		svc, err := factory(Options{
			ConfigDir: configDir,
			DataDir:   dataDir,
			Ephemeral: ephemeral,
		})
		servicesMu.Lock()
		servicesValue, servicesErr = svc, err
		servicesMu.Unlock()
	})

	servicesMu.Lock()
	defer servicesMu.Unlock()
	return servicesValue, servicesErr
}

// closeServices closes the services if they were built.
func closeServices(ctx context.Context) error {
	servicesMu.Lock()
	svc := servicesValue
	servicesMu.Unlock()

	if svc == nil || svc.Close == nil {
		return nil
	}
	return svc.Close(ctx)
}

// Execute runs the root command and releases the services afterwards.
func Execute(v string) error {
	if v != "" {
		version = v
	}

	err := rootCmd.Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cerr := closeServices(ctx); cerr != nil {
		logger.Error("closing services: %v", cerr)
	}
	return err
}

// startBackground starts configuration watching and the metrics endpoint for
// long-running commands. The returned function stops both.
func startBackground(ctx context.Context, svc *Services) func() {
	var stops []func()

	if svc.Watch != nil {
		stop, err := svc.Watch(ctx)
		if err != nil {
			logger.Warn("config watch disabled: %v", err)
		} else {
			stops = append(stops, stop)
		}
	}

	if metricsAddr != "" && svc.Metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", svc.Metrics)
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server: %v", err)
			}
		}()
		logger.Info("metrics on http://%s/metrics", metricsAddr)
		stops = append(stops, func() {
			srv.Shutdown(context.Background()) //nolint:errcheck
		})
	}

	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}

// requireServices wraps getServices with a command-friendly error.
func requireServices() (*Services, error) {
	svc, err := getServices()
	if err != nil {
		return nil, fmt.Errorf("initialising services: %w", err)
	}
	return svc, nil
}
