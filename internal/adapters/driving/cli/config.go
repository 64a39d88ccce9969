package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// secretKeys are masked when printed.
var secretKeys = map[string]bool{
	"imgur.client_id":     true,
	"imgur.client_secret": true,
	"imgur.access_token":  true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change configuration",
	Long: `Reads and writes ~/.imgscout/config.toml.

Keys:
  imgur.base_url             API root (default https://api.imgur.com)
  imgur.image_base_url       image host (default https://i.imgur.com/)
  imgur.client_id            application Client-ID
  imgur.access_token         optional OAuth2 access token
  imgur.requests_per_second  client-side request rate
  search.throttle_ms         minimum spacing between typed queries
  search.look_ahead          items left before the next page loads
  storage.data_dir           comment database directory
  network.probe_address      host:port dialled to check connectivity`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, key := range svc.Settings.Keys() {
		value, ok := svc.Settings.Lookup(key)
		switch {
		case !ok:
			value = "(default)"
		case secretKeys[key]:
			value = maskAPIKey(value)
		}
		fmt.Fprintf(out, "%-27s %s\n", key, value)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	if !isKnownKey(svc, args[0]) {
		return fmt.Errorf("unknown configuration key %q", args[0])
	}
	value, ok := svc.Settings.Lookup(args[0])
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "(default)")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	if err := svc.Settings.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("setting %s: %w", args[0], err)
	}

	shown := args[1]
	if secretKeys[args[0]] {
		shown = maskAPIKey(shown)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], shown)
	return nil
}

func requireSettings() (*Services, error) {
	svc, err := requireServices()
	if err != nil {
		return nil, err
	}
	if svc.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	return svc, nil
}

func isKnownKey(svc *Services, key string) bool {
	return slices.Contains(svc.Settings.Keys(), key)
}

// maskAPIKey masks an API key for display.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
