/*
Package cli implements the usagelog commands.

Every command resolves configuration the same way: defaults, then the JSON
file named by --config (or ~/.usagelog.json), then USAGELOG_* environment
variables, then the command's own flags.
*/
package cli

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atupatu/pccoe/internal/config"
	"github.com/atupatu/pccoe/internal/storage"
	"github.com/atupatu/pccoe/internal/version"
)

// NewRootCmd creates the usagelog root command with all subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usagelog",
		Short: "Usage event log and preferred-entity inference",
		Long: `usagelog records which entities users keep when processing files
and learns, per tab, which entities they habitually select.

It serves four HTTP endpoints:
  POST /log-usage               Record a processed file and its entities
  GET  /get-logs                Full event history
  GET  /get-logs-filtered       History filtered by tab, filename, date range
  GET  /get-preferred-entities  Entities selected in at least half of a tab's events`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Config file (default ~/.usagelog.json)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewLogsCmd())
	cmd.AddCommand(NewPreferencesCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// configPath returns the --config value, which subcommands inherit from the
// root once flags are parsed.
func configPath(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("config"); f != nil {
		return f.Value.String()
	}
	return ""
}

// loadConfig resolves the configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return cfg, nil
}

// openStore opens and initializes the configured store.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (storage.Storage, error) {
	store, err := storage.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s store", cfg.Store.Driver)
	}
	return store, nil
}

// formatJSON pretty-prints JSON for output.
func formatJSON(data any) (string, error) {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
