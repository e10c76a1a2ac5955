package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atupatu/pccoe/internal/sink"
)

// NewVerifyCmd creates the 'verify' command for verifying configuration.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify configuration and connections",
		Long: `Verify that the configuration is valid, that the event store can be
opened and migrated, and that the upload sink can be opened.`,
		Example: `  usagelog verify
  usagelog verify --config ./usagelog.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd)
		},
	}

	return cmd
}

// runVerify validates the configuration and its connections.
func runVerify(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if path := configPath(cmd); path != "" {
		fmt.Fprintf(out, "✓ Config file: %s\n", path)
	} else {
		fmt.Fprintln(out, "✓ Config: defaults and environment")
	}

	store, err := openStore(cmd.Context(), cfg, nil)
	if err != nil {
		fmt.Fprintf(out, "✗ Store (%s): %v\n", cfg.Store.Driver, err)
		return err
	}
	defer store.Close()
	fmt.Fprintf(out, "✓ Store: %s\n", cfg.Store.Driver)

	if _, err := sink.Open(cmd.Context(), cfg.Sink); err != nil {
		fmt.Fprintf(out, "✗ Sink (%s): %v\n", cfg.Sink.Driver, err)
		return err
	}
	fmt.Fprintf(out, "✓ Sink: %s\n", cfg.Sink.Driver)
	fmt.Fprintf(out, "✓ Preferred tab: %s\n", cfg.PreferredTab)

	return nil
}
