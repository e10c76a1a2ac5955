package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atupatu/pccoe/internal/storage"
	"github.com/atupatu/pccoe/internal/usage"
)

// NewLogsCmd creates the 'logs' command for listing recorded events.
func NewLogsCmd() *cobra.Command {
	var filter storage.Filter
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "logs",
		Aliases: []string{"ls"},
		Short:   "List recorded usage events",
		Long: `Display usage events from the configured store in insertion order.

Date bounds are inclusive and compared as "YYYY-MM-DD HH:MM:SS" strings, so a
bare date such as 2024-03-01 works as a lower bound.`,
		Example: `  usagelog logs
  usagelog logs --tab redact-image
  usagelog logs --start "2024-03-01" --end "2024-03-31 23:59:59" --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer store.Close()

			events, err := usage.NewQuerier(store).Logs(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				s, err := formatJSON(map[string]any{"logs": events})
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}

			if len(events) == 0 {
				fmt.Fprintln(out, "No usage events recorded.")
				return nil
			}

			fmt.Fprintf(out, "Usage events (%d):\n\n", len(events))
			for _, e := range events {
				fmt.Fprintf(out, "  %s  %-16s %s\n", e.Timestamp, e.Tab, e.Filename)
				fmt.Fprintf(out, "    ID:       %s\n", e.ID)
				fmt.Fprintf(out, "    Detected: %s\n", strings.Join(e.DetectedEntities, ", "))
				fmt.Fprintf(out, "    Selected: %s\n", strings.Join(e.SelectedEntities, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Tab, "tab", "", "Only events from this tab")
	cmd.Flags().StringVar(&filter.Filename, "filename", "", "Only events for this filename")
	cmd.Flags().StringVar(&filter.StartDate, "start", "", "Earliest timestamp (inclusive)")
	cmd.Flags().StringVar(&filter.EndDate, "end", "", "Latest timestamp (inclusive)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
