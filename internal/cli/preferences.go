package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atupatu/pccoe/internal/learning"
	"github.com/atupatu/pccoe/internal/storage"
	"github.com/atupatu/pccoe/internal/usage"
)

// NewPreferencesCmd creates the 'preferences' command.
func NewPreferencesCmd() *cobra.Command {
	var tab string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "preferences",
		Short: "Show the preferred entities for a tab",
		Long: `Compute the preferred entities for a tab from its recorded history.

An entity is preferred when it was selected in at least half of the tab's
events. When none reach that share, the three most-selected entities are
shown instead. Per-entity counts are listed below the result.`,
		Example: `  usagelog preferences
  usagelog preferences --tab censor-audio --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if tab == "" {
				tab = cfg.PreferredTab
			}

			store, err := openStore(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer store.Close()

			events, err := usage.NewQuerier(store).Logs(cmd.Context(), storage.Filter{Tab: tab})
			if err != nil {
				return err
			}
			preferred := learning.Preferences(events)

			out := cmd.OutOrStdout()
			if jsonOutput {
				s, err := formatJSON(map[string]any{"preferred_entities": preferred})
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}

			fmt.Fprintf(out, "Tab: %s (%d events)\n", tab, len(events))
			if len(preferred) == 0 {
				fmt.Fprintln(out, "No preferred entities yet.")
				return nil
			}

			fmt.Fprintln(out, "Preferred entities:")
			for _, entity := range preferred {
				fmt.Fprintf(out, "  %s\n", entity)
			}
			fmt.Fprintln(out, "\nSelection counts:")
			for _, c := range learning.CountSelections(events) {
				fmt.Fprintf(out, "  %-20s %d\n", c.Entity, c.Count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tab, "tab", "", "Tab to compute preferences for (default from config)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
