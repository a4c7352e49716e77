package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"setupwizard/internal/history"
)

var errHistoryDisabled = errors.New("history is disabled (SETUPWIZARD_NO_HISTORY)")

func newHistoryCmd(env *Env) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past generation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.config()
			if err != nil {
				return err
			}
			if cfg.NoHistory || cfg.HistoryPath == "" {
				return &UsageError{Err: errHistoryDisabled}
			}
			store, err := history.Open(cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()
			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(env.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			renderRuns(env.Out, runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print runs as JSON")
	return cmd
}
