package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/deckpatch/deckpatch/cmd/deckpatch/opts"
	"github.com/deckpatch/deckpatch/pkg/config"
	"github.com/deckpatch/deckpatch/pkg/operation"
	"github.com/deckpatch/deckpatch/pkg/refresh"
	"github.com/deckpatch/deckpatch/pkg/sheet"
	"github.com/deckpatch/deckpatch/pkg/status"
)

// NewSyncCmd creates a new sync command
func NewSyncCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the full pipeline: body text, embedded workbooks, chart refresh",
		Long: `Sync rewrites placeholder text in slide bodies and chart titles, applies
the same rules to every embedded spreadsheet, reinjects the changed
spreadsheets, and refreshes charts when the config enables it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			console := consoleFrom(ctx)
			user := status.NewUserLogger(ctx)

			cfg, err := config.Load(ctx, o.ConfigFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			console.Header(fmt.Sprintf("syncing %d document patterns", len(cfg.Documents)))

			results, err := operation.Run(ctx, cfg, operation.Deps{
				Substituter: sheet.NewExcelSubstituter(),
				Refresh:     refresh.NewPowerPointFactory(),
			})
			if err != nil {
				user.LogValidation(false, "running batch", err)
				return err
			}

			failures, total := 0, 0
			for _, res := range results {
				user.LogDocReport(docReport(res))
				total += res.Count
				if !res.Success() {
					failures++
				}
			}

			user.LogBatch(len(results), failures, total)
			if failures > 0 {
				return errors.Errorf("%d of %d documents failed", failures, len(results))
			}
			console.Success("all documents synced")
			return nil
		},
	}

	return cmd
}
