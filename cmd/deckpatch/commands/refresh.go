package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/deckpatch/deckpatch/cmd/deckpatch/opts"
	"github.com/deckpatch/deckpatch/pkg/config"
	"github.com/deckpatch/deckpatch/pkg/operation"
	"github.com/deckpatch/deckpatch/pkg/refresh"
	"github.com/deckpatch/deckpatch/pkg/status"
)

// NewRefreshCmd creates a new refresh command
func NewRefreshCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh every chart in the configured documents",
		Long: `Refresh opens each configured document in the presentation application
and forces every chart to reload its backing data. Only available on
Windows, where the application is automated over COM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user := status.NewUserLogger(ctx)

			cfg, err := config.Load(ctx, o.ConfigFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			docs, err := operation.ExpandDocuments(cfg.Documents)
			if err != nil {
				user.LogValidation(false, "resolving documents", err)
				return err
			}

			factory := refresh.NewPowerPointFactory()
			failures := 0
			for _, doc := range docs {
				err := refresh.AllCharts(ctx, factory, doc)
				user.LogRefresh(ctx, doc, err)
				if err != nil {
					failures++
				}
			}

			if failures > 0 {
				return errors.Errorf("%d of %d documents failed to refresh", failures, len(docs))
			}
			return nil
		},
	}

	return cmd
}
