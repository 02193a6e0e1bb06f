package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/deckpatch/deckpatch/cmd/deckpatch/opts"
	"github.com/deckpatch/deckpatch/pkg/config"
	"github.com/deckpatch/deckpatch/pkg/log"
	"github.com/deckpatch/deckpatch/pkg/operation"
	"github.com/deckpatch/deckpatch/pkg/status"
)

// NewReplaceCmd creates a new replace command
func NewReplaceCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Rewrite placeholder text in slide bodies and chart titles",
		Long: `Replace applies the configured replacement rules to every slide body
paragraph and chart title of the configured documents. Run formatting
is preserved; embedded spreadsheets are left alone (see sync).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			console := consoleFrom(ctx)
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

			console.Header(fmt.Sprintf("replacing text in %d documents", len(docs)))

			failures, total := 0, 0
			for _, doc := range docs {
				console.StartDocOperation(ctx, log.DocOperation{Path: doc, Mode: "replace"})
				res := operation.Replace(ctx, doc, cfg.Replacements, cfg.Match)
				console.EndDocOperation(ctx, res.Count)

				user.LogDocReport(docReport(res))
				total += res.Count
				if !res.Success() {
					failures++
				}
			}

			user.LogBatch(len(docs), failures, total)
			if failures > 0 {
				return errors.Errorf("%d of %d documents failed", failures, len(docs))
			}
			return nil
		},
	}

	return cmd
}
