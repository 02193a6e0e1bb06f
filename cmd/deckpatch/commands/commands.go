package commands

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/deckpatch/deckpatch/pkg/log"
	"github.com/deckpatch/deckpatch/pkg/operation"
	"github.com/deckpatch/deckpatch/pkg/status"
)

// consoleFrom returns the context console logger, or a default one.
func consoleFrom(ctx context.Context) *log.Logger {
	if console := log.FromContext(ctx); console != nil {
		return console
	}
	return log.New(os.Stdout, zerolog.InfoLevel)
}

// docReport converts an operation result into a user-facing report.
func docReport(res operation.Result) status.DocReport {
	report := status.DocReport{
		Path:         res.Path,
		Replacements: res.Count,
	}
	switch {
	case !res.Success():
		report.Outcome = status.DocError
		report.Error = res.Err
	case res.WorkbooksUpdated > 0:
		report.Outcome = status.DocSynced
	case res.Count > 0:
		report.Outcome = status.DocReplaced
	default:
		report.Outcome = status.DocUnchanged
	}
	return report
}
