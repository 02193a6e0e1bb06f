// Package refresh asks the external presentation application to re-pull
// chart data after embedded workbooks have changed. The application is an
// uncontrollable collaborator; everything here is written against narrow
// interfaces so the automation host can be swapped or faked.
package refresh

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrUnsupported is returned by automation factories on platforms without
// a presentation application to automate.
var ErrUnsupported = errors.New("presentation automation is not supported on this platform")

// 📈 Chart is one chart object somewhere in the open presentation.
type Chart interface {
	// Slide is the 1-based slide index the chart sits on, for diagnostics.
	Slide() int
	// Refresh forces the chart to reload its backing data.
	Refresh(ctx context.Context) error
}

// 📄 Document is a presentation opened inside the automation host.
type Document interface {
	Charts(ctx context.Context) ([]Chart, error)
	Save(ctx context.Context) error
	Close(ctx context.Context) error
}

// 🤖 Automation is a live session with the presentation application.
type Automation interface {
	Open(ctx context.Context, path string) (Document, error)
	Quit(ctx context.Context) error
}

// 🏭 Factory acquires an automation session, including any process-wide
// initialization the host needs. Quit on the returned Automation must
// undo that initialization.
type Factory func(ctx context.Context) (Automation, error)

// WithSession acquires an automation session and guarantees the paired
// teardown on every exit path, including panics inside fn. The host's
// process-wide state must never leak past this call.
func WithSession(ctx context.Context, factory Factory, fn func(Automation) error) error {
	auto, err := factory(ctx)
	if err != nil {
		return errors.Errorf("acquiring automation session: %w", err)
	}
	defer func() {
		if qerr := auto.Quit(ctx); qerr != nil {
			zerolog.Ctx(ctx).Warn().Err(qerr).Msg("automation teardown failed")
		}
	}()
	return fn(auto)
}

// 🔄 AllCharts opens the document, refreshes every chart, saves and closes.
// A single chart failing to refresh is logged and skipped; failing to
// open or save the document is fatal. The caller decides when a refresh
// is warranted — typically only after an embedded workbook changed.
func AllCharts(ctx context.Context, factory Factory, path string) error {
	logger := zerolog.Ctx(ctx)

	return WithSession(ctx, factory, func(auto Automation) error {
		doc, err := auto.Open(ctx, path)
		if err != nil {
			return errors.Errorf("opening document %s: %w", path, err)
		}
		defer func() {
			if cerr := doc.Close(ctx); cerr != nil {
				logger.Warn().Err(cerr).Msg("closing document failed")
			}
		}()

		charts, err := doc.Charts(ctx)
		if err != nil {
			return errors.Errorf("enumerating charts: %w", err)
		}

		refreshed := 0
		for _, chart := range charts {
			if err := ctx.Err(); err != nil {
				return errors.Errorf("refreshing charts: %w", err)
			}
			if err := chart.Refresh(ctx); err != nil {
				logger.Warn().Int("slide", chart.Slide()).Err(err).Msg("chart refresh failed, skipping")
				continue
			}
			refreshed++
		}

		if err := doc.Save(ctx); err != nil {
			return errors.Errorf("saving document after refresh: %w", err)
		}
		logger.Info().Int("charts", len(charts)).Int("refreshed", refreshed).Msg("chart refresh complete")
		return nil
	})
}
