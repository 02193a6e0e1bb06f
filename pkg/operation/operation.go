// Copyright 2025 the deckpatch authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/deckpatch/deckpatch/pkg/deck"
	"github.com/deckpatch/deckpatch/pkg/refresh"
	"github.com/deckpatch/deckpatch/pkg/sheet"
	"github.com/deckpatch/deckpatch/pkg/text"
)

// 🎨 Kind classifies how an operation failed, if it failed.
type Kind int

const (
	KindNone       Kind = iota // operation succeeded
	KindValidation             // bad input: missing document, empty mapping
	KindIO                     // container or filesystem failure
	KindExternal               // automation bridge failure
)

// 📝 String returns the kind name for logs.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindIO:
		return "io"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// 📦 Result is the structured outcome of one document operation.
type Result struct {
	RunID            uuid.UUID // correlates log lines across one invocation
	Path             string    // document the operation ran against
	Kind             Kind      // failure classification, KindNone on success
	Err              error     // underlying cause when Kind != KindNone
	Count            int       // total replacements made
	WorkbooksUpdated int       // embedded workbooks rewritten
	ChartsRefreshed  bool      // whether the refresh bridge ran and succeeded
}

// 🔍 Success reports whether the operation completed without failure.
func (r Result) Success() bool {
	return r.Kind == KindNone
}

// 🎯 classify maps an underlying error to a result kind.
func classify(err error) Kind {
	switch {
	case errors.Is(err, deck.ErrEmptyMapping), errors.Is(err, deck.ErrInvalidDocument):
		return KindValidation
	case errors.Is(err, refresh.ErrUnsupported):
		return KindExternal
	default:
		return KindIO
	}
}

// 🔄 Replace rewrites placeholder text in slide bodies and chart titles
// of a single document.
func Replace(ctx context.Context, path string, rules []text.Rule, policy text.MatchPolicy) Result {
	res := Result{RunID: uuid.New(), Path: path}
	logger := zerolog.Ctx(ctx).With().Stringer("run_id", res.RunID).Logger()
	ctx = logger.WithContext(ctx)

	count, err := deck.ReplaceText(ctx, path, rules, policy)
	res.Count = count
	if err != nil {
		res.Err = errors.Errorf("replacing text in %s: %w", path, err)
		res.Kind = classify(err)
		return res
	}

	logger.Info().Str("document", path).Int("replacements", count).Msg("text replacement complete")
	return res
}

// 📊 SyncEmbedded applies the replacement rules to every embedded
// workbook matched by selector, reinjects the changed workbooks, and
// refreshes charts through factory when anything changed. A nil factory
// skips the refresh step. An empty selector means all xlsx embeddings.
func SyncEmbedded(ctx context.Context, path string, rules []text.Rule, policy text.MatchPolicy, selector string, sub sheet.Substituter, factory refresh.Factory) Result {
	res := Result{RunID: uuid.New(), Path: path}
	logger := zerolog.Ctx(ctx).With().Stringer("run_id", res.RunID).Logger()
	ctx = logger.WithContext(ctx)

	if selector == "" {
		selector = deck.EmbeddedWorkbookGlob
	}

	valid, skipped := text.NormalizeRules(rules)
	for _, key := range skipped {
		logger.Warn().Str("key", key).Msg("skipping blank replacement key")
	}
	if len(valid) == 0 {
		res.Err = errors.Errorf("syncing %s: %w", path, deck.ErrEmptyMapping)
		res.Kind = KindValidation
		return res
	}

	if err := deck.ValidatePath(path); err != nil {
		res.Err = errors.Errorf("syncing %s: %w", path, err)
		res.Kind = KindValidation
		return res
	}

	pkg, err := deck.Open(path)
	if err != nil {
		res.Err = errors.Errorf("opening document: %w", err)
		res.Kind = KindIO
		return res
	}

	entries, err := pkg.Extract(selector)
	if err != nil {
		res.Err = errors.Errorf("extracting workbooks: %w", err)
		res.Kind = KindIO
		return res
	}

	// Deterministic order so logs and counts are stable
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	updates := make(map[string][]byte)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			res.Err = errors.Errorf("syncing %s: %w", path, err)
			res.Kind = KindIO
			return res
		}

		result, err := sub.Replace(ctx, entries[name], valid, policy)
		if err != nil {
			// A single unreadable workbook does not abort the document
			logger.Warn().Err(err).Str("workbook", name).Msg("skipping workbook")
			continue
		}
		if !result.Changed() {
			continue
		}
		updates[name] = result.Updated
		res.Count += result.Count
		logger.Debug().Str("workbook", name).Int("replacements", result.Count).Msg("workbook rewritten")
	}

	res.WorkbooksUpdated = len(updates)
	if len(updates) == 0 {
		logger.Info().Str("document", path).Msg("no embedded workbook changed")
		return res
	}

	if err := pkg.Substitute(updates); err != nil {
		res.Err = errors.Errorf("reinjecting workbooks: %w", err)
		res.Kind = KindIO
		return res
	}

	if factory != nil {
		if err := refresh.AllCharts(ctx, factory, path); err != nil {
			res.Err = errors.Errorf("refreshing charts: %w", err)
			res.Kind = KindExternal
			return res
		}
		res.ChartsRefreshed = true
	}

	logger.Info().
		Str("document", path).
		Int("workbooks", res.WorkbooksUpdated).
		Int("replacements", res.Count).
		Bool("charts_refreshed", res.ChartsRefreshed).
		Msg("embedded workbook sync complete")
	return res
}
