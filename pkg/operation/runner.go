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
	"runtime"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/deckpatch/deckpatch/pkg/config"
	"github.com/deckpatch/deckpatch/pkg/refresh"
	"github.com/deckpatch/deckpatch/pkg/sheet"
)

// 🔧 Deps carries the collaborators the runner injects into each
// document operation.
type Deps struct {
	Substituter sheet.Substituter // embedded workbook rewriter
	Refresh     refresh.Factory   // nil disables chart refresh
}

// 🔍 ExpandDocuments resolves the config document patterns to concrete
// paths. Patterns use doublestar globs; a literal path matches itself.
func ExpandDocuments(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var docs []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, errors.Errorf("expanding pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("pattern %q matched no documents", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				docs = append(docs, m)
			}
		}
	}
	sort.Strings(docs)
	return docs, nil
}

// 🚀 Run executes the full pipeline for every document the config
// names: body text replacement, then embedded workbook sync with
// conditional chart refresh. One Result per document, in document
// order. Document failures do not abort the batch.
func Run(ctx context.Context, cfg *config.Config, deps Deps) ([]Result, error) {
	logger := zerolog.Ctx(ctx)

	docs, err := ExpandDocuments(cfg.Documents)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("documents", len(docs)).Bool("parallel", cfg.Parallel).Msg("starting batch")

	factory := deps.Refresh
	if !cfg.RefreshCharts {
		factory = nil
	}

	results := make([]Result, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Parallel {
		g.SetLimit(runtime.NumCPU())
	} else {
		g.SetLimit(1)
	}

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			results[i] = runOne(gctx, doc, cfg, deps.Substituter, factory)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// runOne runs both pipeline phases for a single document and merges
// the phase results.
func runOne(ctx context.Context, path string, cfg *config.Config, sub sheet.Substituter, factory refresh.Factory) Result {
	res := Replace(ctx, path, cfg.Replacements, cfg.Match)
	if !res.Success() {
		return res
	}

	if sub == nil {
		return res
	}

	synced := SyncEmbedded(ctx, path, cfg.Replacements, cfg.Match, cfg.Selector, sub, factory)
	synced.RunID = res.RunID
	synced.Count += res.Count
	return synced
}
