package deck

import (
	"context"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/deckpatch/deckpatch/pkg/text"
)

// ErrEmptyMapping is returned when no usable replacement rule remains
// after validation.
var ErrEmptyMapping = errors.New("empty replacement mapping")

// 🚶 ReplaceText walks every text-bearing paragraph of the deck — slide body
// text and chart titles — applying the replacement rules with formatting
// preserved, and saves the container at most once.
//
// Validation failures (missing file, bad extension, empty mapping) are
// reported before the container is opened. Blank keys are skipped with a
// warning, never fatal. When policy.ReplaceAll is false the walk saves and
// returns as soon as the first replacement lands.
func ReplaceText(ctx context.Context, docPath string, rules []text.Rule, policy text.MatchPolicy) (int, error) {
	logger := zerolog.Ctx(ctx)

	valid, skipped := text.NormalizeRules(rules)
	for _, key := range skipped {
		logger.Warn().Str("key", key).Msg("skipping blank replacement key")
	}
	if len(valid) == 0 {
		return 0, errors.Errorf("%w: no usable keys", ErrEmptyMapping)
	}
	if err := ValidatePath(docPath); err != nil {
		return 0, err
	}

	pkg, err := Open(docPath)
	if err != nil {
		return 0, err
	}

	total := 0
	parts := append(partsMatching(pkg, slideGlob), partsMatching(pkg, chartGlob)...)
	for _, name := range parts {
		data, ok := pkg.Data(name)
		if !ok {
			continue
		}

		src := string(data)
		var out string
		var n int
		var stopped bool
		if strings.HasPrefix(name, "ppt/charts/") {
			out, n, stopped = rewriteChartPart(src, valid, policy)
		} else {
			out, n, stopped = rewriteSlidePart(src, valid, policy)
		}

		if n > 0 {
			logger.Debug().Str("part", name).Int("replacements", n).Msg("rewrote part")
		}
		if out != src {
			pkg.SetData(name, []byte(out))
		}
		total += n

		if stopped {
			if err := pkg.Save(); err != nil {
				return 0, errors.Errorf("saving document: %w", err)
			}
			logger.Info().Int("replacements", total).Msg("saved after first replacement")
			return total, nil
		}
	}

	if err := pkg.Save(); err != nil {
		return 0, errors.Errorf("saving document: %w", err)
	}
	return total, nil
}

// partsMatching returns the member names matching a glob, ordered by their
// numeric suffix so slide10 sorts after slide9.
func partsMatching(pkg *Package, glob string) []string {
	var names []string
	for _, name := range pkg.Names() {
		if ok, err := doublestar.Match(glob, name); err == nil && ok {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		ni, nj := partNumber(names[i]), partNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})
	return names
}

// partNumber extracts the trailing number of a part's base name.
func partNumber(name string) int {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	i := len(base)
	for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(base[i:])
	if err != nil {
		return 0
	}
	return n
}
