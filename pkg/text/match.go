package text

import (
	"sort"
	"strings"
)

// 🔄 Rule maps a replacement key to its substitution value. The key is the
// logical name; it matches both bare and placeholder-delimited spellings.
type Rule struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// 🔧 MatchPolicy controls how patterns are matched against paragraph text.
type MatchPolicy struct {
	MatchCase  bool `json:"match_case" yaml:"match_case"`
	WholeWord  bool `json:"whole_word" yaml:"whole_word"`
	ReplaceAll bool `json:"replace_all" yaml:"replace_all"`
}

// 🎯 Match is a half-open [Start,End) span of the paragraph's full text,
// tagged with the value to splice in.
type Match struct {
	Start int
	End   int
	Value string
}

// NormalizeRules trims keys and drops rules whose key is blank after
// trimming. Skipped keys are returned so callers can warn about them;
// a blank key is never fatal.
func NormalizeRules(rules []Rule) (valid []Rule, skipped []string) {
	for _, r := range rules {
		key := strings.TrimSpace(r.Key)
		if key == "" {
			skipped = append(skipped, r.Key)
			continue
		}
		valid = append(valid, Rule{Key: key, Value: r.Value})
	}
	return valid, skipped
}

// 🔍 FindMatches locates every surviving match in text for the given rules.
//
// Matching is two-phase by design: all matches are computed against the
// frozen text before any rewrite happens, so later patterns never see
// shifted offsets. Within one rule the spellings are merged with longer
// (delimited) spellings winning over a bare spelling they contain; across
// rules the first-applied rule wins on overlap. The result is
// non-overlapping and sorted by start offset.
//
// When policy.ReplaceAll is false, only the earliest match of the first
// rule that matches anywhere survives, and no further rules are tried.
func FindMatches(text string, rules []Rule, policy MatchPolicy) []Match {
	if text == "" {
		return nil
	}

	var taken []Match
	for _, rule := range rules {
		key := strings.TrimSpace(rule.Key)
		if key == "" {
			continue
		}
		patterns, err := Expand(key, policy)
		if err != nil {
			// QuoteMeta makes this unreachable for any real key; skip the
			// rule rather than fail the paragraph.
			continue
		}

		var candidates []Match
		for _, p := range patterns {
			for _, loc := range p.re.FindAllStringIndex(text, -1) {
				candidates = append(candidates, Match{Start: loc[0], End: loc[1], Value: rule.Value})
			}
		}
		if len(candidates) == 0 {
			continue
		}

		// Earliest first; on equal start the longer spelling wins, so a
		// delimited match beats the bare key it wraps.
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].Start != candidates[j].Start {
				return candidates[i].Start < candidates[j].Start
			}
			return candidates[i].End > candidates[j].End
		})

		for _, c := range candidates {
			if overlapsAny(c, taken) {
				continue
			}
			taken = append(taken, c)
			if !policy.ReplaceAll {
				break
			}
		}

		if !policy.ReplaceAll && len(taken) > 0 {
			break
		}
	}

	sort.Slice(taken, func(i, j int) bool { return taken[i].Start < taken[j].Start })
	return taken
}

func overlapsAny(m Match, taken []Match) bool {
	for _, t := range taken {
		if m.Start < t.End && t.Start < m.End {
			return true
		}
	}
	return false
}
