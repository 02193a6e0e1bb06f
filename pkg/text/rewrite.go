package text

import "strings"

// 🧵 Fragment is a minimal unit of styled text inside a paragraph. Style is
// an opaque handle owned by the caller; the rewriter never inspects it,
// it only keeps each surviving fragment paired with its original handle.
type Fragment struct {
	Text  string
	Style any
}

// ✂️ Rewrite applies non-overlapping, sorted matches across fragment
// boundaries. Each fragment keeps its original style; fragments whose text
// becomes empty are dropped rather than left blank.
//
// A match that spans several fragments emits its replacement value exactly
// once, in the first fragment it overlaps; the later overlapped fragments
// contribute only their residual text outside the match. Fragment offsets
// are resolved with a monotonically advancing cursor so repeated substrings
// stay left-to-right stable.
func Rewrite(fullText string, frags []Fragment, matches []Match) (out []Fragment, changed bool) {
	if len(matches) == 0 {
		return frags, false
	}

	emitted := make([]bool, len(matches))
	cursor := 0
	out = make([]Fragment, 0, len(frags))

	for _, frag := range frags {
		idx := strings.Index(fullText[cursor:], frag.Text)
		if idx < 0 {
			// The fragment no longer lines up with the concatenated text.
			// Keep it untouched instead of guessing at offsets.
			out = append(out, frag)
			continue
		}
		start := cursor + idx
		end := start + len(frag.Text)
		cursor = end

		var b strings.Builder
		pos := start
		for i, m := range matches {
			if m.End <= start || m.Start >= end {
				continue
			}
			ovStart := max(m.Start, start)
			ovEnd := min(m.End, end)
			b.WriteString(fullText[pos:ovStart])
			if !emitted[i] {
				b.WriteString(m.Value)
				emitted[i] = true
			}
			pos = ovEnd
		}
		b.WriteString(fullText[pos:end])

		newText := b.String()
		if newText != frag.Text {
			changed = true
		}
		if newText == "" {
			continue
		}
		out = append(out, Fragment{Text: newText, Style: frag.Style})
	}

	return out, changed
}

// 🪡 ReplaceString runs the full match-then-rewrite engine over a plain
// string, treating it as a single unstyled fragment. It returns the new
// string and the number of replacements applied.
func ReplaceString(s string, rules []Rule, policy MatchPolicy) (string, int) {
	matches := FindMatches(s, rules, policy)
	if len(matches) == 0 {
		return s, 0
	}
	var b strings.Builder
	pos := 0
	for _, m := range matches {
		b.WriteString(s[pos:m.Start])
		b.WriteString(m.Value)
		pos = m.End
	}
	b.WriteString(s[pos:])
	return b.String(), len(matches)
}
