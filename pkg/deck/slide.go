package deck

import (
	"strconv"
	"strings"

	"github.com/deckpatch/deckpatch/pkg/text"
)

// Slide and chart parts are rewritten as raw byte splices over the member
// XML rather than through a DOM round-trip: only the character data of
// touched <a:t> nodes changes, so every untouched run, paragraph and
// property element keeps its exact source bytes. The run's surrounding XML
// is the opaque style handle the rewriter carries.

// xmlRun is one <a:r> element inside a paragraph. textStart/textEnd bound
// the character data of its <a:t> node; fragment is false for runs with no
// usable text node, which are copied verbatim.
type xmlRun struct {
	start, end         int
	textStart, textEnd int
	text               string
	fragment           bool
}

// xmlParagraph is one <a:p> element and its runs, by absolute offsets.
type xmlParagraph struct {
	start, end int
	runs       []xmlRun
}

// findElement locates the next <tag ...>...</tag> element in src within
// [from,to). It returns the element span and its inner content span; a
// self-closing element has an empty inner span at its end. Tag-prefix
// collisions (a:p vs a:pPr) are excluded by checking the byte after the tag.
func findElement(src, tag string, from, to int) (elStart, elEnd, inStart, inEnd int, ok bool) {
	open := "<" + tag
	for pos := from; pos < to; {
		idx := strings.Index(src[pos:to], open)
		if idx < 0 {
			return 0, 0, 0, 0, false
		}
		elStart = pos + idx
		after := elStart + len(open)
		if after >= to {
			return 0, 0, 0, 0, false
		}
		switch src[after] {
		case '>', ' ', '/', '\t', '\n', '\r':
		default:
			pos = after
			continue
		}

		gt := strings.IndexByte(src[after:to], '>')
		if gt < 0 {
			return 0, 0, 0, 0, false
		}
		gt += after
		if src[gt-1] == '/' {
			return elStart, gt + 1, gt + 1, gt + 1, true
		}

		inStart = gt + 1
		closing := "</" + tag + ">"
		closeIdx := strings.Index(src[inStart:to], closing)
		if closeIdx < 0 {
			return 0, 0, 0, 0, false
		}
		inEnd = inStart + closeIdx
		return elStart, inEnd + len(closing), inStart, inEnd, true
	}
	return 0, 0, 0, 0, false
}

// scanParagraphs parses every <a:p> element in src[lo:hi) with its runs.
func scanParagraphs(src string, lo, hi int) []xmlParagraph {
	var paras []xmlParagraph
	pos := lo
	for {
		pStart, pEnd, pInS, pInE, ok := findElement(src, "a:p", pos, hi)
		if !ok {
			break
		}
		para := xmlParagraph{start: pStart, end: pEnd}

		rpos := pInS
		for {
			rStart, rEnd, rInS, rInE, ok := findElement(src, "a:r", rpos, pInE)
			if !ok {
				break
			}
			run := xmlRun{start: rStart, end: rEnd}
			if _, _, tInS, tInE, ok := findElement(src, "a:t", rInS, rInE); ok {
				raw := src[tInS:tInE]
				run.textStart = tInS
				run.textEnd = tInE
				run.text = unescapeXML(raw)
				run.fragment = run.text != ""
			}
			para.runs = append(para.runs, run)
			rpos = rEnd
		}

		paras = append(paras, para)
		pos = pEnd
	}
	return paras
}

// edit is a pending byte splice over the part source.
type edit struct {
	start, end  int
	replacement string
}

// rewriteRegion applies the replacement rules to every paragraph inside
// src[lo:hi) and splices the rewritten paragraphs back. It returns the new
// part source, the number of replacements, and whether the walk stopped
// early because the policy asked for a single replacement.
func rewriteRegion(src string, lo, hi int, rules []text.Rule, policy text.MatchPolicy) (string, int, bool) {
	total := 0
	stopped := false
	var edits []edit

	for _, para := range scanParagraphs(src, lo, hi) {
		frags, runIdx := paragraphFragments(src, para)
		if len(frags) == 0 {
			continue
		}

		var full strings.Builder
		for _, f := range frags {
			full.WriteString(f.Text)
		}
		fullText := full.String()

		matches := text.FindMatches(fullText, rules, policy)
		if len(matches) == 0 {
			continue
		}
		total += len(matches)

		newFrags, changed := text.Rewrite(fullText, frags, matches)
		if changed {
			edits = append(edits, edit{
				start:       para.start,
				end:         para.end,
				replacement: rebuildParagraph(src, para, newFrags, runIdx),
			})
		}

		if !policy.ReplaceAll {
			stopped = true
			break
		}
	}

	if len(edits) == 0 {
		return src, total, stopped
	}

	var b strings.Builder
	cursor := 0
	for _, e := range edits {
		b.WriteString(src[cursor:e.start])
		b.WriteString(e.replacement)
		cursor = e.end
	}
	b.WriteString(src[cursor:])
	return b.String(), total, stopped
}

// paragraphFragments extracts the styled fragments of a paragraph. The
// style handle is the index of the owning run, so the rewriter's output
// can be matched back to the run XML it belongs to.
func paragraphFragments(src string, para xmlParagraph) ([]text.Fragment, []int) {
	var frags []text.Fragment
	var runIdx []int
	for i, run := range para.runs {
		if !run.fragment {
			continue
		}
		frags = append(frags, text.Fragment{Text: run.text, Style: i})
		runIdx = append(runIdx, i)
	}
	return frags, runIdx
}

// rebuildParagraph reassembles a paragraph's XML from its surviving
// fragments. Runs whose fragment survived get its new text spliced into
// their original XML; runs whose fragment was dropped are removed; runs
// that never carried a fragment are copied verbatim, as is everything
// between them.
func rebuildParagraph(src string, para xmlParagraph, newFrags []text.Fragment, runIdx []int) string {
	surviving := make(map[int]string, len(newFrags))
	for _, f := range newFrags {
		if i, ok := f.Style.(int); ok {
			surviving[i] = f.Text
		}
	}
	wasFragment := make(map[int]bool, len(runIdx))
	for _, i := range runIdx {
		wasFragment[i] = true
	}

	var b strings.Builder
	cursor := para.start
	for i, run := range para.runs {
		b.WriteString(src[cursor:run.start])
		cursor = run.end

		if !wasFragment[i] {
			b.WriteString(src[run.start:run.end])
			continue
		}
		newText, ok := surviving[i]
		if !ok {
			continue // fragment went empty; drop the whole run
		}
		b.WriteString(src[run.start:run.textStart])
		b.WriteString(escapeXML(newText))
		b.WriteString(src[run.textEnd:run.end])
	}
	b.WriteString(src[cursor:para.end])
	return b.String()
}

// rewriteSlidePart rewrites every paragraph of a slide part.
func rewriteSlidePart(src string, rules []text.Rule, policy text.MatchPolicy) (string, int, bool) {
	return rewriteRegion(src, 0, len(src), rules, policy)
}

// rewriteChartPart rewrites only the chart-title region of a chart part.
// Charts without a rich title are left untouched.
func rewriteChartPart(src string, rules []text.Rule, policy text.MatchPolicy) (string, int, bool) {
	_, _, inStart, inEnd, ok := findElement(src, "c:title", 0, len(src))
	if !ok || inStart == inEnd {
		return src, 0, false
	}
	return rewriteRegion(src, inStart, inEnd, rules, policy)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// escapeXML escapes character data for splicing back into a text node.
func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// unescapeXML resolves the predefined entities plus numeric character
// references in a text node's character data.
func unescapeXML(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		semi := strings.IndexByte(s[i:], ';')
		if semi < 0 {
			b.WriteString(s[i:])
			break
		}
		entity := s[i+1 : i+semi]
		switch {
		case entity == "amp":
			b.WriteByte('&')
		case entity == "lt":
			b.WriteByte('<')
		case entity == "gt":
			b.WriteByte('>')
		case entity == "quot":
			b.WriteByte('"')
		case entity == "apos":
			b.WriteByte('\'')
		case strings.HasPrefix(entity, "#x"), strings.HasPrefix(entity, "#X"):
			if n, err := strconv.ParseInt(entity[2:], 16, 32); err == nil {
				b.WriteRune(rune(n))
			} else {
				b.WriteString(s[i : i+semi+1])
			}
		case strings.HasPrefix(entity, "#"):
			if n, err := strconv.ParseInt(entity[1:], 10, 32); err == nil {
				b.WriteRune(rune(n))
			} else {
				b.WriteString(s[i : i+semi+1])
			}
		default:
			b.WriteString(s[i : i+semi+1])
		}
		i += semi + 1
	}
	return b.String()
}
