package deck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckpatch/deckpatch/pkg/text"
)

const slideXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:sp><p:txBody><a:bodyPr/><a:p><a:pPr lvl="0"/><a:r><a:rPr lang="en-US" b="1"/><a:t>Hello {{na</a:t></a:r><a:r><a:rPr lang="en-US"/><a:t>me}}, welcome &lt;name&gt;!</a:t></a:r><a:endParaRPr lang="en-US"/></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`

const chartXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<c:chartSpace xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><c:chart><c:title><c:tx><c:rich><a:bodyPr/><a:p><a:r><a:rPr lang="en-US"/><a:t>Revenue for [name]</a:t></a:r></a:p></c:rich></c:tx></c:title><c:plotArea><c:valAx><c:title><c:tx><c:rich><a:p><a:r><a:t>unrelated</a:t></a:r></a:p></c:rich></c:tx></c:title></c:valAx></c:plotArea></c:chart></c:chartSpace>`

func TestScanParagraphs(t *testing.T) {
	paras := scanParagraphs(slideXML, 0, len(slideXML))
	require.Len(t, paras, 1)
	require.Len(t, paras[0].runs, 2)

	assert.Equal(t, "Hello {{na", paras[0].runs[0].text)
	assert.Equal(t, "me}}, welcome <name>!", paras[0].runs[1].text)
	assert.True(t, paras[0].runs[0].fragment)
	assert.True(t, paras[0].runs[1].fragment)
}

func TestScanParagraphs_EmptyAndSelfClosing(t *testing.T) {
	src := `<a:p><a:pPr/></a:p><a:p><a:r><a:rPr/><a:t/></a:r></a:p>`
	paras := scanParagraphs(src, 0, len(src))
	require.Len(t, paras, 2)
	assert.Empty(t, paras[0].runs)
	require.Len(t, paras[1].runs, 1)
	assert.False(t, paras[1].runs[0].fragment)
}

func TestRewriteSlidePart(t *testing.T) {
	policy := text.MatchPolicy{ReplaceAll: true, WholeWord: true}
	rules := []text.Rule{{Key: "name", Value: "Acme"}}

	out, n, stopped := rewriteSlidePart(slideXML, rules, policy)
	assert.Equal(t, 2, n)
	assert.False(t, stopped)

	paras := scanParagraphs(out, 0, len(out))
	require.Len(t, paras, 1)
	var full strings.Builder
	for _, run := range paras[0].runs {
		full.WriteString(run.text)
	}
	assert.Equal(t, "Hello Acme, welcome Acme!", full.String())

	// Run properties survive untouched.
	assert.Contains(t, out, `<a:rPr lang="en-US" b="1"/>`)
	assert.Contains(t, out, `<a:pPr lvl="0"/>`)
	assert.Contains(t, out, `<a:endParaRPr lang="en-US"/>`)
}

func TestRewriteSlidePart_NoMatchIsByteIdentical(t *testing.T) {
	out, n, stopped := rewriteSlidePart(slideXML, []text.Rule{{Key: "absent", Value: "x"}}, text.MatchPolicy{ReplaceAll: true})
	assert.Equal(t, slideXML, out)
	assert.Zero(t, n)
	assert.False(t, stopped)
}

func TestRewriteSlidePart_FirstOnlyStops(t *testing.T) {
	src := `<a:p><a:r><a:t>x and x</a:t></a:r></a:p><a:p><a:r><a:t>x again</a:t></a:r></a:p>`
	out, n, stopped := rewriteSlidePart(src, []text.Rule{{Key: "x", Value: "y"}}, text.MatchPolicy{MatchCase: true})
	assert.Equal(t, 1, n)
	assert.True(t, stopped)
	assert.Contains(t, out, "y and x")
	assert.Contains(t, out, "x again")
}

func TestRewriteSlidePart_DropsEmptiedRun(t *testing.T) {
	src := `<a:p><a:r><a:rPr i="1"/><a:t>[gone]</a:t></a:r><a:r><a:t>kept</a:t></a:r></a:p>`
	out, n, _ := rewriteSlidePart(src, []text.Rule{{Key: "gone", Value: ""}}, text.MatchPolicy{ReplaceAll: true, MatchCase: true})
	assert.Equal(t, 1, n)
	assert.NotContains(t, out, `<a:rPr i="1"/>`)
	assert.Contains(t, out, `<a:r><a:t>kept</a:t></a:r>`)
}

func TestRewriteSlidePart_EscapesReplacementText(t *testing.T) {
	src := `<a:p><a:r><a:t>{{k}}</a:t></a:r></a:p>`
	out, n, _ := rewriteSlidePart(src, []text.Rule{{Key: "k", Value: "a < b & c"}}, text.MatchPolicy{ReplaceAll: true, MatchCase: true})
	assert.Equal(t, 1, n)
	assert.Contains(t, out, `<a:t>a &lt; b &amp; c</a:t>`)
}

func TestRewriteChartPart(t *testing.T) {
	policy := text.MatchPolicy{ReplaceAll: true, WholeWord: true}
	out, n, _ := rewriteChartPart(chartXML, []text.Rule{{Key: "name", Value: "Acme"}}, policy)
	assert.Equal(t, 1, n)
	assert.Contains(t, out, "Revenue for Acme")
}

func TestRewriteChartPart_OnlyTitleRegion(t *testing.T) {
	// "unrelated" lives in an axis title nested deeper in the part; only the
	// first (chart) title region is eligible.
	out, n, _ := rewriteChartPart(chartXML, []text.Rule{{Key: "unrelated", Value: "x"}}, text.MatchPolicy{ReplaceAll: true, MatchCase: true})
	assert.Zero(t, n)
	assert.Equal(t, chartXML, out)
}

func TestRewriteChartPart_NoTitle(t *testing.T) {
	src := `<c:chartSpace><c:chart><c:plotArea/></c:chart></c:chartSpace>`
	out, n, _ := rewriteChartPart(src, []text.Rule{{Key: "k", Value: "v"}}, text.MatchPolicy{ReplaceAll: true})
	assert.Zero(t, n)
	assert.Equal(t, src, out)
}

func TestUnescapeXML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "no entities", want: "no entities"},
		{name: "named", in: "&lt;a&gt; &amp; &quot;b&quot; &apos;c&apos;", want: `<a> & "b" 'c'`},
		{name: "decimal", in: "&#65;", want: "A"},
		{name: "hex", in: "&#x41;", want: "A"},
		{name: "unknown_entity_kept", in: "&bogus;", want: "&bogus;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unescapeXML(tt.in))
		})
	}
}

func TestFindElement_PrefixCollision(t *testing.T) {
	src := `<a:pPr/><a:p><a:r><a:t>hi</a:t></a:r></a:p>`
	start, _, inS, inE, ok := findElement(src, "a:p", 0, len(src))
	require.True(t, ok)
	assert.Equal(t, 8, start)
	assert.Equal(t, `<a:r><a:t>hi</a:t></a:r>`, src[inS:inE])
}
