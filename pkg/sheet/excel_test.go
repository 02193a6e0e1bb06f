package sheet

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/deckpatch/deckpatch/pkg/text"
)

// buildWorkbook serializes a workbook with the given Sheet1 cell values.
func buildWorkbook(t *testing.T, cells map[string]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for addr, val := range cells {
		require.NoError(t, f.SetCellStr("Sheet1", addr, val))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func cellValue(t *testing.T, data []byte, addr string) string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	val, err := f.GetCellValue("Sheet1", addr)
	require.NoError(t, err)
	return val
}

func TestExcelSubstituter_Replace(t *testing.T) {
	policy := text.MatchPolicy{ReplaceAll: true, WholeWord: true}
	rules := []text.Rule{{Key: "name", Value: "Acme"}}

	data := buildWorkbook(t, map[string]string{
		"A1": "Hello {{name}}",
		"B2": "plain name here",
		"C3": "untouched",
	})

	sub := NewExcelSubstituter()
	res, err := sub.Replace(context.Background(), data, rules, policy)
	require.NoError(t, err)
	require.True(t, res.Changed())
	assert.Equal(t, 2, res.Count)

	assert.Equal(t, "Hello Acme", cellValue(t, res.Updated, "A1"))
	assert.Equal(t, "plain Acme here", cellValue(t, res.Updated, "B2"))
	assert.Equal(t, "untouched", cellValue(t, res.Updated, "C3"))
}

func TestExcelSubstituter_NoMatch(t *testing.T) {
	data := buildWorkbook(t, map[string]string{"A1": "nothing relevant"})

	res, err := NewExcelSubstituter().Replace(context.Background(), data,
		[]text.Rule{{Key: "absent", Value: "x"}}, text.MatchPolicy{ReplaceAll: true})
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Zero(t, res.Count)
	assert.Nil(t, res.Updated)
}

func TestExcelSubstituter_FirstOnly(t *testing.T) {
	data := buildWorkbook(t, map[string]string{
		"A1": "x marks",
		"A2": "x again",
	})

	res, err := NewExcelSubstituter().Replace(context.Background(), data,
		[]text.Rule{{Key: "x", Value: "y"}}, text.MatchPolicy{MatchCase: true})
	require.NoError(t, err)
	require.True(t, res.Changed())
	assert.Equal(t, 1, res.Count)

	first := cellValue(t, res.Updated, "A1")
	second := cellValue(t, res.Updated, "A2")
	changed := 0
	if first == "y marks" {
		changed++
	}
	if second == "y again" {
		changed++
	}
	assert.Equal(t, 1, changed, "exactly one cell must change")
}

func TestExcelSubstituter_PreservesFormulas(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellStr("Sheet1", "A1", "cat"))
	require.NoError(t, f.SetCellFormula("Sheet1", "B1", "=A1"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res, err := NewExcelSubstituter().Replace(context.Background(), buf.Bytes(),
		[]text.Rule{{Key: "cat", Value: "dog"}}, text.MatchPolicy{ReplaceAll: true, WholeWord: true})
	require.NoError(t, err)
	require.True(t, res.Changed())

	out, err := excelize.OpenReader(bytes.NewReader(res.Updated))
	require.NoError(t, err)
	defer out.Close()

	val, err := out.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "dog", val)

	formula, err := out.GetCellFormula("Sheet1", "B1")
	require.NoError(t, err)
	assert.Contains(t, formula, "A1")
}

func TestExcelSubstituter_InvalidWorkbook(t *testing.T) {
	_, err := NewExcelSubstituter().Replace(context.Background(), []byte("garbage"),
		[]text.Rule{{Key: "a", Value: "b"}}, text.MatchPolicy{ReplaceAll: true})
	assert.Error(t, err)
}
