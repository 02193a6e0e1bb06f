// Package sheet is the spreadsheet-substitution collaborator: it rewrites
// text inside raw workbook bytes without knowing anything about the deck
// the workbook came from.
package sheet

import (
	"context"

	"github.com/deckpatch/deckpatch/pkg/text"
)

// 📊 Result is the outcome of one workbook substitution. Updated is nil
// when no replacement was made, signalling the caller to leave the
// original bytes alone.
type Result struct {
	Count   int
	Updated []byte
}

// Changed reports whether the workbook bytes were modified.
func (r Result) Changed() bool {
	return r.Updated != nil
}

// 🔌 Substituter replaces text inside raw spreadsheet package bytes. The
// input bytes are never modified; a changed workbook comes back as a fresh
// byte slice in Result.Updated.
type Substituter interface {
	Replace(ctx context.Context, data []byte, rules []text.Rule, policy text.MatchPolicy) (Result, error)
}
