package sheet

import (
	"bytes"
	"context"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"gitlab.com/tozd/go/errors"

	"github.com/deckpatch/deckpatch/pkg/text"
)

// Ensure ExcelSubstituter implements the collaborator contract.
var _ Substituter = (*ExcelSubstituter)(nil)

// 📊 ExcelSubstituter rewrites string cells of an xlsx workbook with the
// same pattern engine used for slide text. Formula cells are left alone.
type ExcelSubstituter struct{}

// 🏭 NewExcelSubstituter creates a new workbook substituter.
func NewExcelSubstituter() *ExcelSubstituter {
	return &ExcelSubstituter{}
}

// 🔄 Replace implements Substituter. It walks every cell of every sheet,
// applying the rules to string cells; when policy.ReplaceAll is false it
// stops at the first replacement. The result carries the re-serialized
// workbook only when at least one cell changed.
func (s *ExcelSubstituter) Replace(ctx context.Context, data []byte, rules []text.Rule, policy text.MatchPolicy) (Result, error) {
	logger := zerolog.Ctx(ctx)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Result{}, errors.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	valid, _ := text.NormalizeRules(rules)
	if len(valid) == 0 {
		return Result{}, nil
	}

	total := 0
sheets:
	for _, sheetName := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return Result{}, errors.Errorf("replacing in workbook: %w", err)
		}

		rows, err := f.GetRows(sheetName)
		if err != nil {
			return Result{}, errors.Errorf("reading sheet %s: %w", sheetName, err)
		}

		for ri, row := range rows {
			for ci, cell := range row {
				if cell == "" {
					continue
				}
				newVal, n := text.ReplaceString(cell, valid, policy)
				if n == 0 {
					continue
				}

				addr, err := excelize.CoordinatesToCellName(ci+1, ri+1)
				if err != nil {
					return Result{}, errors.Errorf("resolving cell %d,%d: %w", ci+1, ri+1, err)
				}

				// GetRows yields computed values; rewriting a formula cell
				// from its cached value would destroy the formula.
				if formula, _ := f.GetCellFormula(sheetName, addr); formula != "" {
					logger.Debug().Str("sheet", sheetName).Str("cell", addr).Msg("skipping formula cell")
					continue
				}

				if err := f.SetCellStr(sheetName, addr, newVal); err != nil {
					return Result{}, errors.Errorf("writing cell %s!%s: %w", sheetName, addr, err)
				}
				total += n

				if !policy.ReplaceAll {
					break sheets
				}
			}
		}
	}

	if total == 0 {
		return Result{}, nil
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Result{}, errors.Errorf("serializing workbook: %w", err)
	}
	logger.Debug().Int("replacements", total).Msg("workbook rewritten")
	return Result{Count: total, Updated: buf.Bytes()}, nil
}
