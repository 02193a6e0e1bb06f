package status

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 UserLogger provides user-friendly feedback about document processing.
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
}

// 🎨 DocOutcome represents the result of processing one document.
type DocOutcome int

const (
	DocReplaced DocOutcome = iota
	DocUnchanged
	DocSynced
	DocSkipped
	DocError
)

// 🖼️ DocReport represents the processed state of one document.
type DocReport struct {
	Outcome      DocOutcome
	Path         string
	Replacements int
	Description  string
	Error        error
}

// 🎯 NewUserLogger creates a new user logger.
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 📝 LogDocReport logs a document result with appropriate emoji and formatting.
func (u *UserLogger) LogDocReport(report DocReport) {
	// Base name keeps the output readable for long paths
	relPath := filepath.Base(report.Path)

	var prefix, action string
	var printer *pterm.PrefixPrinter
	switch report.Outcome {
	case DocReplaced:
		prefix = "🔄"
		action = "Replaced"
		printer = pterm.Success.WithPrefix(pterm.Prefix{Text: prefix})
	case DocUnchanged:
		prefix = "⏭️"
		action = "Unchanged"
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: prefix})
	case DocSynced:
		prefix = "📊"
		action = "Synced"
		printer = pterm.Success.WithPrefix(pterm.Prefix{Text: prefix})
	case DocSkipped:
		prefix = "⚠️"
		action = "Skipped"
		printer = pterm.Warning.WithPrefix(pterm.Prefix{Text: prefix})
	case DocError:
		prefix = "❌"
		action = "Error"
		printer = pterm.Error.WithPrefix(pterm.Prefix{Text: prefix})
	}

	msg := fmt.Sprintf("%s %s", action, relPath)
	if report.Replacements > 0 {
		msg += fmt.Sprintf(" (%d replacements)", report.Replacements)
	}
	if report.Description != "" {
		msg += fmt.Sprintf(" (%s)", report.Description)
	}

	if report.Error != nil {
		printer.Println(msg)
		pterm.Error.Println(report.Error)
		u.log.Error().Err(report.Error).Msg(msg)
	} else {
		printer.Println(msg)
		u.log.Info().Msg(msg)
	}
}

// 📊 LogBatch logs the summary for a batch run.
func (u *UserLogger) LogBatch(documents, failures, replacements int) {
	msg := fmt.Sprintf("Processed %d documents, %d replacements", documents, replacements)
	if failures > 0 {
		msg += fmt.Sprintf(", %d failed", failures)
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "📦"}).Println(msg)
		u.log.Warn().Msg(msg)
	} else {
		pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"}).Println(msg)
		u.log.Info().Msg(msg)
	}
}

// 🔍 LogValidation logs validation results.
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(description)
		u.log.Info().Msg(description)
	} else {
		if err != nil {
			pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(description)
			pterm.Error.Println(err)
			u.log.Error().Err(err).Msg(description)
		} else {
			pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(description)
			u.log.Warn().Msg(description)
		}
	}
}

// LogRefresh logs a chart refresh operation.
func (u *UserLogger) LogRefresh(ctx context.Context, path string, err error) {
	relPath := filepath.Base(path)
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "📉"}).Printf("Chart refresh failed for %s\n", relPath)
		pterm.Error.Println(err)
		u.log.Error().Err(err).Str("document", path).Msg("chart refresh failed")
		return
	}
	pterm.Success.WithPrefix(pterm.Prefix{Text: "📈"}).Printf("Refreshed charts in %s\n", relPath)
	u.log.Info().Str("document", path).Msg("charts refreshed")
}
