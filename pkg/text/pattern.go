package text

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🎨 PlaceholderStyle is a delimiter convention signalling a substitutable
// token in free text. StylePlain is the bare key with no delimiters.
type PlaceholderStyle int

const (
	StylePlain PlaceholderStyle = iota
	StyleDoubleBrace                 // {{key}}
	StyleAngle                       // <key>
	StyleBracket                     // [key]
)

// styles is the expansion order: plain first, then each delimited spelling.
var styles = []PlaceholderStyle{StylePlain, StyleDoubleBrace, StyleAngle, StyleBracket}

// delimiterChars are the characters that open or close any placeholder style.
const delimiterChars = "{}<>[]"

// 📝 String returns a human-readable style name for logging.
func (s PlaceholderStyle) String() string {
	switch s {
	case StylePlain:
		return "plain"
	case StyleDoubleBrace:
		return "double-brace"
	case StyleAngle:
		return "angle"
	case StyleBracket:
		return "bracket"
	default:
		return "unknown"
	}
}

// 🎁 Wrap spells a key in this style's delimiters.
func (s PlaceholderStyle) Wrap(key string) string {
	open, close := s.delims()
	return open + key + close
}

// IsPlaceholder reports whether the style carries delimiters. Word-boundary
// enforcement never applies to delimited spellings.
func (s PlaceholderStyle) IsPlaceholder() bool {
	return s != StylePlain
}

func (s PlaceholderStyle) delims() (string, string) {
	switch s {
	case StyleDoubleBrace:
		return "{{", "}}"
	case StyleAngle:
		return "<", ">"
	case StyleBracket:
		return "[", "]"
	default:
		return "", ""
	}
}

// 🧩 Pattern is one concrete spelling of a replacement key, compiled for
// literal matching.
type Pattern struct {
	Style    PlaceholderStyle
	Spelling string // the wrapped spelling, e.g. "{{name}}"
	re       *regexp.Regexp
}

// 🏭 Expand produces the concrete patterns that should match for one key:
// the plain word plus each placeholder-delimited spelling. Regex-special
// characters in the key are always treated literally. The word-boundary
// rule applies only to the plain spelling, and only when the key itself
// does not already start or end with a delimiter character.
func Expand(key string, policy MatchPolicy) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(styles))
	for _, style := range styles {
		spelling := style.Wrap(key)
		expr := regexp.QuoteMeta(spelling)
		if style == StylePlain && policy.WholeWord && !touchesDelimiter(key) {
			expr = `\b` + expr + `\b`
		}
		if !policy.MatchCase {
			expr = `(?i)` + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.Errorf("compiling pattern for key %q (%s): %w", key, style, err)
		}
		patterns = append(patterns, Pattern{Style: style, Spelling: spelling, re: re})
	}
	return patterns, nil
}

// touchesDelimiter reports whether the key starts or ends with a
// placeholder delimiter character.
func touchesDelimiter(key string) bool {
	if key == "" {
		return false
	}
	return strings.ContainsRune(delimiterChars, rune(key[0])) ||
		strings.ContainsRune(delimiterChars, rune(key[len(key)-1]))
}
