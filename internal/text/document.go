// Package text provides the text shaping applied to OCR output before it is
// analysed and returned to callers.
package text

import (
	"strings"
	"unicode/utf8"

	"github.com/book-expert/ai-router/internal/core"
)

const (
	// MaxAnalysisChars is the number of characters sent for sentiment analysis.
	// The provider rejects larger inputs.
	MaxAnalysisChars = 4500
	// PreviewChars is the number of characters echoed back to the caller.
	PreviewChars = 500

	lineSeparator = " "
)

// JoinLines concatenates the text of all LINE blocks with single spaces.
// Other block types are ignored.
func JoinLines(blocks []core.TextBlock) string {
	lines := make([]string, 0, len(blocks))

	for _, block := range blocks {
		if block.Type == core.BlockTypeLine {
			lines = append(lines, block.Text)
		}
	}

	return strings.Join(lines, lineSeparator)
}

// IsBlank reports whether s holds no visible text.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Truncate returns the first limit characters of s. It never splits a rune.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	count := 0
	for index := range s {
		if count == limit {
			return s[:index]
		}

		count++
	}

	return s
}
