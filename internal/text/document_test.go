package text_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/book-expert/ai-router/internal/core"
	"github.com/book-expert/ai-router/internal/text"
	"github.com/stretchr/testify/assert"
)

func TestJoinLines(t *testing.T) {
	t.Parallel()

	blocks := []core.TextBlock{
		{Type: "PAGE", Text: ""},
		{Type: core.BlockTypeLine, Text: "Dear support,"},
		{Type: "WORD", Text: "Dear"},
		{Type: core.BlockTypeLine, Text: "the product broke."},
	}

	assert.Equal(t, "Dear support, the product broke.", text.JoinLines(blocks))
}

func TestJoinLines_NoLines(t *testing.T) {
	t.Parallel()

	joined := text.JoinLines([]core.TextBlock{{Type: "PAGE"}, {Type: "WORD", Text: "x"}})
	assert.Empty(t, joined)
	assert.True(t, text.IsBlank(joined))
}

func TestIsBlank(t *testing.T) {
	t.Parallel()

	assert.True(t, text.IsBlank(""))
	assert.True(t, text.IsBlank("   \t\n"))
	assert.False(t, text.IsBlank(" a "))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"shorter than limit", "abc", 5, "abc"},
		{"exact limit", "abcde", 5, "abcde"},
		{"longer than limit", "abcdef", 5, "abcde"},
		{"multibyte runes", "ação útil", 4, "ação"},
		{"zero limit", "abc", 0, ""},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, text.Truncate(testCase.input, testCase.limit))
		})
	}
}

func TestTruncate_AnalysisLimit(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", text.MaxAnalysisChars+10)
	truncated := text.Truncate(long, text.MaxAnalysisChars)

	assert.Equal(t, text.MaxAnalysisChars, utf8.RuneCountInString(truncated))
	assert.True(t, utf8.ValidString(truncated))
}
