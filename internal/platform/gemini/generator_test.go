package gemini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON untouched",
			input:    `{"body": "text"}`,
			expected: `{"body": "text"}`,
		},
		{
			name:     "json fence removed",
			input:    "```json\n{\"body\": \"text\"}\n```",
			expected: `{"body": "text"}`,
		},
		{
			name:     "bare fence removed",
			input:    "```\n{\"body\": \"text\"}\n```",
			expected: `{"body": "text"}`,
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  \n```json\n{}\n```\n  ",
			expected: "{}",
		},
		{
			name:     "unterminated fence keeps content",
			input:    "```json\n{\"body\": \"text\"}",
			expected: `{"body": "text"}`,
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, stripCodeFences(tc.input))
		})
	}
}

func TestTruncateSummary(t *testing.T) {
	t.Parallel()

	t.Run("short summary unchanged", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "short", truncateSummary("  short  "))
	})

	t.Run("long summary truncated to limit", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("a", maxSummaryLength+50)
		got := truncateSummary(long)
		assert.Len(t, got, maxSummaryLength)
	})

	t.Run("multibyte runes are not split", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("日", maxSummaryLength+10)
		got := truncateSummary(long)
		runes := []rune(got)
		assert.Len(t, runes, maxSummaryLength)
		for _, r := range runes {
			assert.Equal(t, '日', r)
		}
	})
}

func TestStageDescription(t *testing.T) {
	t.Parallel()

	const maxStage = 7

	testCases := []struct {
		stage    int
		expected string
	}{
		{0, "yesterday"},
		{1, "a few days ago"},
		{2, "a few days ago"},
		{3, "several weeks ago"},
		{6, "several weeks ago"},
		{7, "a long time ago and has graduated from regular review"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, stageDescription(tc.stage, maxStage), "stage %d", tc.stage)
	}
}
