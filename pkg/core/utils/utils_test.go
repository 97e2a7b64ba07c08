package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assumptionDoc struct {
	EstimatedNOI  float64 `json:"estimatedNOI"`
	MarketCapRate float64 `json:"marketCapRate"`
}

func TestSmartParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain", `{"estimatedNOI": 500000, "marketCapRate": 5.5}`},
		{"fenced", "```json\n{\"estimatedNOI\": 500000, \"marketCapRate\": 5.5}\n```"},
		{"prose around", "Here you go:\n{\"estimatedNOI\": 500000, \"marketCapRate\": 5.5}\nThanks!"},
		{"trailing comma", `{"estimatedNOI": 500000, "marketCapRate": 5.5,}`},
		{"single quotes", `{'estimatedNOI': 500000, 'marketCapRate': 5.5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc assumptionDoc
			_, err := SmartParse(tt.input, &doc)
			require.NoError(t, err)
			assert.Equal(t, 500000.0, doc.EstimatedNOI)
			assert.Equal(t, 5.5, doc.MarketCapRate)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ExtractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[1,2]`, ExtractJSON("result: [1,2] done"))
	assert.Equal(t, "no json", ExtractJSON("no json"))
}

func TestCleanMarkdown(t *testing.T) {
	assert.Equal(t, "# Title", CleanMarkdown("```markdown\n# Title\n```"))
	assert.Equal(t, "plain", CleanMarkdown("  plain \n"))
}

func TestMarkdownToPlainText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"**Strong** yield asset", "Strong yield asset"},
		{"## Prime _location_", "Prime location"},
		{"See [the memo](https://example.com) for details.", "See the memo for details."},
		{"- Stable income\n- Low vacancy", "Stable income Low vacancy"},
		{"First line\nsecond line", "First line second line"},
		{"Plain text stays.", "Plain text stays."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MarkdownToPlainText(tt.in), tt.in)
	}
}
