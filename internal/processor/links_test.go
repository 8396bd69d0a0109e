package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHyperlinks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "no links",
			text: "plain text with no URLs at all",
			want: []string{},
		},
		{
			name: "single link",
			text: "see https://example.com/page for details",
			want: []string{"https://example.com/page"},
		},
		{
			name: "http and https",
			text: "http://a.example and https://b.example",
			want: []string{"http://a.example", "https://b.example"},
		},
		{
			name: "duplicates keep first occurrence order",
			text: "https://b.example then https://a.example then https://b.example again",
			want: []string{"https://b.example", "https://a.example"},
		},
		{
			name: "markdown link closes at paren",
			text: "sources: [report](https://example.com/report.pdf) and more",
			want: []string{"https://example.com/report.pdf"},
		},
		{
			name: "link at end of text",
			text: "read https://example.com/a",
			want: []string{"https://example.com/a"},
		},
		{
			name: "query strings survive",
			text: "https://example.com/s?q=go&page=2 is the search",
			want: []string{"https://example.com/s?q=go&page=2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHyperlinks(tt.text))
		})
	}
}
