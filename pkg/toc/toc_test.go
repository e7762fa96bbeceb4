package toc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]Entry
	}{
		{
			name:    "link with description, heading and bad link skipped",
			content: "[Auth](/llms.txt/docs/auth.md): Authentication guide\n### Category\n[Bad link](nope)",
			want: map[string]Entry{
				"/llms.txt/docs/auth.md": {Title: "Auth", Description: "Authentication guide"},
			},
		},
		{
			name:    "description is optional",
			content: "[Basic Usage](/llms.txt/docs/basic-usage.md)",
			want: map[string]Entry{
				"/llms.txt/docs/basic-usage.md": {Title: "Basic Usage"},
			},
		},
		{
			name:    "duplicate routes keep the last entry",
			content: "[Old](/llms.txt/docs/a.md): first\n[New](/llms.txt/docs/a.md): second",
			want: map[string]Entry{
				"/llms.txt/docs/a.md": {Title: "New", Description: "second"},
			},
		},
		{
			name:    "blank lines and prose ignored",
			content: "\nSome intro text.\n\n[Page](/llms.txt/docs/p.md): desc\n",
			want: map[string]Entry{
				"/llms.txt/docs/p.md": {Title: "Page", Description: "desc"},
			},
		},
		{
			name:    "route outside the llms.txt prefix rejected",
			content: "[External](/docs/other.md): not ours",
			want:    map[string]Entry{},
		},
		{
			name:    "empty input",
			content: "",
			want:    map[string]Entry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.content))
		})
	}
}

func TestParseCountsWellFormedLinesOnly(t *testing.T) {
	content := "# Better Auth\n" +
		"### Getting Started\n" +
		"[Intro](/llms.txt/docs/intro.md): Introduction\n" +
		"[Install](/llms.txt/docs/install.md): Installation\n" +
		"not a link line\n" +
		"[Broken](missing-prefix.md): dropped\n" +
		"[Plugins](/llms.txt/docs/plugins.md)\n"

	got := Parse(content)
	assert.Len(t, got, 3)
	assert.Contains(t, got, "/llms.txt/docs/intro.md")
	assert.Contains(t, got, "/llms.txt/docs/install.md")
	assert.Contains(t, got, "/llms.txt/docs/plugins.md")
}
