package docgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageMarkdown(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleDump))
	require.NoError(t, err)

	md := doc.Pages[0].Markdown()

	assert.Contains(t, md, "---\ntitle: ElementHandle\nkind: class\n---")
	assert.Contains(t, md, "# Class ElementHandle")
	assert.Contains(t, md, "## `click()`")
	assert.Contains(t, md, "```ts\nclick(button?: 'left' | 'right'): Promise<void>\n```")
	assert.Contains(t, md, "| Parameter | Type | Description |")
	assert.Contains(t, md, `| button (optional) | `+"`'left' \\| 'right'`"+` | mouse button to use |`)
	assert.Contains(t, md, "**Returns:** a promise resolving once the click is dispatched")
}

func TestPageMarkdownDeprecation(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleDump))
	require.NoError(t, err)

	md := doc.Pages[1].Markdown()
	assert.Contains(t, md, "> **Deprecated: use ElementHandle instead**")
}

func TestDocumentIndex(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleDump))
	require.NoError(t, err)

	idx := doc.Index()
	assert.Contains(t, idx, "# API Reference")
	assert.Contains(t, idx, "- [ElementHandle](elementhandle.md): class")
	assert.Contains(t, idx, "- [oldHelper](oldhelper.md): function")
}

func TestFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"ElementHandle", "elementhandle"},
		{"Test Settings", "test-settings"},
		{`"page/element"`, "page-element"},
		{"By.partialVisibleText", "by-partialvisibletext"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(tt.in), "input %q", tt.in)
	}
}
