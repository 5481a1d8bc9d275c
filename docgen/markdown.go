package docgen

import (
	"fmt"
	"strings"
)

// Markdown renders a page to a markdown document.
func (pg *Page) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "---\ntitle: %s\nkind: %s\n---\n\n", pg.Title, strings.ToLower(pg.Kind))
	for _, sec := range pg.Sections {
		writeSection(&b, sec)
	}
	return b.String()
}

func writeSection(b *strings.Builder, sec Section) {
	b.WriteString(strings.Repeat("#", sec.Level))
	b.WriteByte(' ')
	b.WriteString(sec.Heading)
	b.WriteString("\n\n")

	if sec.Deprecate != "" {
		fmt.Fprintf(b, "> **%s**\n\n", sec.Deprecate)
	}
	if sec.Code != "" {
		fmt.Fprintf(b, "```ts\n%s\n```\n\n", sec.Code)
	}
	if sec.Body != "" {
		b.WriteString(sec.Body)
		b.WriteString("\n\n")
	}
	if len(sec.Params) > 0 {
		writeParams(b, sec.Params)
	}
	if sec.Returns != "" {
		fmt.Fprintf(b, "**Returns:** %s\n\n", strings.TrimSpace(sec.Returns))
	}
}

func writeParams(b *strings.Builder, params []*Node) {
	b.WriteString("| Parameter | Type | Description |\n")
	b.WriteString("|-----------|------|-------------|\n")
	for _, p := range params {
		name := p.Name
		if p.Flags.IsOptional {
			name += " (optional)"
		}
		desc := strings.ReplaceAll(p.Comment.Body(), "\n", " ")
		// pipes inside cells would split the table
		typ := strings.ReplaceAll(p.Type.Format(), "|", `\|`)
		desc = strings.ReplaceAll(desc, "|", `\|`)
		fmt.Fprintf(b, "| %s | `%s` | %s |\n", name, typ, desc)
	}
	b.WriteString("\n")
}

// Index renders a table-of-contents page linking every page in the
// document.
func (d *Document) Index() string {
	var b strings.Builder
	b.WriteString("# API Reference\n\n")
	for _, pg := range d.Pages {
		fmt.Fprintf(&b, "- [%s](%s.md): %s\n", pg.Title, FileName(pg.Title), strings.ToLower(pg.Kind))
	}
	b.WriteString("\n")
	return b.String()
}

// FileName maps a page title to a markdown file name, lowercased with
// non-alphanumerics collapsed to dashes.
func FileName(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
