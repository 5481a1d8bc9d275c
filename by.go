package stride

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chromedp/chromedp"
)

// ByCSS returns a locator that matches elements by a CSS selector.
func ByCSS(sel string) *Locator {
	return &Locator{
		desc: fmt.Sprintf("ByCSS(%q)", sel),
		kind: kindCSS,
		sel:  sel,
		by:   chromedp.ByQueryAll,
	}
}

// ByID returns a locator that matches the element with the given id
// attribute. The leading '#' is optional.
func ByID(id string) *Locator {
	id = strings.TrimPrefix(id, "#")
	return &Locator{
		desc: fmt.Sprintf("ByID(%q)", id),
		kind: kindCSS,
		sel:  "#" + id,
		by:   chromedp.ByQueryAll,
	}
}

// ByTagName returns a locator that matches elements by tag name.
func ByTagName(tag string) *Locator {
	return &Locator{
		desc: fmt.Sprintf("ByTagName(%q)", tag),
		kind: kindCSS,
		sel:  tag,
		by:   chromedp.ByQueryAll,
	}
}

// ByNameAttr returns a locator that matches elements whose name attribute is
// exactly name.
func ByNameAttr(name string) *Locator {
	return &Locator{
		desc: fmt.Sprintf("ByNameAttr(%q)", name),
		kind: kindCSS,
		sel:  fmt.Sprintf(`[name=%q]`, name),
		by:   chromedp.ByQueryAll,
	}
}

// ByAttr returns a locator that matches tag elements carrying all the given
// attribute values. Attributes are emitted in a stable order so the locator
// description is deterministic.
func ByAttr(tag string, attrs map[string]string) *Locator {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(tag)
	for _, name := range names {
		fmt.Fprintf(&b, `[%s=%q]`, name, attrs[name])
	}
	sel := b.String()
	return &Locator{
		desc: fmt.Sprintf("ByAttr(%q)", sel),
		kind: kindCSS,
		sel:  sel,
		by:   chromedp.ByQueryAll,
	}
}

// ByXPath returns a locator that matches elements by an XPath expression.
func ByXPath(path string) *Locator {
	return &Locator{
		desc: fmt.Sprintf("ByXPath(%q)", path),
		kind: kindXPath,
		sel:  path,
		by:   chromedp.BySearch,
	}
}

// ByLinkText returns a locator that matches anchor elements whose rendered
// text is exactly text.
func ByLinkText(text string) *Locator {
	return &Locator{
		desc: fmt.Sprintf("ByLinkText(%q)", text),
		kind: kindXPath,
		sel:  fmt.Sprintf(`//a[normalize-space(.)=%s]`, xpathString(text)),
		by:   chromedp.BySearch,
	}
}

// ByPartialLinkText returns a locator that matches anchor elements whose
// rendered text contains text.
func ByPartialLinkText(text string) *Locator {
	return &Locator{
		desc: fmt.Sprintf("ByPartialLinkText(%q)", text),
		kind: kindXPath,
		sel:  fmt.Sprintf(`//a[contains(normalize-space(.), %s)]`, xpathString(text)),
		by:   chromedp.BySearch,
	}
}

// ByVisibleText returns a locator that matches any element whose own text
// content contains text.
func ByVisibleText(text string) *Locator {
	return &Locator{
		desc: fmt.Sprintf("ByVisibleText(%q)", text),
		kind: kindXPath,
		sel:  fmt.Sprintf(`//*[contains(normalize-space(text()), %s)]`, xpathString(text)),
		by:   chromedp.BySearch,
	}
}

// ByJS returns a locator whose elements are the result of evaluating the
// Javascript expression in the page. The expression may return an Element,
// a NodeList, or an array of Elements.
func ByJS(expression string) *Locator {
	return &Locator{
		desc: fmt.Sprintf("ByJS(%q)", expression),
		kind: kindJS,
		js:   expression,
	}
}

// xpathString renders s as an XPath string literal. XPath 1.0 has no escape
// sequences, so strings containing both quote characters must be built with
// concat().
func xpathString(s string) string {
	if !strings.Contains(s, `'`) {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, `'`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
