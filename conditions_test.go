package stride

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPollArgsDispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		loc  *Locator
		kind string
		expr string
	}{
		{ByCSS("div.item"), "css", "div.item"},
		{ByXPath("//a[text()='x']"), "xpath", "//a[text()='x']"},
		{ByXPath("(//div)[1]"), "xpath", "(//div)[1]"},
		// xpath expressions need not start with a slash or a paren
		{ByXPath("id('main')"), "xpath", "id('main')"},
		{ByXPath(".//div"), "xpath", ".//div"},
		{ByLinkText("Next"), "xpath", `//a[normalize-space(.)='Next']`},
		{ByJS("document.body"), "js", "document.body"},
	}
	for _, tt := range tests {
		kind, expr := tt.loc.pollArgs()
		assert.Equal(t, tt.kind, kind, "%s", tt.loc)
		assert.Equal(t, tt.expr, expr, "%s", tt.loc)
	}
}

func TestConditionConstructors(t *testing.T) {
	t.Parallel()

	// conditions must be buildable for every locator strategy without
	// touching a browser
	locators := []*Locator{
		ByCSS("div"),
		ByXPath("//div"),
		ByLinkText("Next"),
		ByJS("document.body"),
	}
	for _, l := range locators {
		assert.NotNil(t, UntilElementLocated(l), "%s", l)
		assert.NotNil(t, UntilElementsLocated(l, 2), "%s", l)
		assert.NotNil(t, UntilElementVisible(l), "%s", l)
		assert.NotNil(t, UntilElementNotVisible(l), "%s", l)
		assert.NotNil(t, UntilElementTextIs(l, "done"), "%s", l)
		assert.NotNil(t, UntilElementTextContains(l, "done"), "%s", l)
	}

	assert.NotNil(t, UntilURLIs("https://example.com/"))
	assert.NotNil(t, UntilURLContains("/cart"))
	assert.NotNil(t, UntilTitleIs("Checkout"))
	assert.NotNil(t, UntilTitleContains("Check"))
}
