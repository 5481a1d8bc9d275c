package stride

import (
	"fmt"
	"strconv"

	"github.com/chromedp/chromedp"
)

// Condition is a wait condition that blocks until the page reaches the
// described state. Conditions are ordinary chromedp actions and can be mixed
// freely with them in a chromedp.Run call.
type Condition = chromedp.Action

// UntilURLIs waits until the page URL is exactly url.
func UntilURLIs(url string) Condition {
	return chromedp.Poll(fmt.Sprintf(`window.location.href === %s`, strconv.Quote(url)), nil)
}

// UntilURLContains waits until the page URL contains fragment.
func UntilURLContains(fragment string) Condition {
	return chromedp.Poll(fmt.Sprintf(`window.location.href.includes(%s)`, strconv.Quote(fragment)), nil)
}

// UntilTitleIs waits until the document title is exactly title.
func UntilTitleIs(title string) Condition {
	return chromedp.Poll(fmt.Sprintf(`document.title === %s`, strconv.Quote(title)), nil)
}

// UntilTitleContains waits until the document title contains fragment.
func UntilTitleContains(fragment string) Condition {
	return chromedp.Poll(fmt.Sprintf(`document.title.includes(%s)`, strconv.Quote(fragment)), nil)
}

// UntilElementLocated waits until the locator matches at least one element.
func UntilElementLocated(l *Locator) Condition {
	if l.kind == kindJS {
		return chromedp.PollFunction(locatedByJSFn, nil, chromedp.WithPollingArgs(l.js))
	}
	return chromedp.WaitReady(l.sel, l.by)
}

// UntilElementsLocated waits until the locator matches at least n elements.
func UntilElementsLocated(l *Locator, n int) Condition {
	if l.kind == kindJS {
		return chromedp.PollFunction(countByJSFn, nil, chromedp.WithPollingArgs(l.js, n))
	}
	return chromedp.WaitReady(l.sel, l.by, chromedp.AtLeast(n))
}

// UntilElementVisible waits until the locator matches a visible element.
func UntilElementVisible(l *Locator) Condition {
	if l.kind == kindJS {
		return chromedp.PollFunction(visibleByJSFn, nil, chromedp.WithPollingArgs(l.js))
	}
	return chromedp.WaitVisible(l.sel, l.by)
}

// UntilElementNotVisible waits until the locator matches no visible element.
func UntilElementNotVisible(l *Locator) Condition {
	if l.kind == kindJS {
		return chromedp.PollFunction(notVisibleByJSFn, nil, chromedp.WithPollingArgs(l.js))
	}
	return chromedp.WaitNotVisible(l.sel, l.by)
}

// UntilElementTextIs waits until the first element matched by the locator
// has rendered text exactly equal to text after trimming whitespace.
func UntilElementTextIs(l *Locator, text string) Condition {
	return pollOnLocator(l, textIsFn, text)
}

// UntilElementTextContains waits until the first element matched by the
// locator has rendered text containing fragment.
func UntilElementTextContains(l *Locator, fragment string) Condition {
	return pollOnLocator(l, textContainsFn, fragment)
}

// pollOnLocator builds a poll that resolves the locator inside the page and
// applies fn to the first match. The strategy kind is threaded through so
// the page function can dispatch between querySelector, XPath evaluation and
// expression evaluation.
func pollOnLocator(l *Locator, fn string, args ...interface{}) Condition {
	kind, expr := l.pollArgs()
	all := append([]interface{}{kind, expr}, args...)
	return chromedp.PollFunction(fn, nil, chromedp.WithPollingArgs(all...))
}

const (
	// locateFirstJS resolves a (kind, expr) locator pair to the first
	// matching element inside the page.
	locateFirstJS = `function(kind, expr) {
		if (kind === 'css') {
			return document.querySelector(expr);
		}
		if (kind === 'js') {
			var res = eval(expr);
			if (res && typeof res.length === 'number') {
				return res.length > 0 ? res[0] : null;
			}
			return res || null;
		}
		var r = document.evaluate(expr, document, null,
			XPathResult.FIRST_ORDERED_NODE_TYPE, null);
		return r.singleNodeValue;
	}`

	textIsFn = `(kind, expr, want) => {
		var locate = ` + locateFirstJS + `;
		var el = locate(kind, expr);
		return !!el && el.innerText.trim() === want;
	}`

	textContainsFn = `(kind, expr, fragment) => {
		var locate = ` + locateFirstJS + `;
		var el = locate(kind, expr);
		return !!el && el.innerText.includes(fragment);
	}`

	locatedByJSFn = `(expr) => {
		var res = eval(expr);
		if (res && typeof res.length === 'number') {
			return res.length > 0;
		}
		return !!res;
	}`

	countByJSFn = `(expr, n) => {
		var res = eval(expr);
		if (res === null || res === undefined) {
			return false;
		}
		if (typeof res.length === 'number') {
			return res.length >= n;
		}
		return n <= 1;
	}`

	visibleByJSFn = `(expr) => {
		var res = eval(expr);
		var el = (res && typeof res.length === 'number') ? res[0] : res;
		return !!el && el.offsetParent !== null;
	}`

	notVisibleByJSFn = `(expr) => {
		var res = eval(expr);
		var el = (res && typeof res.length === 'number') ? res[0] : res;
		return !el || el.offsetParent === null;
	}`
)
