package stride

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
)

// Locator strategy kinds, fixed at construction by the By* functions.
const (
	kindCSS   = "css"
	kindXPath = "xpath"
	kindJS    = "js"
)

// Locator describes a strategy for finding one or more elements in the
// current page. Locators are built with the By* constructors and are safe to
// reuse across pages; every Find resolves fresh nodes.
type Locator struct {
	desc string
	kind string
	sel  string
	by   chromedp.QueryOption
	js   string
}

// String returns the locator description, eg. `ByLinkText("Sign in")`.
func (l *Locator) String() string { return l.desc }

// Find returns a handle to the first element matched by the locator. It
// blocks until at least one element is present or ctx is done. A context
// that expires before a match returns an error wrapping ErrNoElement.
func (l *Locator) Find(ctx context.Context) (*ElementHandle, error) {
	nodes, err := l.resolve(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l, timeoutAsNoElement(err))
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%s: %w", l, ErrNoElement)
	}
	return newElementHandle(nodes[0], l.desc), nil
}

// FindAll returns handles to all elements matched by the locator. A locator
// matching nothing returns an empty slice, not an error.
func (l *Locator) FindAll(ctx context.Context) ([]*ElementHandle, error) {
	nodes, err := l.resolve(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l, decorateError(err))
	}
	handles := make([]*ElementHandle, len(nodes))
	for i, n := range nodes {
		handles[i] = newElementHandle(n, fmt.Sprintf("%s[%d]", l.desc, i))
	}
	return handles, nil
}

// Wait blocks until the locator matches a visible element, then returns a
// handle to it.
func (l *Locator) Wait(ctx context.Context) (*ElementHandle, error) {
	if err := chromedp.Run(ctx, UntilElementVisible(l)); err != nil {
		return nil, fmt.Errorf("%s: %w", l, decorateError(err))
	}
	return l.Find(ctx)
}

// resolve runs the locator strategy and returns the matched nodes. When all
// is false, resolution blocks until at least one node matches; otherwise it
// returns whatever currently matches, which may be nothing.
func (l *Locator) resolve(ctx context.Context, all bool, extra ...chromedp.QueryOption) ([]*cdp.Node, error) {
	if l.kind == kindJS {
		return l.resolveJS(ctx, all)
	}

	opts := append([]chromedp.QueryOption{l.by}, extra...)
	if all {
		opts = append(opts, chromedp.AtLeast(0))
	}

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(l.sel, &nodes, opts...)); err != nil {
		return nil, err
	}
	return nodes, nil
}

// resolveJS evaluates the locator's Javascript expression, tags the returned
// elements with a one-shot marker attribute, queries them back as DOM nodes
// and removes the marker again. The protocol offers no direct path from a
// script result to the node tree chromedp maintains, hence the round trip.
func (l *Locator) resolveJS(ctx context.Context, all bool) ([]*cdp.Node, error) {
	token := uuid.NewString()

	var nodes []*cdp.Node
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var count int
		mark := fmt.Sprintf(markMatchesJS, l.js, token)
		if err := chromedp.Evaluate(mark, &count).Do(ctx); err != nil {
			return err
		}
		if count == 0 {
			if all {
				return nil
			}
			return ErrNoElement
		}

		sel := fmt.Sprintf(`[%s=%q]`, markAttr, token)
		if err := chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll).Do(ctx); err != nil {
			return err
		}

		for _, n := range nodes {
			if err := dom.RemoveAttribute(n.NodeID, markAttr).Do(ctx); err != nil {
				return err
			}
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// pollArgs returns the strategy kind and the in-page expression for poll
// functions that resolve the locator inside the page.
func (l *Locator) pollArgs() (kind, expr string) {
	if l.kind == kindJS {
		return kindJS, l.js
	}
	return l.kind, l.sel
}

// markAttr is the attribute used to carry element matches of a Javascript
// locator back through a CSS query.
const markAttr = "data-stride-match"

const markMatchesJS = `(function(res, token) {
	if (res === null || res === undefined) {
		return 0;
	}
	var list;
	if (typeof res.length === 'number' && typeof res !== 'string') {
		list = Array.prototype.slice.call(res);
	} else {
		list = [res];
	}
	var n = 0;
	for (var i = 0; i < list.length; i++) {
		if (list[i] && list[i].nodeType === 1) {
			list[i].setAttribute('` + markAttr + `', token);
			n++;
		}
	}
	return n;
})((%s), %q)`
