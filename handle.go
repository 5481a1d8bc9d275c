package stride

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
)

// ElementHandle is a typed reference to a DOM node. All operations forward
// to the underlying automation library and decorate failures with the
// element description, so a stale or hidden node produces an error a test
// author can act on rather than a raw protocol message.
//
// A handle is bound to the node it was resolved from. If the page navigates
// or the node is removed, operations return errors wrapping
// ErrElementDetached; locate the element again in that case.
type ElementHandle struct {
	node *cdp.Node
	desc string
}

func newElementHandle(node *cdp.Node, desc string) *ElementHandle {
	return &ElementHandle{node: node, desc: desc}
}

// String returns the description of the locator that produced the handle.
func (h *ElementHandle) String() string { return h.desc }

// Node returns the underlying DOM node. It is exposed for interoperating
// with chromedp actions directly.
func (h *ElementHandle) Node() *cdp.Node { return h.node }

// wrap decorates err with the operation name and element description.
func (h *ElementHandle) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s %s: %w", op, h.desc, decorateError(err))
}

// Click scrolls the element into view and sends a left mouse click to its
// center.
func (h *ElementHandle) Click(ctx context.Context) error {
	return h.wrap("click", chromedp.Run(ctx,
		chromedp.MouseClickNode(h.node),
	))
}

// DoubleClick sends a double left click to the element's center.
func (h *ElementHandle) DoubleClick(ctx context.Context) error {
	return h.wrap("double click", chromedp.Run(ctx,
		chromedp.MouseClickNode(h.node, chromedp.ClickCount(2)),
	))
}

// Hover moves the mouse over the element's center without pressing a
// button.
func (h *ElementHandle) Hover(ctx context.Context) error {
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.ScrollIntoViewIfNeeded().WithNodeID(h.node.NodeID).Do(ctx); err != nil {
			return err
		}
		x, y, err := nodeCenter(ctx, h.node)
		if err != nil {
			return err
		}
		return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
	}))
	return h.wrap("hover", err)
}

// Focus gives the element keyboard focus.
func (h *ElementHandle) Focus(ctx context.Context) error {
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return dom.Focus().WithNodeID(h.node.NodeID).Do(ctx)
	}))
	return h.wrap("focus", err)
}

// Blur removes keyboard focus from the element.
func (h *ElementHandle) Blur(ctx context.Context) error {
	return h.wrap("blur", chromedp.Run(ctx,
		evalOnNode(h.node, blurJS, nil),
	))
}

// Type clears the element and then types text into it, sending individual
// key events as a user would.
func (h *ElementHandle) Type(ctx context.Context, text string) error {
	return h.wrap("type into", chromedp.Run(ctx,
		evalOnNode(h.node, clearJS, nil),
		chromedp.KeyEventNode(h.node, text),
	))
}

// SendKeys sends key events to the element without clearing it first. The
// text may contain control characters (see the chromedp kb package).
func (h *ElementHandle) SendKeys(ctx context.Context, text string) error {
	return h.wrap("send keys to", chromedp.Run(ctx,
		chromedp.KeyEventNode(h.node, text),
	))
}

// Clear empties input, textarea and contenteditable elements and fires the
// input and change events the page would see after user edits.
func (h *ElementHandle) Clear(ctx context.Context) error {
	return h.wrap("clear", chromedp.Run(ctx,
		evalOnNode(h.node, clearJS, nil),
	))
}

// GetAttribute returns the value of the named attribute. The second return
// value reports whether the attribute is present.
func (h *ElementHandle) GetAttribute(ctx context.Context, name string) (string, bool, error) {
	var attrs []string
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		attrs, err = dom.GetAttributes(h.node.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", false, h.wrap("get attribute of", err)
	}
	for i := 0; i < len(attrs)-1; i += 2 {
		if attrs[i] == name {
			return attrs[i+1], true, nil
		}
	}
	return "", false, nil
}

// Attributes returns all attributes of the element.
func (h *ElementHandle) Attributes(ctx context.Context) (map[string]string, error) {
	var attrs []string
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		attrs, err = dom.GetAttributes(h.node.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, h.wrap("get attributes of", err)
	}
	m := make(map[string]string, len(attrs)/2)
	for i := 0; i < len(attrs)-1; i += 2 {
		m[attrs[i]] = attrs[i+1]
	}
	return m, nil
}

// GetID returns the element's id attribute as known at resolution time.
func (h *ElementHandle) GetID() string {
	return h.node.AttributeValue("id")
}

// TagName returns the element's tag name, lowercased.
func (h *ElementHandle) TagName() string {
	return strings.ToLower(h.node.NodeName)
}

// Text returns the rendered text of the element.
func (h *ElementHandle) Text(ctx context.Context) (string, error) {
	var text string
	if err := chromedp.Run(ctx, evalOnNode(h.node, textJS, &text)); err != nil {
		return "", h.wrap("get text of", err)
	}
	return text, nil
}

// TextWithTrim returns the rendered text of the element with surrounding
// whitespace removed.
func (h *ElementHandle) TextWithTrim(ctx context.Context) (string, error) {
	text, err := h.Text(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GetProperty returns the named Javascript property of the element,
// unmarshaled into res.
func (h *ElementHandle) GetProperty(ctx context.Context, name string, res interface{}) error {
	return h.wrap("get property of", chromedp.Run(ctx,
		evalOnNode(h.node, propertyJS, res, name),
	))
}

// Evaluate invokes the Javascript function declaration with the element
// bound as the receiver, unmarshaling the result into res. Extra args are
// passed to the function by value.
func (h *ElementHandle) Evaluate(ctx context.Context, function string, res interface{}, args ...interface{}) error {
	return h.wrap("evaluate on", chromedp.Run(ctx,
		evalOnNode(h.node, function, res, args...),
	))
}

// IsDisplayed reports whether the element takes part in layout and is
// visible.
func (h *ElementHandle) IsDisplayed(ctx context.Context) (bool, error) {
	var visible bool
	if err := chromedp.Run(ctx, evalOnNode(h.node, visibleJS, &visible)); err != nil {
		return false, h.wrap("check visibility of", err)
	}
	return visible, nil
}

// IsEnabled reports whether the element does not carry the disabled
// attribute.
func (h *ElementHandle) IsEnabled(ctx context.Context) (bool, error) {
	_, disabled, err := h.GetAttribute(ctx, "disabled")
	if err != nil {
		return false, err
	}
	return !disabled, nil
}

// IsSelected reports whether a checkbox or radio input is checked, or an
// option element is selected.
func (h *ElementHandle) IsSelected(ctx context.Context) (bool, error) {
	var selected bool
	if err := chromedp.Run(ctx, evalOnNode(h.node, selectedJS, &selected)); err != nil {
		return false, h.wrap("check selection of", err)
	}
	return selected, nil
}

// IsSelectable reports whether the element is one that can hold a selected
// state.
func (h *ElementHandle) IsSelectable(ctx context.Context) (bool, error) {
	switch h.TagName() {
	case "option":
		return true, nil
	case "input":
		typ, _, err := h.GetAttribute(ctx, "type")
		if err != nil {
			return false, err
		}
		typ = strings.ToLower(typ)
		return typ == "checkbox" || typ == "radio", nil
	}
	return false, nil
}

// Rect describes an element's position and dimensions in page coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BoundingBox returns the element's border box in page coordinates.
func (h *ElementHandle) BoundingBox(ctx context.Context) (*Rect, error) {
	var box *dom.BoxModel
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		box, err = dom.GetBoxModel().WithNodeID(h.node.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, h.wrap("get bounding box of", err)
	}
	r, err := rectFromQuad(box.Border)
	if err != nil {
		return nil, h.wrap("get bounding box of", err)
	}
	return r, nil
}

// Location returns the top-left corner of the element's border box.
func (h *ElementHandle) Location(ctx context.Context) (x, y float64, err error) {
	r, err := h.BoundingBox(ctx)
	if err != nil {
		return 0, 0, err
	}
	return r.X, r.Y, nil
}

// Size returns the dimensions of the element's border box.
func (h *ElementHandle) Size(ctx context.Context) (width, height float64, err error) {
	r, err := h.BoundingBox(ctx)
	if err != nil {
		return 0, 0, err
	}
	return r.Width, r.Height, nil
}

// ScrollIntoView scrolls the element into the viewport if it is not already
// there.
func (h *ElementHandle) ScrollIntoView(ctx context.Context) error {
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return dom.ScrollIntoViewIfNeeded().WithNodeID(h.node.NodeID).Do(ctx)
	}))
	return h.wrap("scroll to", err)
}

// Highlight draws a red outline around the element. Useful when debugging
// scripts against a headful browser.
func (h *ElementHandle) Highlight(ctx context.Context) error {
	return h.wrap("highlight", chromedp.Run(ctx,
		evalOnNode(h.node, highlightJS, nil),
	))
}

// FindElement finds the first element matching the locator within the
// subtree rooted at this element.
func (h *ElementHandle) FindElement(ctx context.Context, l *Locator) (*ElementHandle, error) {
	if l.kind == kindJS {
		return nil, fmt.Errorf("find in %s: Javascript locators cannot be scoped to an element", h.desc)
	}
	nodes, err := l.resolve(ctx, false, chromedp.FromNode(h.node))
	if err != nil {
		return nil, fmt.Errorf("find %s in %s: %w", l, h.desc, timeoutAsNoElement(err))
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("find %s in %s: %w", l, h.desc, ErrNoElement)
	}
	return newElementHandle(nodes[0], fmt.Sprintf("%s in %s", l, h.desc)), nil
}

// FindElements finds all elements matching the locator within the subtree
// rooted at this element.
func (h *ElementHandle) FindElements(ctx context.Context, l *Locator) ([]*ElementHandle, error) {
	if l.kind == kindJS {
		return nil, fmt.Errorf("find in %s: Javascript locators cannot be scoped to an element", h.desc)
	}
	nodes, err := l.resolve(ctx, true, chromedp.FromNode(h.node))
	if err != nil {
		return nil, fmt.Errorf("find %s in %s: %w", l, h.desc, decorateError(err))
	}
	handles := make([]*ElementHandle, len(nodes))
	for i, n := range nodes {
		handles[i] = newElementHandle(n, fmt.Sprintf("%s[%d] in %s", l, i, h.desc))
	}
	return handles, nil
}

// rectFromQuad converts a box model quad to a Rect.
func rectFromQuad(quad dom.Quad) (*Rect, error) {
	if len(quad) != 8 {
		return nil, ErrInvalidBoxModel
	}
	x1, y1 := quad[0], quad[1]
	x2, y2 := quad[0], quad[1]
	for i := 2; i < 8; i += 2 {
		if quad[i] < x1 {
			x1 = quad[i]
		}
		if quad[i] > x2 {
			x2 = quad[i]
		}
		if quad[i+1] < y1 {
			y1 = quad[i+1]
		}
		if quad[i+1] > y2 {
			y2 = quad[i+1]
		}
	}
	return &Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, nil
}

// nodeCenter returns the center of the node's content box.
func nodeCenter(ctx context.Context, n *cdp.Node) (x, y float64, err error) {
	box, err := dom.GetBoxModel().WithNodeID(n.NodeID).Do(ctx)
	if err != nil {
		return 0, 0, err
	}
	c := len(box.Content)
	if c == 0 || c%2 != 0 {
		return 0, 0, ErrInvalidBoxModel
	}
	for i := 0; i < c; i += 2 {
		x += box.Content[i]
		y += box.Content[i+1]
	}
	return x / float64(c/2), y / float64(c/2), nil
}

const (
	blurJS = `function() { this.blur(); }`

	clearJS = `function() {
		if (this.isContentEditable) {
			this.innerHTML = '';
		} else {
			this.value = '';
		}
		this.dispatchEvent(new Event('input', {bubbles: true}));
		this.dispatchEvent(new Event('change', {bubbles: true}));
	}`

	textJS = `function() { return this.innerText; }`

	propertyJS = `function(name) { return this[name]; }`

	// visibleJS mirrors the offsetParent check devtools uses: an element
	// detached from layout has a null offsetParent, except for body and
	// fixed-position elements which need the style fallback.
	visibleJS = `function() {
		if (this.nodeName === 'BODY') {
			return true;
		}
		if (this.offsetParent !== null) {
			return true;
		}
		var style = window.getComputedStyle(this);
		return style.position === 'fixed' && style.display !== 'none' &&
			style.visibility !== 'hidden';
	}`

	selectedJS = `function() {
		if (this.nodeName === 'OPTION') {
			return this.selected;
		}
		return !!this.checked;
	}`

	highlightJS = `function() {
		this.style.outline = '2px solid red';
		this.style.outlineOffset = '1px';
	}`
)
