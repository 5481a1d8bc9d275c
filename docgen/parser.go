package docgen

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Section is one heading plus its rendered body parts.
type Section struct {
	Level     int
	Heading   string
	Code      string // optional signature code block
	Body      string // comment text
	Params    []*Node
	Returns   string
	Deprecate string // deprecation notice, empty when not deprecated
}

// Page collects the sections generated for one top-level declaration.
type Page struct {
	Title    string
	Kind     string
	Sections []Section
}

// Document is the parse result: one page per documented top-level
// declaration, in stable name order.
type Document struct {
	Pages []*Page
}

// Parser walks a reflection tree and populates a Document. A Parser is
// single-use; create a new one per input.
type Parser struct {
	doc     *Document
	unknown map[string]int
	handle  map[string]func(p *Parser, page *Page, n *Node, level int)
}

// NewParser returns a parser with the default kind dispatch table.
func NewParser() *Parser {
	p := &Parser{
		doc:     &Document{},
		unknown: make(map[string]int),
	}
	p.handle = map[string]func(*Parser, *Page, *Node, int){
		"Class":              (*Parser).parseContainer,
		"Interface":          (*Parser).parseContainer,
		"Enumeration":        (*Parser).parseContainer,
		"Namespace":          (*Parser).parseContainer,
		"Object literal":     (*Parser).parseContainer,
		"Enumeration member": (*Parser).parseMember,
		"Variable":           (*Parser).parseMember,
		"Property":           (*Parser).parseMember,
		"Accessor":           (*Parser).parseAccessor,
		"Type alias":         (*Parser).parseMember,
		"Function":           (*Parser).parseCallable,
		"Method":             (*Parser).parseCallable,
		"Constructor":        (*Parser).parseCallable,
	}
	return p
}

// Parse decodes a reflection JSON dump and walks it.
func Parse(data []byte) (*Document, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decoding reflection tree: %w", err)
	}
	p := NewParser()
	return p.ParseTree(&root)
}

// ParseTree walks an already decoded reflection tree.
func (p *Parser) ParseTree(root *Node) (*Document, error) {
	if root == nil {
		return nil, fmt.Errorf("reflection tree is empty")
	}
	for _, child := range p.sorted(modules(root)) {
		p.parseTopLevel(child)
	}
	sort.Slice(p.doc.Pages, func(i, j int) bool {
		return p.doc.Pages[i].Title < p.doc.Pages[j].Title
	})
	return p.doc, nil
}

// Unknown returns the kind strings the parser had no handler for, with
// occurrence counts.
func (p *Parser) Unknown() map[string]int { return p.unknown }

// modules flattens the project root: declarations may sit directly under
// the root or inside module/external-module wrappers.
func modules(root *Node) []*Node {
	var out []*Node
	for _, child := range root.Children {
		switch child.KindString {
		case "Module", "External module":
			out = append(out, child.Children...)
		default:
			out = append(out, child)
		}
	}
	return out
}

func (p *Parser) parseTopLevel(n *Node) {
	if !n.isDocumented() {
		return
	}
	fn, ok := p.handle[n.KindString]
	if !ok {
		p.unknown[n.KindString]++
		return
	}
	page := &Page{Title: n.Name, Kind: n.KindString}
	fn(p, page, n, 1)
	if len(page.Sections) > 0 {
		p.doc.Pages = append(p.doc.Pages, page)
	}
}

// parseContainer handles class-like nodes: a heading for the declaration
// itself, then one section per documented member.
func (p *Parser) parseContainer(page *Page, n *Node, level int) {
	sec := Section{
		Level:   level,
		Heading: fmt.Sprintf("%s %s", n.KindString, n.Name),
		Body:    n.Comment.Body(),
	}
	if text, ok := n.commentTag("deprecated"); ok {
		sec.Deprecate = deprecationNotice(text)
	}
	page.Sections = append(page.Sections, sec)

	for _, child := range p.sorted(n.Children) {
		if !child.isDocumented() {
			continue
		}
		fn, ok := p.handle[child.KindString]
		if !ok {
			p.unknown[child.KindString]++
			continue
		}
		fn(p, page, child, level+1)
	}
}

// parseCallable handles functions, methods and constructors. Each call
// signature gets its own section; a signature-less callable contributes
// nothing.
func (p *Parser) parseCallable(page *Page, n *Node, level int) {
	for _, sig := range n.Signatures {
		sec := Section{
			Level:   level,
			Heading: fmt.Sprintf("`%s()`", n.Name),
			Code:    sig.formatSignature(false),
			Body:    sig.Comment.Body(),
			Params:  sig.Parameters,
		}
		if sig.Comment != nil {
			sec.Returns = sig.Comment.Returns
		}
		if text, ok := n.commentTag("deprecated"); ok {
			sec.Deprecate = deprecationNotice(text)
		}
		page.Sections = append(page.Sections, sec)
	}
}

// parseMember handles properties, variables, enum members and type aliases.
func (p *Parser) parseMember(page *Page, n *Node, level int) {
	heading := fmt.Sprintf("`%s`", n.Name)
	code := fmt.Sprintf("%s: %s", n.Name, n.Type.Format())
	if n.DefaultValue != "" {
		code += " = " + n.DefaultValue
	}
	sec := Section{
		Level:   level,
		Heading: heading,
		Code:    code,
		Body:    n.Comment.Body(),
	}
	if text, ok := n.commentTag("deprecated"); ok {
		sec.Deprecate = deprecationNotice(text)
	}
	page.Sections = append(page.Sections, sec)
}

// parseAccessor documents a getter through its get signature.
func (p *Parser) parseAccessor(page *Page, n *Node, level int) {
	if len(n.GetSignature) == 0 {
		return
	}
	get := n.GetSignature[0]
	sec := Section{
		Level:   level,
		Heading: fmt.Sprintf("`%s`", n.Name),
		Code:    fmt.Sprintf("%s: %s", n.Name, get.Type.Format()),
		Body:    get.Comment.Body(),
	}
	if sec.Body == "" {
		sec.Body = n.Comment.Body()
	}
	page.Sections = append(page.Sections, sec)
}

// sorted returns children ordered by name, keeping the walk deterministic
// regardless of declaration order in the dump.
func (p *Parser) sorted(nodes []*Node) []*Node {
	out := append([]*Node(nil), nodes...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func deprecationNotice(text string) string {
	if text == "" {
		return "Deprecated."
	}
	return "Deprecated: " + text
}
