package docgen

import (
	"strings"
)

// Node is one declaration in the reflection tree. Fields mirror the
// type-documentation tool's JSON schema; absent fields stay zero.
type Node struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	KindString   string   `json:"kindString"`
	Flags        Flags    `json:"flags"`
	Comment      *Comment `json:"comment"`
	Children     []*Node  `json:"children"`
	Signatures   []*Node  `json:"signatures"`
	Parameters   []*Node  `json:"parameters"`
	Type         *TypeRef `json:"type"`
	DefaultValue string   `json:"defaultValue"`
	GetSignature []*Node  `json:"getSignature"`
}

// Flags carries the visibility markers of a node.
type Flags struct {
	IsExported bool `json:"isExported"`
	IsPublic   bool `json:"isPublic"`
	IsPrivate  bool `json:"isPrivate"`
	IsStatic   bool `json:"isStatic"`
	IsOptional bool `json:"isOptional"`
	IsExternal bool `json:"isExternal"`
}

// Comment is the documentation comment attached to a node.
type Comment struct {
	ShortText string `json:"shortText"`
	Text      string `json:"text"`
	Returns   string `json:"returns"`
	Tags      []Tag  `json:"tags"`
}

// Tag is a named comment tag, eg. deprecated or example.
type Tag struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// Body returns the full comment body: short text followed by the long text.
func (c *Comment) Body() string {
	if c == nil {
		return ""
	}
	short := strings.TrimSpace(c.ShortText)
	long := strings.TrimSpace(c.Text)
	switch {
	case short == "":
		return long
	case long == "":
		return short
	}
	return short + "\n\n" + long
}

// TagText returns the text of the named tag and whether it is present.
func (c *Comment) TagText(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, t := range c.Tags {
		if strings.EqualFold(t.Tag, name) {
			return strings.TrimSpace(t.Text), true
		}
	}
	return "", false
}

// TypeRef is the type annotation of a node. Type determines which of the
// other fields are meaningful.
type TypeRef struct {
	Type          string     `json:"type"`
	Name          string     `json:"name"`
	Value         string     `json:"value"`
	TypeArguments []*TypeRef `json:"typeArguments"`
	Types         []*TypeRef `json:"types"`
	ElementType   *TypeRef   `json:"elementType"`
	Declaration   *Node      `json:"declaration"`
}

// Format renders the type reference as source-like text.
func (t *TypeRef) Format() string {
	if t == nil {
		return "void"
	}
	switch t.Type {
	case "union":
		parts := make([]string, len(t.Types))
		for i, u := range t.Types {
			parts[i] = u.Format()
		}
		return strings.Join(parts, " | ")
	case "array":
		return t.ElementType.Format() + "[]"
	case "stringLiteral":
		return "'" + t.Value + "'"
	case "reflection":
		if t.Declaration != nil && len(t.Declaration.Signatures) > 0 {
			return t.Declaration.Signatures[0].formatSignature(true)
		}
		return "object"
	}
	name := t.Name
	if name == "" {
		name = "unknown"
	}
	if len(t.TypeArguments) > 0 {
		args := make([]string, len(t.TypeArguments))
		for i, a := range t.TypeArguments {
			args[i] = a.Format()
		}
		name += "<" + strings.Join(args, ", ") + ">"
	}
	return name
}

// formatSignature renders a call signature node. When arrow is true the
// return type is rendered arrow-style, for inline function types.
func (n *Node) formatSignature(arrow bool) string {
	var b strings.Builder
	if !arrow {
		b.WriteString(n.Name)
	}
	b.WriteByte('(')
	for i, p := range n.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		if p.Flags.IsOptional {
			b.WriteByte('?')
		}
		b.WriteString(": ")
		b.WriteString(p.Type.Format())
	}
	b.WriteByte(')')
	if arrow {
		b.WriteString(" => ")
	} else {
		b.WriteString(": ")
	}
	b.WriteString(n.Type.Format())
	return b.String()
}

// isDocumented reports whether the node should appear in generated docs.
func (n *Node) isDocumented() bool {
	if n.Flags.IsPrivate || n.Flags.IsExternal {
		return false
	}
	if _, internal := n.commentTag("internal"); internal {
		return false
	}
	return true
}

func (n *Node) commentTag(name string) (string, bool) {
	if text, ok := n.Comment.TagText(name); ok {
		return text, true
	}
	// signatures often carry the comment instead of the declaration
	for _, sig := range n.Signatures {
		if text, ok := sig.Comment.TagText(name); ok {
			return text, true
		}
	}
	return "", false
}
