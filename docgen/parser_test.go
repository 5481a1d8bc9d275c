package docgen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = `{
	"id": 0,
	"name": "api",
	"kindString": "Project",
	"children": [
		{
			"id": 1,
			"name": "\"page/element\"",
			"kindString": "External module",
			"children": [
				{
					"id": 2,
					"name": "ElementHandle",
					"kindString": "Class",
					"flags": {"isExported": true},
					"comment": {"shortText": "A handle to a DOM element."},
					"children": [
						{
							"id": 3,
							"name": "click",
							"kindString": "Method",
							"flags": {"isExported": true},
							"signatures": [
								{
									"id": 4,
									"name": "click",
									"kindString": "Call signature",
									"comment": {
										"shortText": "Clicks the element.",
										"returns": "a promise resolving once the click is dispatched"
									},
									"parameters": [
										{
											"id": 5,
											"name": "button",
											"kindString": "Parameter",
											"flags": {"isOptional": true},
											"comment": {"shortText": "mouse button to use"},
											"type": {"type": "union", "types": [
												{"type": "stringLiteral", "value": "left"},
												{"type": "stringLiteral", "value": "right"}
											]}
										}
									],
									"type": {"type": "reference", "name": "Promise", "typeArguments": [
										{"type": "intrinsic", "name": "void"}
									]}
								}
							]
						},
						{
							"id": 6,
							"name": "tagName",
							"kindString": "Property",
							"flags": {"isExported": true},
							"comment": {"shortText": "Lowercased tag name."},
							"type": {"type": "intrinsic", "name": "string"}
						},
						{
							"id": 7,
							"name": "secret",
							"kindString": "Property",
							"flags": {"isPrivate": true},
							"type": {"type": "intrinsic", "name": "string"}
						},
						{
							"id": 8,
							"name": "wat",
							"kindString": "Sprocket",
							"flags": {"isExported": true}
						}
					]
				},
				{
					"id": 9,
					"name": "oldHelper",
					"kindString": "Function",
					"flags": {"isExported": true},
					"signatures": [
						{
							"id": 10,
							"name": "oldHelper",
							"kindString": "Call signature",
							"comment": {
								"shortText": "Does old things.",
								"tags": [{"tag": "deprecated", "text": "use ElementHandle instead"}]
							},
							"type": {"type": "intrinsic", "name": "void"}
						}
					]
				},
				{
					"id": 11,
					"name": "emptyFn",
					"kindString": "Function",
					"flags": {"isExported": true}
				}
			]
		}
	]
}`

func TestParseSampleDump(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleDump))
	require.NoError(t, err)

	// emptyFn has no signatures and contributes no page
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, "ElementHandle", doc.Pages[0].Title)
	assert.Equal(t, "oldHelper", doc.Pages[1].Title)

	page := doc.Pages[0]
	require.Len(t, page.Sections, 3, "class heading, click, tagName; the private member is skipped")

	assert.Equal(t, "Class ElementHandle", page.Sections[0].Heading)
	assert.Equal(t, "A handle to a DOM element.", page.Sections[0].Body)

	click := page.Sections[1]
	assert.Equal(t, "`click()`", click.Heading)
	assert.Equal(t, "click(button?: 'left' | 'right'): Promise<void>", click.Code)
	assert.Equal(t, "Clicks the element.", click.Body)
	assert.Equal(t, "a promise resolving once the click is dispatched", click.Returns)
	require.Len(t, click.Params, 1)

	tagName := page.Sections[2]
	assert.Equal(t, "`tagName`", tagName.Heading)
	assert.Equal(t, "tagName: string", tagName.Code)
}

func TestParseCountsUnknownKinds(t *testing.T) {
	t.Parallel()

	var root Node
	require.NoError(t, json.Unmarshal([]byte(sampleDump), &root))

	p := NewParser()
	_, err := p.ParseTree(&root)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Sprocket": 1}, p.Unknown())
}

func TestParseDeprecationTag(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleDump))
	require.NoError(t, err)

	old := doc.Pages[1]
	require.Len(t, old.Sections, 1)
	assert.Equal(t, "Deprecated: use ElementHandle instead", old.Sections[0].Deprecate)
}

func TestParseInvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("{nope"))
	assert.Error(t, err)

	p := NewParser()
	_, err = p.ParseTree(nil)
	assert.Error(t, err)
}

func TestTypeRefFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   *TypeRef
		want string
	}{
		{"nil", nil, "void"},
		{"intrinsic", &TypeRef{Type: "intrinsic", Name: "number"}, "number"},
		{"array", &TypeRef{Type: "array", ElementType: &TypeRef{Type: "intrinsic", Name: "string"}}, "string[]"},
		{
			"union",
			&TypeRef{Type: "union", Types: []*TypeRef{
				{Type: "intrinsic", Name: "string"},
				{Type: "stringLiteral", Value: "auto"},
			}},
			"string | 'auto'",
		},
		{
			"generic reference",
			&TypeRef{Type: "reference", Name: "Promise", TypeArguments: []*TypeRef{
				{Type: "reference", Name: "ElementHandle"},
			}},
			"Promise<ElementHandle>",
		},
		{"nameless", &TypeRef{Type: "reference"}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Format())
		})
	}
}

func TestCommentBody(t *testing.T) {
	t.Parallel()

	var nilComment *Comment
	assert.Empty(t, nilComment.Body())

	c := &Comment{ShortText: "Short.\n", Text: "Long text."}
	assert.Equal(t, "Short.\n\nLong text.", c.Body())

	assert.Equal(t, "Only short.", (&Comment{ShortText: "Only short."}).Body())
	assert.Equal(t, "Only long.", (&Comment{Text: "Only long."}).Body())
}
