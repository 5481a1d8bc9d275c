package stride

import (
	"context"
	"testing"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleLocalAccessors(t *testing.T) {
	t.Parallel()

	n := &cdp.Node{
		NodeName:   "INPUT",
		Attributes: []string{"id", "email", "type", "text"},
	}
	h := newElementHandle(n, `ByID("email")`)

	assert.Equal(t, "input", h.TagName())
	assert.Equal(t, "email", h.GetID())
	assert.Same(t, n, h.Node())
	assert.Equal(t, `ByID("email")`, h.String())
}

func TestTypeReportsTypeOperation(t *testing.T) {
	t.Parallel()

	// a context without a browser attached makes the underlying run fail;
	// the error must name the type operation, not the internal clear phase
	h := newElementHandle(&cdp.Node{NodeName: "INPUT"}, `ByID("q")`)
	err := h.Type(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `type into ByID("q")`)
	assert.NotContains(t, err.Error(), "clear")
}

func TestRectFromQuad(t *testing.T) {
	t.Parallel()

	// quad corners in x1,y1 .. x4,y4 order, deliberately rotated
	quad := dom.Quad{100, 50, 300, 50, 300, 150, 100, 150}
	r, err := rectFromQuad(quad)
	require.NoError(t, err)
	assert.Equal(t, &Rect{X: 100, Y: 50, Width: 200, Height: 100}, r)

	_, err = rectFromQuad(dom.Quad{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidBoxModel)
}

func TestParseRemoteObject(t *testing.T) {
	t.Parallel()

	t.Run("nil res ignores value", func(t *testing.T) {
		assert.NoError(t, parseRemoteObject(&runtime.RemoteObject{Type: "string"}, nil))
	})

	t.Run("raw bytes", func(t *testing.T) {
		var raw []byte
		v := &runtime.RemoteObject{Type: "object", Value: []byte(`{"a":1}`)}
		require.NoError(t, parseRemoteObject(v, &raw))
		assert.JSONEq(t, `{"a":1}`, string(raw))
	})

	t.Run("remote object passthrough", func(t *testing.T) {
		var ro *runtime.RemoteObject
		v := &runtime.RemoteObject{Type: "object"}
		require.NoError(t, parseRemoteObject(v, &ro))
		assert.Same(t, v, ro)
	})

	t.Run("unmarshal", func(t *testing.T) {
		var s string
		v := &runtime.RemoteObject{Type: "string", Value: []byte(`"hello"`)}
		require.NoError(t, parseRemoteObject(v, &s))
		assert.Equal(t, "hello", s)
	})

	t.Run("undefined", func(t *testing.T) {
		var s string
		v := &runtime.RemoteObject{Type: "undefined"}
		assert.Error(t, parseRemoteObject(v, &s))
	})
}

func TestErrAppender(t *testing.T) {
	t.Parallel()

	ea := &errAppender{}
	ea.append("text")
	ea.append(42)
	require.NoError(t, ea.err)
	require.Len(t, ea.args, 2)
	assert.Equal(t, `"text"`, string(ea.args[0].Value))
	assert.Equal(t, `42`, string(ea.args[1].Value))

	ea.append(func() {}) // unmarshalable: records the error
	assert.Error(t, ea.err)
	assert.Len(t, ea.args, 3)

	ea.append("after error") // no-op once an error is recorded
	assert.Len(t, ea.args, 3)
}
