package stride

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// callFunctionOnNode resolves node to a remote object and invokes the
// Javascript function declaration with the node bound as the receiver,
// unmarshaling the result of the call to res.
//
// When res is nil, the result of the call is ignored.
func callFunctionOnNode(ctx context.Context, node *cdp.Node, function string, res interface{}, args ...interface{}) error {
	r, err := dom.ResolveNode().WithNodeID(node.NodeID).Do(ctx)
	if err != nil {
		return err
	}

	ea := &errAppender{args: make([]*runtime.CallArgument, 0, len(args))}
	for _, arg := range args {
		ea.append(arg)
	}
	if ea.err != nil {
		return ea.err
	}

	p := runtime.CallFunctionOn(function).
		WithObjectID(r.ObjectID).
		WithArguments(ea.args)
	switch res.(type) {
	case **runtime.RemoteObject:
	default:
		p = p.WithReturnByValue(true)
	}

	v, exp, err := p.Do(ctx)

	// the remote object is only needed to address the call; release it
	// regardless of the call outcome so the page can collect it.
	_ = runtime.ReleaseObject(r.ObjectID).Do(ctx)

	if err != nil {
		return err
	}
	if exp != nil {
		return exp
	}
	return parseRemoteObject(v, res)
}

// evalOnNode is the chromedp.Action form of callFunctionOnNode.
func evalOnNode(node *cdp.Node, function string, res interface{}, args ...interface{}) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return callFunctionOnNode(ctx, node, function, res, args...)
	})
}

func parseRemoteObject(v *runtime.RemoteObject, res interface{}) error {
	if res == nil {
		return nil
	}

	switch x := res.(type) {
	case **runtime.RemoteObject:
		*x = v
		return nil

	case *[]byte:
		*x = v.Value
		return nil
	}

	if v.Type == "undefined" {
		// The unmarshal below would fail with the cryptic
		// "unexpected end of JSON input" error, so try to give
		// a better one here.
		return fmt.Errorf("encountered an undefined value")
	}

	return json.Unmarshal(v.Value, res)
}

// errAppender accumulates marshaled call arguments and simplifies error
// checks.
//
// see https://blog.golang.org/errors-are-values
type errAppender struct {
	args []*runtime.CallArgument
	err  error
}

// append marshals the value and appends it to the argument slice. It records
// the first error for future reference. As soon as an error occurs, the
// append method becomes a no-op but the error value is saved.
func (ea *errAppender) append(v interface{}) {
	if ea.err != nil {
		return
	}
	var b []byte
	b, ea.err = json.Marshal(v)
	ea.args = append(ea.args, &runtime.CallArgument{Value: b})
}
