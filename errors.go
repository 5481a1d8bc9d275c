package stride

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error types.
var (
	// ErrNoElement is the error returned when a locator matches no elements.
	ErrNoElement = errors.New("no element found")

	// ErrElementDetached is the error returned when an operation targets a
	// node that is no longer attached to the document. This usually means
	// the element was removed from the DOM or the page navigated after the
	// element was located; locate the element again before retrying.
	ErrElementDetached = errors.New("element is detached from the document")

	// ErrElementNotVisible is the error returned when an operation requires
	// a visible element but the element has no box model (it is hidden,
	// collapsed, or rendered off-document).
	ErrElementNotVisible = errors.New("element is not visible")

	// ErrInvalidBoxModel is the error returned when the retrieved box model
	// is malformed.
	ErrInvalidBoxModel = errors.New("invalid box model")

	// ErrUnknownDevice is the error returned when a settings profile names a
	// device preset that does not exist.
	ErrUnknownDevice = errors.New("unknown device")

	// ErrStepFailed is the error returned by a runner when a step exhausts
	// its tries.
	ErrStepFailed = errors.New("step failed")

	// ErrEmptySuite is the error returned when a runner is given a suite
	// with no runnable steps.
	ErrEmptySuite = errors.New("suite has no steps")
)

// cdp error fragments that indicate a stale node reference. The protocol
// reports these as plain message strings, so matching on substrings is the
// only option available to a client.
var detachedFragments = []string{
	"no node with given id",
	"node with given id does not belong to the document",
	"not belong to the document",
	"detached from document",
	"cannot find context with specified id",
	"argument should belong to the same javascript world",
}

// decorateError maps raw errors from the underlying automation library onto
// the user-facing sentinel errors above. Errors with no known mapping are
// returned unchanged.
func decorateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "could not compute box model") {
		return fmt.Errorf("%w: %s", ErrElementNotVisible, err)
	}
	for _, frag := range detachedFragments {
		if strings.Contains(msg, frag) {
			return fmt.Errorf("%w: %s", ErrElementDetached, err)
		}
	}
	return err
}

// timeoutAsNoElement maps an expired wait onto ErrNoElement, keeping the
// deadline error in the chain. Blocking queries only return once a node
// matches, so running out of time is how "no element" presents there.
func timeoutAsNoElement(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w (%w)", ErrNoElement, err)
	}
	return decorateError(err)
}
