package stride

import (
	"context"
	"time"
)

// StepFn is the body of a test step. When the runner drives a chromedp
// browser context, the chromedp target is reachable through ctx and all
// stride operations work on it directly.
type StepFn func(ctx context.Context) error

// Step is a named unit of a test. Steps are built with NewStep or the Suite
// helpers and executed by a Runner.
type Step struct {
	name string
	fn   StepFn

	timeout  time.Duration
	repeat   int
	once     bool
	skip     bool
	pending  bool
	recovery bool
	unless   func() bool
}

// Name returns the step name.
func (s *Step) Name() string { return s.name }

// NewStep builds a step from a name, a body and options.
func NewStep(name string, fn StepFn, opts ...StepOption) *Step {
	s := &Step{name: name, fn: fn, repeat: 1}
	for _, o := range opts {
		o(s)
	}
	return s
}

// StepOption is a step construction option.
type StepOption func(*Step)

// Once marks a step to run only on the first loop iteration.
func Once() StepOption {
	return func(s *Step) { s.once = true }
}

// Skip marks a step to be skipped. The step is recorded in the run summary
// but its body never runs.
func Skip() StepOption {
	return func(s *Step) { s.skip = true }
}

// Pending marks a step as not yet implemented. Pending steps are recorded
// but never run and never fail the run.
func Pending() StepOption {
	return func(s *Step) { s.pending = true }
}

// Repeat makes the step body run n times per loop iteration.
func Repeat(n int) StepOption {
	return func(s *Step) {
		if n > 1 {
			s.repeat = n
		}
	}
}

// WithStepTimeout bounds the step with its own timeout instead of the
// settings' WaitTimeout.
func WithStepTimeout(d time.Duration) StepOption {
	return func(s *Step) { s.timeout = d }
}

// Unless skips the step whenever cond returns true at execution time.
func Unless(cond func() bool) StepOption {
	return func(s *Step) { s.unless = cond }
}

// Suite is an ordered collection of steps plus an optional recovery step.
type Suite struct {
	steps    []*Step
	recovery *Step
}

// NewSuite returns an empty suite.
func NewSuite() *Suite { return &Suite{} }

// Step appends an ordinary step.
func (su *Suite) Step(name string, fn StepFn, opts ...StepOption) *Suite {
	su.steps = append(su.steps, NewStep(name, fn, opts...))
	return su
}

// Once appends a step that runs only on the first loop iteration.
func (su *Suite) Once(name string, fn StepFn, opts ...StepOption) *Suite {
	return su.Step(name, fn, append(opts, Once())...)
}

// Skip appends a step that is recorded but never run.
func (su *Suite) Skip(name string, fn StepFn, opts ...StepOption) *Suite {
	return su.Step(name, fn, append(opts, Skip())...)
}

// Pending appends a placeholder for a step that is not written yet.
func (su *Suite) Pending(name string) *Suite {
	return su.Step(name, nil, Pending())
}

// Recovery installs the suite's recovery step. When an ordinary step fails,
// the recovery step runs; if it succeeds, the failed step is retried within
// the settings' Tries budget.
func (su *Suite) Recovery(name string, fn StepFn) *Suite {
	su.recovery = NewStep(name, fn)
	su.recovery.recovery = true
	return su
}

// Steps returns the suite's ordinary steps in order.
func (su *Suite) Steps() []*Step { return su.steps }
