package stride

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Status is the outcome of a step attempt.
type Status int

// Step statuses.
const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
	StatusPending
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusPending:
		return "pending"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// StepResult records the outcome of a single step within a loop iteration.
type StepResult struct {
	Name      string        `json:"name"`
	Loop      int           `json:"loop"`
	Status    Status        `json:"status"`
	Attempts  int           `json:"attempts"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
	Artifacts []string      `json:"artifacts,omitempty"`
}

// Summary is the result of a whole run.
type Summary struct {
	RunID   string        `json:"runId"`
	Name    string        `json:"name"`
	Started time.Time     `json:"started"`
	Elapsed time.Duration `json:"elapsed"`
	Loops   int           `json:"loops"`
	Steps   []StepResult  `json:"steps"`
	Passed  bool          `json:"passed"`
}

// Runner executes a suite against a browser context according to its
// settings.
type Runner struct {
	settings Settings
	log      zerolog.Logger
	now      func() time.Time
	sleep    func(context.Context, time.Duration)
}

// RunnerOption is a runner construction option.
type RunnerOption func(*Runner)

// WithLogger directs the runner's structured step logging to log. By
// default the runner is silent.
func WithLogger(log zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// NewRunner returns a runner for the given settings.
func NewRunner(settings Settings, opts ...RunnerOption) *Runner {
	r := &Runner{
		settings: settings,
		log:      zerolog.Nop(),
		now:      time.Now,
		sleep:    sleepCtx,
	}
	for _, o := range opts {
		o(r)
	}
	if r.settings.Tries < 1 {
		r.settings.Tries = 1
	}
	return r
}

// Run executes the suite. ctx is expected to be a chromedp browser context
// for suites that drive a browser; suites of pure steps run against any
// context, in which case browser preparation and artifact capture are
// skipped.
//
// Run returns the summary together with an error wrapping ErrStepFailed when
// a step exhausts its tries. The summary is valid in both cases.
func (r *Runner) Run(ctx context.Context, suite *Suite) (*Summary, error) {
	if suite == nil || len(suite.steps) == 0 {
		return nil, ErrEmptySuite
	}

	sum := &Summary{
		RunID:   uuid.NewString(),
		Name:    r.settings.Name,
		Started: r.now(),
		Passed:  true,
	}
	log := r.log.With().Str("run", sum.RunID).Str("test", r.settings.Name).Logger()
	log.Info().Int("steps", len(suite.steps)).Msg("run started")

	r.forwardConsole(ctx, log)

	deadline := time.Time{}
	if r.settings.Duration > 0 {
		deadline = sum.Started.Add(r.settings.Duration)
	}

	var failure error
loops:
	for loop := 0; r.settings.LoopCount < 0 || loop < r.settings.LoopCount; loop++ {
		if !deadline.IsZero() && !r.now().Before(deadline) {
			break
		}
		if ctx.Err() != nil {
			failure = ctx.Err()
			sum.Passed = false
			break
		}
		sum.Loops++
		log.Info().Int("loop", loop).Msg("loop started")

		if err := r.prepareLoop(ctx); err != nil {
			failure = fmt.Errorf("preparing loop %d: %w", loop, err)
			sum.Passed = false
			break
		}

		for i, step := range suite.steps {
			if i > 0 {
				r.sleep(ctx, r.settings.StepDelay)
			}
			res := r.runStep(ctx, log, suite, step, loop, sum.RunID)
			sum.Steps = append(sum.Steps, res)
			if res.Status == StatusFailed {
				sum.Passed = false
				failure = fmt.Errorf("step %q: %w", step.name, ErrStepFailed)
				break loops
			}
		}

		// An unbounded loop count without a duration bound would never
		// terminate; treat it as a single pass.
		if r.settings.LoopCount < 0 && deadline.IsZero() {
			break
		}
	}

	sum.Elapsed = r.now().Sub(sum.Started)
	log.Info().
		Bool("passed", sum.Passed).
		Int("loops", sum.Loops).
		Dur("elapsed", sum.Elapsed).
		Msg("run finished")
	return sum, failure
}

// runStep executes one step, dispatching recovery and retries.
func (r *Runner) runStep(ctx context.Context, log zerolog.Logger, suite *Suite, step *Step, loop int, runID string) (res StepResult) {
	res = StepResult{Name: step.name, Loop: loop}
	slog := log.With().Str("step", step.name).Int("loop", loop).Logger()

	switch {
	case step.pending:
		res.Status = StatusPending
		slog.Info().Msg("step pending")
		return res
	case step.skip,
		step.once && loop > 0,
		step.unless != nil && step.unless():
		res.Status = StatusSkipped
		slog.Info().Msg("step skipped")
		return res
	}

	started := r.now()
	defer func() { res.Duration = r.now().Sub(started) }()

	for attempt := 1; ; attempt++ {
		res.Attempts = attempt
		err := r.attempt(ctx, step)
		if err == nil {
			res.Status = StatusPassed
			slog.Info().Int("attempt", attempt).Msg("step passed")
			return res
		}

		slog.Warn().Err(err).Int("attempt", attempt).Msg("step failed")
		res.Err = err
		res.Artifacts = append(res.Artifacts, r.captureArtifacts(ctx, slog, step, runID)...)

		if attempt >= r.settings.Tries || suite.recovery == nil {
			res.Status = StatusFailed
			return res
		}

		slog.Info().Str("recovery", suite.recovery.name).Msg("running recovery step")
		if rerr := r.attempt(ctx, suite.recovery); rerr != nil {
			slog.Error().Err(rerr).Msg("recovery step failed")
			res.Status = StatusFailed
			res.Err = fmt.Errorf("recovery after %v: %w", err, rerr)
			return res
		}
		r.sleep(ctx, r.settings.ActionDelay)
	}
}

// attempt runs the step body, honoring repeat counts and the step timeout.
func (r *Runner) attempt(ctx context.Context, step *Step) error {
	timeout := step.timeout
	if timeout == 0 {
		timeout = r.settings.WaitTimeout
	}
	for i := 0; i < step.repeat; i++ {
		if err := r.runBody(ctx, step.fn, timeout); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runBody(ctx context.Context, fn StepFn, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}

// forwardConsole mirrors browser console messages of the configured types
// into the run log. It is a no-op when ctx is not a chromedp context or no
// filter is set.
func (r *Runner) forwardConsole(ctx context.Context, log zerolog.Logger) {
	if chromedp.FromContext(ctx) == nil || len(r.settings.ConsoleFilter) == 0 {
		return
	}
	allowed := make(map[string]bool, len(r.settings.ConsoleFilter))
	for _, typ := range r.settings.ConsoleFilter {
		allowed[strings.ToLower(typ)] = true
	}
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		m, ok := ev.(*runtime.EventConsoleAPICalled)
		if !ok || !allowed[string(m.Type)] {
			return
		}
		args := make([]string, len(m.Args))
		for i, a := range m.Args {
			args[i] = string(a.Value)
		}
		log.Info().Str("type", string(m.Type)).Strs("args", args).Msg("console")
	})
}

// prepareLoop applies per-loop browser state from the settings. The device
// name is validated even without a browser; the rest is a no-op when ctx is
// not a chromedp context.
func (r *Runner) prepareLoop(ctx context.Context) error {
	var actions []chromedp.Action
	if r.settings.Device != "" {
		d, err := Device(r.settings.Device)
		if err != nil {
			return err
		}
		actions = append(actions, chromedp.Emulate(d))
	}
	if chromedp.FromContext(ctx) == nil {
		return nil
	}
	if r.settings.UserAgent != "" {
		actions = append(actions, emulation.SetUserAgentOverride(r.settings.UserAgent))
	}
	if len(r.settings.BlockedDomains) != 0 {
		actions = append(actions, network.Enable(), network.SetBlockedURLS(r.settings.BlockedDomains))
	}
	if r.settings.ClearCache {
		actions = append(actions, network.ClearBrowserCache())
	}
	if r.settings.ClearCookies {
		actions = append(actions, network.ClearBrowserCookies())
	}
	if len(actions) == 0 {
		return nil
	}
	return chromedp.Run(ctx, actions...)
}

// captureArtifacts saves failure artifacts per the settings and returns
// their paths. Capture is best effort: failures are logged, never fatal.
func (r *Runner) captureArtifacts(ctx context.Context, log zerolog.Logger, step *Step, runID string) []string {
	if chromedp.FromContext(ctx) == nil {
		return nil
	}

	dir := filepath.Join(r.settings.ArtifactDir, runID)
	var paths []string
	if r.settings.ScreenshotOnFailure {
		buf, err := CaptureViewport(ctx)
		if err == nil {
			path, werr := saveArtifact(dir, step.name, "png", buf)
			if werr == nil {
				paths = append(paths, path)
			} else {
				err = werr
			}
		}
		if err != nil {
			log.Warn().Err(err).Msg("screenshot capture failed")
		}
	}
	if r.settings.CapturePDFOnFailure {
		buf, err := PrintPDF(ctx)
		if err == nil {
			path, werr := saveArtifact(dir, step.name, "pdf", buf)
			if werr == nil {
				paths = append(paths, path)
			} else {
				err = werr
			}
		}
		if err != nil {
			log.Warn().Err(err).Msg("pdf capture failed")
		}
	}
	for _, p := range paths {
		log.Info().Str("artifact", p).Msg("failure artifact saved")
	}
	return paths
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
