package stride

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds the knobs a test run is executed with. The zero value is
// not useful on its own; start from DefaultSettings and merge overrides on
// top.
type Settings struct {
	// Name and Description identify the test in logs and summaries.
	Name        string
	Description string

	// WaitTimeout bounds each step, element wait and condition.
	WaitTimeout time.Duration

	// ActionDelay is the pause inserted before retrying a failed step.
	ActionDelay time.Duration

	// StepDelay is the pause inserted between consecutive steps.
	StepDelay time.Duration

	// Duration bounds the whole run. Zero means no bound.
	Duration time.Duration

	// LoopCount is the number of times the suite is executed. -1 repeats
	// until Duration elapses.
	LoopCount int

	// Tries is the total number of attempts a failing step is given when a
	// recovery step succeeds.
	Tries int

	// ScreenshotOnFailure captures a viewport screenshot when a step fails.
	ScreenshotOnFailure bool

	// CapturePDFOnFailure prints the page to PDF when a step fails.
	CapturePDFOnFailure bool

	// ClearCache and ClearCookies reset browser state before each loop.
	ClearCache   bool
	ClearCookies bool

	// IgnoreHTTPSErrors is recorded for allocator configuration; it has no
	// effect on an already running browser.
	IgnoreHTTPSErrors bool

	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string

	// Device names an emulation preset applied at the start of each loop.
	// See Device for the known names.
	Device string

	// BlockedDomains are URL patterns the browser will refuse to fetch.
	BlockedDomains []string

	// ConsoleFilter lists the browser console message types (log, info,
	// warning, error, ...) forwarded to the runner log. Empty disables
	// console forwarding.
	ConsoleFilter []string

	// ArtifactDir is where failure screenshots and PDFs are written.
	// Defaults to the working directory.
	ArtifactDir string
}

// DefaultSettings returns the settings used when a test specifies nothing.
func DefaultSettings() Settings {
	return Settings{
		WaitTimeout:         30 * time.Second,
		ActionDelay:         2 * time.Second,
		StepDelay:           6 * time.Second,
		LoopCount:           1,
		Tries:               1,
		ScreenshotOnFailure: true,
	}
}

// Merge returns a copy of s with every non-zero field of o applied on top.
// Boolean false and empty values in o keep the receiver's values; to force
// a default off, set the field on the merged result directly.
func (s Settings) Merge(o Settings) Settings {
	if o.Name != "" {
		s.Name = o.Name
	}
	if o.Description != "" {
		s.Description = o.Description
	}
	if o.WaitTimeout != 0 {
		s.WaitTimeout = o.WaitTimeout
	}
	if o.ActionDelay != 0 {
		s.ActionDelay = o.ActionDelay
	}
	if o.StepDelay != 0 {
		s.StepDelay = o.StepDelay
	}
	if o.Duration != 0 {
		s.Duration = o.Duration
	}
	if o.LoopCount != 0 {
		s.LoopCount = o.LoopCount
	}
	if o.Tries != 0 {
		s.Tries = o.Tries
	}
	if o.ScreenshotOnFailure {
		s.ScreenshotOnFailure = true
	}
	if o.CapturePDFOnFailure {
		s.CapturePDFOnFailure = true
	}
	if o.ClearCache {
		s.ClearCache = true
	}
	if o.ClearCookies {
		s.ClearCookies = true
	}
	if o.IgnoreHTTPSErrors {
		s.IgnoreHTTPSErrors = true
	}
	if o.UserAgent != "" {
		s.UserAgent = o.UserAgent
	}
	if o.Device != "" {
		s.Device = o.Device
	}
	if len(o.BlockedDomains) != 0 {
		s.BlockedDomains = append([]string(nil), o.BlockedDomains...)
	}
	if len(o.ConsoleFilter) != 0 {
		s.ConsoleFilter = append([]string(nil), o.ConsoleFilter...)
	}
	if o.ArtifactDir != "" {
		s.ArtifactDir = o.ArtifactDir
	}
	return s
}

// DurationFrom converts a bare numeric timing value to a duration. Values of
// 1000 and above are treated as milliseconds, smaller positive values as
// seconds. The second return value is false for negative inputs.
func DurationFrom(v float64) (time.Duration, bool) {
	switch {
	case v < 0:
		return 0, false
	case v == 0:
		return 0, true
	case v >= 1000:
		return time.Duration(v * float64(time.Millisecond)), true
	default:
		return time.Duration(v * float64(time.Second)), true
	}
}

// flexDuration accepts either a bare number (interpreted with DurationFrom)
// or a Go duration string in YAML settings profiles.
type flexDuration time.Duration

func (d *flexDuration) UnmarshalYAML(value *yaml.Node) error {
	var f float64
	if err := value.Decode(&f); err == nil {
		dur, ok := DurationFrom(f)
		if !ok {
			return fmt.Errorf("negative duration value %v", f)
		}
		*d = flexDuration(dur)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a number or a duration string: %w", err)
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = flexDuration(dur)
	return nil
}

// settingsFile is the YAML shape of a settings profile. Timing fields accept
// bare numbers or duration strings; booleans are pointers so an explicit
// false can override a default true.
type settingsFile struct {
	Name                string       `yaml:"name"`
	Description         string       `yaml:"description"`
	WaitTimeout         flexDuration `yaml:"waitTimeout"`
	ActionDelay         flexDuration `yaml:"actionDelay"`
	StepDelay           flexDuration `yaml:"stepDelay"`
	Duration            flexDuration `yaml:"duration"`
	LoopCount           int          `yaml:"loopCount"`
	Tries               int          `yaml:"tries"`
	ScreenshotOnFailure *bool        `yaml:"screenshotOnFailure"`
	CapturePDFOnFailure *bool        `yaml:"capturePDFOnFailure"`
	ClearCache          *bool        `yaml:"clearCache"`
	ClearCookies        *bool        `yaml:"clearCookies"`
	IgnoreHTTPSErrors   *bool        `yaml:"ignoreHTTPSErrors"`
	UserAgent           string       `yaml:"userAgent"`
	Device              string       `yaml:"device"`
	BlockedDomains      []string     `yaml:"blockedDomains"`
	ConsoleFilter       []string     `yaml:"consoleFilter"`
	ArtifactDir         string       `yaml:"artifactDir"`
}

// LoadSettings reads a YAML settings profile and applies it over the
// defaults.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings profile: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings parses a YAML settings profile and applies it over the
// defaults.
func ParseSettings(data []byte) (Settings, error) {
	var f settingsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Settings{}, fmt.Errorf("parsing settings profile: %w", err)
	}

	s := DefaultSettings().Merge(Settings{
		Name:           f.Name,
		Description:    f.Description,
		WaitTimeout:    time.Duration(f.WaitTimeout),
		ActionDelay:    time.Duration(f.ActionDelay),
		StepDelay:      time.Duration(f.StepDelay),
		Duration:       time.Duration(f.Duration),
		LoopCount:      f.LoopCount,
		Tries:          f.Tries,
		UserAgent:      f.UserAgent,
		Device:         f.Device,
		BlockedDomains: f.BlockedDomains,
		ConsoleFilter:  f.ConsoleFilter,
		ArtifactDir:    f.ArtifactDir,
	})

	// pointer booleans override in either direction
	if f.ScreenshotOnFailure != nil {
		s.ScreenshotOnFailure = *f.ScreenshotOnFailure
	}
	if f.CapturePDFOnFailure != nil {
		s.CapturePDFOnFailure = *f.CapturePDFOnFailure
	}
	if f.ClearCache != nil {
		s.ClearCache = *f.ClearCache
	}
	if f.ClearCookies != nil {
		s.ClearCookies = *f.ClearCookies
	}
	if f.IgnoreHTTPSErrors != nil {
		s.IgnoreHTTPSErrors = *f.IgnoreHTTPSErrors
	}
	return s, nil
}
