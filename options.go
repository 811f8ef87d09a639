package instrument

import (
	"fmt"
	"time"

	"github.com/willibrandon/mtlog/core"
	"go.opentelemetry.io/otel/trace"
)

// Mode controls how many events the Log decorator emits on the success path.
type Mode string

const (
	// ModeFull emits a start event before the call and a finish event after it.
	ModeFull Mode = "full"
	// ModePartial emits only the finish event (or the error event on failure).
	ModePartial Mode = "partial"
)

// LogOptions configures the Log decorator behavior
type LogOptions struct {
	// Logger is the mtlog logger to use
	Logger core.Logger

	// Name overrides the display name derived from the function's runtime symbol
	Name string

	// Mode selects full (start + finish) or partial (finish only) logging
	Mode Mode

	// ParamNames declares the wrapped function's parameter names positionally.
	// Go reflection carries no parameter names, so without this the
	// parameters are addressed as arg0..argN (ctx for a leading context).
	ParamNames []string

	// Args lists parameter names whose values are attached to every event
	Args []string

	// Vars lists dotted attribute paths (e.g. "self.request.style") resolved
	// against the first non-context argument and attached to every event.
	// Unresolvable paths are omitted, never an error.
	Vars []string

	// ResultField, when non-empty, attaches the first non-error return value
	// to the finish event under this property name
	ResultField string

	// LevelFunc selects the event level from the call outcome
	LevelFunc func(err error) core.LogEventLevel

	// GenerateCallID attaches a generated UUID as the CallId property and,
	// for context-aware functions, injects it into the context
	GenerateCallID bool

	// Tracer, when set, opens a span around each invocation
	Tracer trace.Tracer

	// Recorder records call metrics
	Recorder Recorder

	// BeforeCall is called before the wrapped function, with the call-scoped logger
	BeforeCall func(function string, logger core.Logger)

	// AfterCall is called after the wrapped function completes or fails
	AfterCall func(function string, err error, duration time.Duration, logger core.Logger)
}

// DefaultLogOptions returns log options with sensible defaults
func DefaultLogOptions(logger core.Logger) *LogOptions {
	return &LogOptions{
		Logger:    logger,
		Mode:      ModePartial,
		LevelFunc: defaultLevelFunc,
	}
}

// Validate checks that the options are valid
func (opts *LogOptions) Validate() error {
	if opts.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	switch opts.Mode {
	case ModeFull, ModePartial, "":
		// empty defaults to partial
	default:
		return fmt.Errorf("invalid Mode %q, must be %q or %q", opts.Mode, ModeFull, ModePartial)
	}

	seen := make(map[string]struct{}, len(opts.ParamNames))
	for i, name := range opts.ParamNames {
		if name == "" {
			return fmt.Errorf("ParamNames[%d] cannot be empty", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("ParamNames contains duplicate name %q", name)
		}
		seen[name] = struct{}{}
	}

	// Args are checked against declared names here; positional checks
	// against the actual function happen when the decorator is applied.
	if len(opts.ParamNames) > 0 {
		for _, arg := range opts.Args {
			if _, ok := seen[arg]; !ok {
				return fmt.Errorf("Args name %q not declared in ParamNames", arg)
			}
		}
	}

	for i, path := range opts.Vars {
		if path == "" || path == varsSelfPrefix {
			return fmt.Errorf("Vars[%d] is not a valid attribute path", i)
		}
	}

	return nil
}

// TimerOptions configures the Timer decorator behavior
type TimerOptions struct {
	// Logger is the mtlog logger to use
	Logger core.Logger

	// Name overrides the display name derived from the function's runtime symbol
	Name string

	// DurationField specifies the property name for the call duration
	DurationField string

	// DurationUnit specifies the unit for the duration (ms, us, ns, s)
	DurationUnit string

	// LogOnError also emits a timing event when the call returns an error.
	// The event is written at Warning level with the error attached.
	LogOnError bool

	// Recorder records call metrics
	Recorder Recorder
}

// DefaultTimerOptions returns timer options with sensible defaults
func DefaultTimerOptions(logger core.Logger) *TimerOptions {
	return &TimerOptions{
		Logger:        logger,
		DurationField: "duration_ms",
		DurationUnit:  "ms",
	}
}

// Validate checks that the options are valid
func (opts *TimerOptions) Validate() error {
	if opts.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	if opts.DurationUnit != "" {
		switch opts.DurationUnit {
		case "ms", "us", "ns", "s":
			// Valid units
		default:
			return fmt.Errorf("invalid DurationUnit %q, must be one of: ms, us, ns, s", opts.DurationUnit)
		}
	}

	return nil
}

// defaultLevelFunc returns the event level based on the call outcome
func defaultLevelFunc(err error) core.LogEventLevel {
	if err != nil {
		return core.ErrorLevel
	}
	return core.InformationLevel
}

// durationValue converts a duration to the specified unit
func durationValue(d time.Duration, unit string) float64 {
	switch unit {
	case "us":
		return float64(d.Microseconds())
	case "ns":
		return float64(d.Nanoseconds())
	case "s":
		return d.Seconds()
	default: // ms
		return float64(d.Milliseconds())
	}
}
