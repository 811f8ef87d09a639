package instrument

import (
	"fmt"
	"reflect"
	"time"

	"github.com/willibrandon/mtlog/selflog"
)

// Timer creates a decorator that measures each invocation's wall-clock
// duration and logs it on successful completion. Errors and panics from the
// wrapped function propagate immediately and unmodified; by default the
// error path produces no timing event (set TimerOptions.LogOnError to emit
// one at Warning level). Return values pass through unchanged.
func Timer(opts *TimerOptions) Decorator {
	if opts == nil {
		panic("instrument: options cannot be nil")
	}
	if err := opts.Validate(); err != nil {
		panic(fmt.Sprintf("instrument: invalid options: %v", err))
	}

	field := opts.DurationField
	if field == "" {
		field = "duration_ms"
	}
	unit := opts.DurationUnit
	if unit == "" {
		unit = "ms"
	}
	template := "{Function} completed in {" + field + "}" + unit

	return func(fn any) any {
		site, err := newCallSite(fn, opts.Name, nil, nil, nil)
		if err != nil {
			panic(fmt.Sprintf("instrument: %v", err))
		}

		wrapper := reflect.MakeFunc(site.typ, func(in []reflect.Value) []reflect.Value {
			start := time.Now()
			out, panicked, panicVal := site.call(in)
			elapsed := time.Since(start)

			if panicked {
				if selflog.IsEnabled() {
					selflog.Printf("[instrument] panic in %s after %v: %v", site.name, elapsed, panicVal)
				}
				if opts.Recorder != nil {
					site.guard("metrics", func() {
						opts.Recorder.RecordPanic(site.name)
					})
				}
				panic(panicVal)
			}

			callErr := site.errorFrom(out)

			if opts.Recorder != nil {
				site.guard("metrics", func() {
					opts.Recorder.RecordCall(site.name, callErr, elapsed)
				})
			}

			site.guard("logging", func() {
				switch {
				case callErr == nil:
					opts.Logger.Information(template, site.name, durationValue(elapsed, unit))
				case opts.LogOnError:
					opts.Logger.With("Error", callErr.Error()).
						Warning(template, site.name, durationValue(elapsed, unit))
				}
			})

			return out
		})

		return wrapper.Interface()
	}
}

// TimerFunc wraps fn with Timer while preserving its static type.
func TimerFunc[F any](opts *TimerOptions, fn F) F {
	return Timer(opts)(fn).(F)
}
