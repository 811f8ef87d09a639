package instrument

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/willibrandon/mtlog/selflog"
	"go.opentelemetry.io/otel/trace"
)

// Log creates a decorator that logs each invocation of the wrapped function:
// an optional start event (ModeFull), a finish event on success, and an
// error event when the call returns a non-nil trailing error or panics.
// The wrapped function's return values and panics pass through unchanged.
//
// Invalid options cause a panic here or when the decorator is applied,
// never at invocation time.
func Log(opts *LogOptions) Decorator {
	if opts == nil {
		panic("instrument: options cannot be nil")
	}
	if err := opts.Validate(); err != nil {
		panic(fmt.Sprintf("instrument: invalid options: %v", err))
	}

	levelFunc := opts.LevelFunc
	if levelFunc == nil {
		levelFunc = defaultLevelFunc
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModePartial
	}

	return func(fn any) any {
		site, err := newCallSite(fn, opts.Name, opts.ParamNames, opts.Args, opts.Vars)
		if err != nil {
			panic(fmt.Sprintf("instrument: %v", err))
		}

		wrapper := reflect.MakeFunc(site.typ, func(in []reflect.Value) []reflect.Value {
			logger := opts.Logger
			ctx := site.contextOf(in)
			var callID string

			site.guard("enrichment", func() {
				if ctx != nil {
					logger = logger.WithContext(ctx)
				}
				if opts.GenerateCallID {
					callID = uuid.New().String()
					logger = logger.With("CallId", callID)
				}
				logger = site.enrich(logger, in)
			})

			var span trace.Span
			if opts.Tracer != nil {
				spanCtx, s := site.startSpan(opts.Tracer, ctx)
				span = s
				if ctx != nil {
					ctx = spanCtx
				}
			}

			// Context-aware functions see the call-scoped logger and call ID.
			if ctx != nil {
				ctx = context.WithValue(ctx, LoggerContextKey, logger)
				if callID != "" {
					ctx = context.WithValue(ctx, CallIDContextKey, callID)
				}
				in = site.withContext(in, ctx)
			}

			if opts.BeforeCall != nil {
				site.guard("BeforeCall", func() {
					opts.BeforeCall(site.name, logger)
				})
			}

			if mode == ModeFull {
				site.guard("logging", func() {
					logger.Write(levelFunc(nil), "Starting {Function}", site.name)
				})
			}

			start := time.Now()
			out, panicked, panicVal := site.call(in)
			elapsed := time.Since(start)

			if panicked {
				if selflog.IsEnabled() {
					selflog.Printf("[instrument] panic in %s: %v", site.name, panicVal)
				}
				if opts.Recorder != nil {
					site.guard("metrics", func() {
						opts.Recorder.RecordPanic(site.name)
					})
				}
				site.guard("logging", func() {
					logger.Error("Panic in {Function}: {Error}", site.name, fmt.Sprintf("%v", panicVal))
				})
				endSpanPanic(span, panicVal)
				panic(panicVal)
			}

			callErr := site.errorFrom(out)
			endSpan(span, callErr)

			if opts.Recorder != nil {
				site.guard("metrics", func() {
					opts.Recorder.RecordCall(site.name, callErr, elapsed)
				})
			}

			site.guard("logging", func() {
				if callErr != nil {
					logger.With("ErrorType", fmt.Sprintf("%T", callErr)).
						Write(levelFunc(callErr), "{Function} failed: {Error}", site.name, callErr.Error())
					return
				}
				finished := logger
				if opts.ResultField != "" && site.resultIdx >= 0 {
					finished = finished.With(opts.ResultField, out[site.resultIdx].Interface())
				}
				finished.Write(levelFunc(nil), "Finished {Function}", site.name)
			})

			if opts.AfterCall != nil {
				site.guard("AfterCall", func() {
					opts.AfterCall(site.name, callErr, elapsed, logger)
				})
			}

			return out
		})

		return wrapper.Interface()
	}
}

// LogFunc wraps fn with Log while preserving its static type.
func LogFunc[F any](opts *LogOptions, fn F) F {
	return Log(opts)(fn).(F)
}
