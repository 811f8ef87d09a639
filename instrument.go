// Package instrument provides function decorators for automatic call logging
// and timing with mtlog. It wraps arbitrary function values while preserving
// their exact signatures, so instrumented functions are drop-in replacements
// for the originals.
//
// Two factories are provided: Log, which emits structured events describing
// each invocation and its outcome, and Timer, which measures wall-clock
// duration. Both return a Decorator that accepts any function value and
// returns a wrapper of the identical type:
//
//	fetch := instrument.Log(instrument.DefaultLogOptions(logger))(svc.Fetch).(func(context.Context, string) (Page, error))
//
// or, keeping static types, via the generic façades:
//
//	fetch := instrument.LogFunc(instrument.DefaultLogOptions(logger), svc.Fetch)
//
// Functions whose first parameter is a context.Context are treated as
// context-aware: the enriched logger and the generated call ID are injected
// into the context passed on to the wrapped function, where they can be
// retrieved with FromContext and CallIDFromContext.
//
// Go reflection does not expose parameter names, so LogOptions.ParamNames
// declares them positionally; without it parameters are addressed as
// arg0..argN (ctx for a leading context).
package instrument

import (
	"context"
	"reflect"
	"runtime"
	"strings"

	"github.com/willibrandon/mtlog/core"
)

// Decorator wraps a function value, returning a new function of the
// identical type with added instrumentation.
type Decorator func(fn any) any

// contextKey is a type for context keys used by this package
type contextKey string

const (
	// LoggerContextKey is used to store the call-scoped logger in context
	LoggerContextKey contextKey = "instrument.logger"
	// CallIDContextKey is used to store the call ID in context
	CallIDContextKey contextKey = "instrument.call_id"
)

// FromContext retrieves the call-scoped logger from the context.
// It returns nil when the function was not invoked through a Log wrapper.
func FromContext(ctx context.Context) core.Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(core.Logger); ok {
		return logger
	}
	return nil
}

// CallIDFromContext retrieves the call ID from the context.
func CallIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(CallIDContextKey).(string); ok {
		return id
	}
	return ""
}

// functionName derives a display name from the function's runtime symbol,
// e.g. "(*Service).Fetch" or "Fetch". Method values carry a "-fm" suffix
// which is stripped.
func functionName(fn reflect.Value) string {
	rf := runtime.FuncForPC(fn.Pointer())
	if rf == nil {
		return "func"
	}
	name := strings.TrimSuffix(rf.Name(), "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "func"
	}
	return name
}
