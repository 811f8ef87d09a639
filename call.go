package instrument

import (
	"context"
	"fmt"
	"reflect"

	"github.com/willibrandon/mtlog/core"
	"github.com/willibrandon/mtlog/selflog"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// callSite holds everything about a wrapped function that can be computed
// once, when the decorator is applied: the display name, the parameter
// naming, whether the function is context-aware, and where its error and
// result returns live.
type callSite struct {
	fn         reflect.Value
	typ        reflect.Type
	name       string
	paramNames []string
	argIndexes []selectedArg
	vars       []string
	hasCtx     bool
	varsRoot   int // parameter index Vars resolve against, -1 if none
	errIndex   int // index of the trailing error return, -1 if none
	resultIdx  int // index of the first non-error return, -1 if none
}

// selectedArg pairs a parameter name from Args with its position.
type selectedArg struct {
	name  string
	index int
}

// newCallSite analyzes fn against the configured naming. All mismatches are
// reported here so that misconfiguration surfaces when the decorator is
// applied, before the first invocation.
func newCallSite(fn any, name string, paramNames, args, vars []string) (*callSite, error) {
	if fn == nil {
		return nil, fmt.Errorf("function cannot be nil")
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("expected a function, got %s", t.Kind())
	}

	s := &callSite{
		fn:        v,
		typ:       t,
		name:      name,
		vars:      vars,
		varsRoot:  -1,
		errIndex:  -1,
		resultIdx: -1,
	}
	if s.name == "" {
		s.name = functionName(v)
	}

	s.hasCtx = t.NumIn() > 0 && t.In(0) == contextType

	if len(paramNames) > 0 {
		if len(paramNames) != t.NumIn() {
			return nil, fmt.Errorf("ParamNames declares %d names but %s has %d parameters",
				len(paramNames), s.name, t.NumIn())
		}
		s.paramNames = paramNames
	} else {
		s.paramNames = make([]string, t.NumIn())
		for i := range s.paramNames {
			if i == 0 && s.hasCtx {
				s.paramNames[i] = "ctx"
			} else {
				s.paramNames[i] = fmt.Sprintf("arg%d", i)
			}
		}
	}

	for _, arg := range args {
		idx := -1
		for i, pname := range s.paramNames {
			if pname == arg {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("Args name %q does not match any parameter of %s", arg, s.name)
		}
		s.argIndexes = append(s.argIndexes, selectedArg{name: arg, index: idx})
	}

	first := 0
	if s.hasCtx {
		first = 1
	}
	if first < t.NumIn() {
		s.varsRoot = first
	}
	if len(vars) > 0 && s.varsRoot < 0 {
		return nil, fmt.Errorf("Vars configured but %s has no argument to resolve them against", s.name)
	}

	if n := t.NumOut(); n > 0 && t.Out(n-1) == errorType {
		s.errIndex = n - 1
	}
	if t.NumOut() > 0 && s.errIndex != 0 {
		s.resultIdx = 0
	}

	return s, nil
}

// call invokes the wrapped function, reporting a panic instead of letting
// it unwind so the caller can log before re-raising it.
func (s *callSite) call(in []reflect.Value) (out []reflect.Value, panicked bool, panicVal any) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			panicVal = r
		}
	}()
	if s.typ.IsVariadic() {
		out = s.fn.CallSlice(in)
	} else {
		out = s.fn.Call(in)
	}
	return out, false, nil
}

// errorFrom extracts the trailing error return, if the function has one.
func (s *callSite) errorFrom(out []reflect.Value) error {
	if s.errIndex < 0 || out[s.errIndex].IsNil() {
		return nil
	}
	return out[s.errIndex].Interface().(error)
}

// contextOf returns the call's context argument, or nil for plain functions.
func (s *callSite) contextOf(in []reflect.Value) context.Context {
	if !s.hasCtx || in[0].IsNil() {
		return nil
	}
	return in[0].Interface().(context.Context)
}

// withContext returns a copy of the argument list with the context replaced.
func (s *callSite) withContext(in []reflect.Value, ctx context.Context) []reflect.Value {
	swapped := make([]reflect.Value, len(in))
	copy(swapped, in)
	swapped[0] = reflect.ValueOf(ctx)
	return swapped
}

// enrich attaches the selected argument values and resolved attribute paths
// to the logger. Resolution failures degrade to omitting the property.
func (s *callSite) enrich(logger core.Logger, in []reflect.Value) core.Logger {
	for _, arg := range s.argIndexes {
		logger = logger.With(arg.name, in[arg.index].Interface())
	}
	if len(s.vars) > 0 && s.varsRoot >= 0 {
		root := in[s.varsRoot].Interface()
		for _, path := range s.vars {
			if value, ok := resolvePath(root, path); ok {
				logger = logger.With(trimSelfPrefix(path), value)
			} else if selflog.IsEnabled() {
				selflog.Printf("[instrument] could not resolve %q for %s", path, s.name)
			}
		}
	}
	return logger
}

// guard confines instrumentation failures so they never alter the call's
// outcome. This is the one place the package deliberately swallows a panic.
func (s *callSite) guard(stage string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			if selflog.IsEnabled() {
				selflog.Printf("[instrument] %s failed for %s: %v", stage, s.name, r)
			}
		}
	}()
	f()
}
