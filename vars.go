package instrument

import (
	"reflect"
	"strings"
)

// varsSelfPrefix is accepted (and stripped) at the start of attribute paths
// so call sites ported from instance-oriented code read naturally.
const varsSelfPrefix = "self."

func trimSelfPrefix(path string) string {
	return strings.TrimPrefix(path, varsSelfPrefix)
}

// resolvePath walks a dotted attribute path against root by sequential
// lookup: exported struct fields, string-keyed map entries, and
// zero-argument getter methods. It reports ok=false as soon as any segment
// is missing or nil; it never panics.
func resolvePath(root any, path string) (value any, ok bool) {
	defer func() {
		if recover() != nil {
			value, ok = nil, false
		}
	}()

	v := reflect.ValueOf(root)
	for _, segment := range strings.Split(trimSelfPrefix(path), ".") {
		var found bool
		v, found = resolveSegment(v, segment)
		if !found {
			return nil, false
		}
	}
	if !v.IsValid() || !v.CanInterface() {
		return nil, false
	}
	return v.Interface(), true
}

func resolveSegment(v reflect.Value, segment string) (reflect.Value, bool) {
	if !v.IsValid() {
		return reflect.Value{}, false
	}

	// Getter methods may hang off the pointer type, so try before unwrapping.
	if m, ok := getterMethod(v, segment); ok {
		return m, true
	}

	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		if f := v.FieldByName(segment); f.IsValid() && f.CanInterface() {
			return f, true
		}
	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String {
			key := reflect.ValueOf(segment).Convert(v.Type().Key())
			if entry := v.MapIndex(key); entry.IsValid() {
				return entry, true
			}
		}
	}

	return getterMethod(v, segment)
}

// getterMethod resolves a segment as a bound zero-argument method, the
// closest Go analogue of a computed attribute.
func getterMethod(v reflect.Value, segment string) (reflect.Value, bool) {
	m := v.MethodByName(segment)
	if !m.IsValid() {
		return reflect.Value{}, false
	}
	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() == 0 {
		return reflect.Value{}, false
	}
	return m.Call(nil)[0], true
}
