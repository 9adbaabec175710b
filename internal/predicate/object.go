package predicate

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Object is anything a predicate can read attribute values from.
type Object interface {
	// Lookup returns the value stored under an attribute's model key.
	Lookup(key string) (any, bool)
}

// Fields is an Object backed by a map.
type Fields map[string]any

// Lookup implements Object.
func (f Fields) Lookup(key string) (any, bool) {
	v, ok := f[key]
	return v, ok
}

// ObjectFunc adapts a function to Object.
type ObjectFunc func(key string) (any, bool)

// Lookup implements Object.
func (f ObjectFunc) Lookup(key string) (any, bool) { return f(key) }

// Thunk is a computed property. Evaluate calls it once per evaluation and
// never caches the result.
type Thunk func() any

// Identifier is implemented by items matched by identity in contains and
// containsAny.
type Identifier interface {
	ID() string
}

// ObjectOf adapts v to Object.
//
// Maps with string keys are read directly. Structs (or pointers to structs)
// are read by `json` tag name, then exact field name, then a field whose
// name matches key case-insensitively. If no field matches, an exported
// zero-argument method named after key (first letter upper-cased) is
// returned as a Thunk.
func ObjectOf(v any) Object {
	switch o := v.(type) {
	case Object:
		return o
	case map[string]any:
		return Fields(o)
	}
	return reflectObject{v: reflect.ValueOf(v)}
}

type reflectObject struct {
	v reflect.Value
}

func (o reflectObject) Lookup(key string) (any, bool) {
	v := o.v
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, false
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		if f, ok := structField(v, key); ok {
			return f.Interface(), true
		}
	}

	if m, ok := zeroArgMethod(o.v, key); ok {
		return Thunk(func() any { return m.Call(nil)[0].Interface() }), true
	}
	return nil, false
}

func structField(v reflect.Value, key string) (reflect.Value, bool) {
	t := v.Type()
	var byName, byFold reflect.Value
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if name, _, _ := strings.Cut(sf.Tag.Get("json"), ","); name == key {
			return v.Field(i), true
		}
		if sf.Name == key && !byName.IsValid() {
			byName = v.Field(i)
		}
		if strings.EqualFold(sf.Name, key) && !byFold.IsValid() {
			byFold = v.Field(i)
		}
	}
	if byName.IsValid() {
		return byName, true
	}
	if byFold.IsValid() {
		return byFold, true
	}
	return reflect.Value{}, false
}

func zeroArgMethod(v reflect.Value, key string) (reflect.Value, bool) {
	if !v.IsValid() || key == "" {
		return reflect.Value{}, false
	}
	r, size := utf8.DecodeRuneInString(key)
	m := v.MethodByName(string(unicode.ToUpper(r)) + key[size:])
	if !m.IsValid() {
		return reflect.Value{}, false
	}
	if mt := m.Type(); mt.NumIn() != 0 || mt.NumOut() != 1 {
		return reflect.Value{}, false
	}
	return m, true
}

// Resolve returns v, or the result of calling it when v is a Thunk or any
// other zero-argument function with a single result.
func Resolve(v any) any {
	switch f := v.(type) {
	case nil:
		return nil
	case Thunk:
		return f()
	case func() any:
		return f()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Func && !rv.IsNil() {
		if t := rv.Type(); t.NumIn() == 0 && t.NumOut() == 1 {
			return rv.Call(nil)[0].Interface()
		}
	}
	return v
}

// Identity returns the id of an item for contains matching. Items with no
// usable id (or a zero id) are their own identity.
func Identity(v any) any {
	switch item := v.(type) {
	case nil:
		return nil
	case Identifier:
		if id := item.ID(); id != "" {
			return id
		}
		return v
	case map[string]any:
		if id, ok := item["id"]; ok && !isZero(id) {
			return id
		}
		return v
	case Fields:
		if id, ok := item["id"]; ok && !isZero(id) {
			return id
		}
		return v
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return v
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		if f, ok := structField(rv, "id"); ok && !f.IsZero() {
			return f.Interface()
		}
	}
	return v
}

func isZero(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}

// Sequence returns the elements of a slice or array. nil is an empty
// sequence; strings are not sequences.
func Sequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case nil:
		return nil, true
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
