package predicate

import (
	"cmp"
	"math"
	"reflect"
	"strings"
	"time"
)

// compareValues orders a and b. ok is false when the pair has no natural
// order (mismatched kinds, nil, NaN, collections). Dates compare at
// millisecond precision.
func compareValues(a, b any) (int, bool) {
	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok && !an.isNaN() && !bn.isNaN() {
			return an.compare(bn), true
		}
		return 0, false
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), true
		}
	case time.Time:
		// Dates are stored and compiled with millisecond precision.
		if bv, ok := b.(time.Time); ok {
			return cmp.Compare(av.UnixMilli(), bv.UnixMilli()), true
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return cmp.Compare(boolRank(av), boolRank(bv)), true
		}
	}
	return 0, false
}

// equalValues is strict equality: no coercion between strings, numbers and
// booleans. Numbers of different Go kinds compare by value; NaN equals
// nothing.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if c, ok := compareValues(a, b); ok {
		return c == 0
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	// A comparable type may still hold uncomparable values in interface
	// fields.
	if !reflect.ValueOf(a).Comparable() || !reflect.ValueOf(b).Comparable() {
		return false
	}
	return a == b
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

type numberKind uint8

const (
	signedNumber numberKind = iota
	unsignedNumber
	floatNumber
)

type number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

func toNumber(v any) (number, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{kind: signedNumber, i: rv.Int(), f: float64(rv.Int())}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{kind: unsignedNumber, u: rv.Uint(), f: float64(rv.Uint())}, true
	case reflect.Float32, reflect.Float64:
		return number{kind: floatNumber, f: rv.Float()}, true
	default:
		return number{}, false
	}
}

func (n number) isNaN() bool {
	return n.kind == floatNumber && math.IsNaN(n.f)
}

func (n number) compare(o number) int {
	switch {
	case n.kind == signedNumber && o.kind == signedNumber:
		return cmp.Compare(n.i, o.i)
	case n.kind == unsignedNumber && o.kind == unsignedNumber:
		return cmp.Compare(n.u, o.u)
	case n.kind == signedNumber && o.kind == unsignedNumber:
		if n.i < 0 {
			return -1
		}
		return cmp.Compare(uint64(n.i), o.u)
	case n.kind == unsignedNumber && o.kind == signedNumber:
		return -o.compare(n)
	default:
		return cmp.Compare(n.f, o.f)
	}
}
