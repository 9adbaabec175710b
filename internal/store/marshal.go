package store

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/roach88/matcher/internal/predicate"
	"github.com/roach88/matcher/internal/schema"
)

// columnValue converts a model value to the value bound for its column.
// Booleans are stored as 1/0 and dates as epoch seconds, matching the
// literals sqlgen.Escape produces.
func columnValue(v any) (any, error) {
	v = predicate.Resolve(v)
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return val, nil
	case bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case time.Time:
		return epochSeconds(val), nil
	case *time.Time:
		if val == nil {
			return nil, nil
		}
		return epochSeconds(*val), nil
	case fmt.Stringer:
		return val.String(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil
	}
	return nil, fmt.Errorf("unsupported column value of type %T", v)
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000
}

// itemValue returns the join table value of a collection item: its id.
func itemValue(item any) (string, error) {
	id := predicate.Identity(predicate.Resolve(item))
	switch v := id.(type) {
	case string:
		return v, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), nil
	}
	return "", fmt.Errorf("collection item of type %T has no id", item)
}

// decodeColumn converts a scanned column back to a model value using the
// attribute type.
func decodeColumn(t schema.AttributeType, v any) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if v == nil {
		return nil
	}

	switch t {
	case schema.TypeBool:
		switch n := v.(type) {
		case int64:
			return n != 0
		case float64:
			return n != 0
		}
	case schema.TypeDate:
		switch n := v.(type) {
		case int64:
			return time.Unix(n, 0).UTC()
		case float64:
			return time.UnixMilli(int64(math.Round(n * 1000))).UTC()
		}
	}
	return v
}

// marshalClass serializes a class definition for the classes table.
func marshalClass(c *schema.Class) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal class: %w", err)
	}
	return string(data), nil
}

func unmarshalClass(def string) (*schema.Class, error) {
	var c schema.Class
	if err := json.Unmarshal([]byte(def), &c); err != nil {
		return nil, fmt.Errorf("unmarshal class: %w", err)
	}
	return &c, nil
}
