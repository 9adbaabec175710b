package loader

import (
	"fmt"
	"math"
	"time"

	"github.com/roach88/matcher/internal/schema"
)

// dateLayouts are the accepted textual date formats, tried in order.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// coerce converts a decoded document value to the Go representation used
// for the attribute's type. Lists are coerced element-wise.
func coerce(attr schema.Attribute, v any) (any, error) {
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		for i, e := range list {
			c, err := coerce(attr, e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	}

	switch attr.Type {
	case schema.TypeDate:
		return parseDate(v)
	case schema.TypeNumber:
		switch n := v.(type) {
		case nil, int, int64, float64:
			return n, nil
		}
		return nil, fmt.Errorf("%s: expected a number, got %T", attr, v)
	case schema.TypeBool:
		switch b := v.(type) {
		case nil, bool:
			return b, nil
		}
		return nil, fmt.Errorf("%s: expected a bool, got %T", attr, v)
	}
	return v, nil
}

func parseDate(v any) (any, error) {
	switch d := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return d, nil
	case int:
		return time.Unix(int64(d), 0).UTC(), nil
	case int64:
		return time.Unix(d, 0).UTC(), nil
	case float64:
		return time.UnixMilli(int64(math.Round(d * 1000))).UTC(), nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("invalid date %q", d)
	}
	return nil, fmt.Errorf("expected a date, got %T", v)
}
