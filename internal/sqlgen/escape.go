package sqlgen

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/matcher/internal/predicate"
)

// singleQuoteEscape is the SQL-standard escape for a quote inside a literal.
const singleQuoteEscape = "''"

// Quote renders s as a single-quoted SQL string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", singleQuoteEscape) + "'"
}

// Unquote reverses Quote.
func Unquote(lit string) (string, error) {
	if len(lit) < 2 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		return "", fmt.Errorf("not a quoted literal: %s", lit)
	}
	body := lit[1 : len(lit)-1]
	if strings.Contains(strings.ReplaceAll(body, singleQuoteEscape, ""), "'") {
		return "", fmt.Errorf("unescaped quote in literal: %s", lit)
	}
	return strings.ReplaceAll(body, singleQuoteEscape, "'"), nil
}

// QuoteIdent renders name as a backtick-quoted identifier.
func QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Escape renders value as a SQL literal. jsonKey names the attribute in
// NonStringArrayElement errors.
func Escape(value any, jsonKey string) (string, error) {
	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case string:
		return Quote(v), nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case time.Time:
		return EpochSeconds(v), nil
	case *time.Time:
		if v == nil {
			return "NULL", nil
		}
		return EpochSeconds(*v), nil
	case []string:
		return escapeList(v), nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		elems := make([]string, rv.Len())
		for i := range elems {
			elem := rv.Index(i).Interface()
			s, ok := elem.(string)
			if !ok {
				return "", predicate.NewNonStringArrayElementError(jsonKey, elem)
			}
			elems[i] = s
		}
		return escapeList(elems), nil
	}
	return fmt.Sprint(value), nil
}

func isList(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
}

func escapeList(elems []string) string {
	quoted := make([]string, len(elems))
	for i, e := range elems {
		quoted[i] = Quote(e)
	}
	return "(" + strings.Join(quoted, ",") + ")"
}

// EpochSeconds renders t as Unix seconds, keeping millisecond precision
// when present (e.g. 1700000000.25).
func EpochSeconds(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMilli())/1000, 'f', -1, 64)
}
