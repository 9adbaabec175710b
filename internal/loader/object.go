package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/roach88/matcher/internal/predicate"
	"github.com/roach88/matcher/internal/schema"
)

// ParseObjects decodes a JSON object or array of objects into Fields.
// Keys are model keys. Values of declared attributes are coerced to the
// attribute type; dates may be RFC 3339 strings or epoch seconds.
// Undeclared keys are kept as decoded.
func ParseObjects(data []byte, class *schema.Class) ([]predicate.Fields, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty object document")
	}

	var raw []map[string]any
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	} else {
		var one map[string]any
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		raw = append(raw, one)
	}

	objects := make([]predicate.Fields, 0, len(raw))
	for i, m := range raw {
		obj, err := toFields(m, class)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// ParseObject decodes a single JSON object.
func ParseObject(data []byte, class *schema.Class) (predicate.Fields, error) {
	objects, err := ParseObjects(data, class)
	if err != nil {
		return nil, err
	}
	if len(objects) != 1 {
		return nil, fmt.Errorf("expected one object, got %d", len(objects))
	}
	return objects[0], nil
}

// LoadObjects reads a JSON object document.
func LoadObjects(path string, class *schema.Class) ([]predicate.Fields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read object file: %w", err)
	}
	objects, err := ParseObjects(data, class)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return objects, nil
}

// LoadObject reads a JSON document holding exactly one object.
func LoadObject(path string, class *schema.Class) (predicate.Fields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read object file: %w", err)
	}
	obj, err := ParseObject(data, class)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obj, nil
}

// Objects converts decoded records, e.g. from a scenario file, into Fields.
func Objects(records []map[string]any, class *schema.Class) ([]predicate.Fields, error) {
	out := make([]predicate.Fields, 0, len(records))
	for i, m := range records {
		obj, err := toFields(m, class)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		out = append(out, obj)
	}
	return out, nil
}

func toFields(m map[string]any, class *schema.Class) (predicate.Fields, error) {
	obj := make(predicate.Fields, len(m))
	for k, v := range m {
		attr, ok := class.Attribute(k)
		if !ok || attr.IsCollection() {
			obj[k] = v
			continue
		}
		c, err := coerce(attr, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		obj[k] = c
	}
	return obj, nil
}
