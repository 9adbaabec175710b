package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// CompileError reports an invalid class declaration.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadDir loads every class declared under the `class` field of the CUE
// package in dir.
func LoadDir(dir string) (*Schema, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("schema directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	if err := instances[0].Err; err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", err)
	}

	value := ctx.BuildInstance(instances[0])
	return Compile(value)
}

// LoadFiles compiles and unifies individual CUE files. Files need not share
// a package clause.
func LoadFiles(paths ...string) (*Schema, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no CUE files given")
	}

	ctx := cuecontext.New()
	var value cue.Value
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading schema file: %w", err)
		}
		v := ctx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		if i == 0 {
			value = v
		} else {
			value = value.Unify(v)
		}
	}
	return Compile(value)
}

// LoadString compiles CUE source text into a schema.
func LoadString(src string) (*Schema, error) {
	ctx := cuecontext.New()
	return Compile(ctx.CompileString(src))
}

// Compile extracts every class under the `class` field of v.
func Compile(v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	classesVal := v.LookupPath(cue.ParsePath("class"))
	if !classesVal.Exists() {
		return nil, &CompileError{Field: "class", Message: "no classes declared", Pos: v.Pos()}
	}

	iter, err := classesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	s := NewSchema()
	for iter.Next() {
		c, err := CompileClass(iter.Value())
		if err != nil {
			return nil, err
		}
		s.Add(c)
	}
	return s, nil
}

// CompileClass parses a single class struct, e.g. the value at `class.Thread`.
// The class name is taken from the last path selector.
func CompileClass(v cue.Value) (*Class, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	c := &Class{}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		c.Name = sels[len(sels)-1].Unquoted()
	}
	if c.Name == "" {
		return nil, &CompileError{Field: "class", Message: "class name is required", Pos: v.Pos()}
	}

	attrsVal := v.LookupPath(cue.ParsePath("attributes"))
	if !attrsVal.Exists() {
		return nil, &CompileError{Field: "attributes", Message: "at least one attribute is required", Pos: v.Pos()}
	}

	iter, err := attrsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		a, err := compileAttribute(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		c.Attributes = append(c.Attributes, a)
	}
	if len(c.Attributes) == 0 {
		return nil, &CompileError{Field: "attributes", Message: "at least one attribute is required", Pos: v.Pos()}
	}
	return c, nil
}

func compileAttribute(key string, v cue.Value) (Attribute, error) {
	a := Attribute{ModelKey: key, JSONKey: key, Type: TypeString}

	if t, ok, err := optionalString(v, "type"); err != nil {
		return a, err
	} else if ok {
		a.Type = AttributeType(t)
	}
	if !a.Type.IsValid() {
		return a, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("attribute %s: invalid type %q (must be one of %v)", key, a.Type, ValidTypes),
			Pos:     v.Pos(),
		}
	}

	if col, ok, err := optionalString(v, "column"); err != nil {
		return a, err
	} else if ok {
		a.JSONKey = col
	}

	item, ok, err := optionalString(v, "item")
	if err != nil {
		return a, err
	}
	if ok {
		a.ItemClass = item
	}
	if a.Type == TypeCollection && a.ItemClass == "" {
		return a, &CompileError{
			Field:   "item",
			Message: fmt.Sprintf("collection attribute %s requires an item class", key),
			Pos:     v.Pos(),
		}
	}
	if a.ItemClass != "" {
		a.Type = TypeCollection
	}
	return a, nil
}

func optionalString(v cue.Value, field string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", false, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", false, formatCUEError(err)
	}
	return s, true, nil
}

// formatCUEError keeps the first position CUE reports.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
