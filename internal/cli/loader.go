package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/matcher/internal/loader"
	"github.com/roach88/matcher/internal/predicate"
	"github.com/roach88/matcher/internal/schema"
	"github.com/roach88/matcher/internal/sqlgen"
	"github.com/roach88/matcher/internal/store"
)

// Error codes reported by CLI commands.
const (
	ErrCodeGeneric    = "E001"
	ErrCodeNoSchema   = "E003"
	ErrCodeLoadFailed = "E004"
	ErrCodeNotFound   = "E005"
	ErrCodeWriteError = "E007"

	ErrCodeUnsupportedComparator = "E101"
	ErrCodeNonStringArrayElement = "E102"
	ErrCodeNotImplemented        = "E103"
	ErrCodeTypeMismatch          = "E104"
	ErrCodeInvalidPredicate      = "E110"
	ErrCodeInvalidObject         = "E111"
	ErrCodeDatabase              = "E120"
)

// LoadError represents an error that occurred while loading command inputs.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSchema compiles the class declarations in dir.
func LoadSchema(dir string) (*schema.Schema, error) {
	if dir == "" {
		return nil, &LoadError{Code: ErrCodeNoSchema, Message: "--schema is required"}
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema directory not found: %s", dir)}
	}
	sch, err := schema.LoadDir(dir)
	if err != nil {
		le := &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
		var ce *schema.CompileError
		if errors.As(err, &ce) {
			le.Message = fmt.Sprintf("%s: %s", ce.Field, ce.Message)
			le.Pos = ce.Pos
		}
		return nil, le
	}
	return sch, nil
}

// LoadQuery reads a predicate document and builds it against sch.
func LoadQuery(path string, sch *schema.Schema, b *predicate.Builder) (*loader.Query, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("predicate file not found: %s", path)}
	}
	q, err := loader.LoadQuery(path, sch, b)
	if err != nil {
		if code, ok := predicateCode(err); ok {
			return nil, &LoadError{Code: code, Message: err.Error()}
		}
		return nil, &LoadError{Code: ErrCodeInvalidPredicate, Message: err.Error()}
	}
	return q, nil
}

// LoadObjects reads a JSON object document for class.
func LoadObjects(path string, class *schema.Class) ([]predicate.Fields, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("object file not found: %s", path)}
	}
	objects, err := loader.LoadObjects(path, class)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidObject, Message: err.Error()}
	}
	return objects, nil
}

// newBuilder returns a predicate builder using the allocator named by opts.
func newBuilder(opts *RootOptions) *predicate.Builder {
	switch opts.Allocator {
	case "cyclic":
		return predicate.NewBuilder(predicate.NewCyclicAllocator(predicate.LegacyAliasSpace))
	case "uuid":
		return predicate.NewBuilder(predicate.NewUUIDAllocator())
	default:
		return predicate.NewBuilder(predicate.NewSequentialAllocator())
	}
}

func compilerOptions(opts *RootOptions) []sqlgen.Option {
	if opts.Strict {
		return []sqlgen.Option{sqlgen.WithStrictStartsWith()}
	}
	return nil
}

func storeOptions(opts *RootOptions, f *OutputFormatter) []store.Option {
	storeOpts := []store.Option{store.WithLogger(f.Logger())}
	if opts.Strict {
		storeOpts = append(storeOpts, store.WithStrictStartsWith())
	}
	return storeOpts
}

// predicateCode maps predicate errors to their CLI codes.
func predicateCode(err error) (string, bool) {
	var pe *predicate.Error
	if !errors.As(err, &pe) {
		return "", false
	}
	switch pe.Code {
	case predicate.ErrCodeUnsupportedComparator:
		return ErrCodeUnsupportedComparator, true
	case predicate.ErrCodeNonStringArrayElement:
		return ErrCodeNonStringArrayElement, true
	case predicate.ErrCodeNotImplemented:
		return ErrCodeNotImplemented, true
	case predicate.ErrCodeTypeMismatch:
		return ErrCodeTypeMismatch, true
	}
	return ErrCodeGeneric, true
}

// errorCode returns the CLI code for err, or fallback when err carries none.
func errorCode(err error, fallback string) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	if code, ok := predicateCode(err); ok {
		return code
	}
	return fallback
}

// failWith reports err through f and returns a command error.
func failWith(f *OutputFormatter, err error, fallback string) error {
	return f.Fail(errorCode(err, fallback), err.Error(), nil)
}
