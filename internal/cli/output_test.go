package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_SuccessJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]string{"where": "`T`.`count` > 1"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	// HTML escaping is off so operators stay readable.
	assert.Contains(t, buf.String(), "> 1")
}

func TestOutputFormatter_SuccessText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Success("done"))
	assert.Equal(t, "done\n", buf.String())
}

func TestOutputFormatter_ErrorJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error(ErrCodeNotImplemented, "startsWith has no SQL form", map[string]string{"attribute": "subject"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E103", resp.Error.Code)
	assert.Equal(t, "startsWith has no SQL form", resp.Error.Message)
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Error(ErrCodeGeneric, "boom", "ignored unless verbose"))
	assert.Equal(t, "Error [E001]: boom\n", buf.String())

	buf.Reset()
	f.Verbose = true
	require.NoError(t, f.Error(ErrCodeGeneric, "boom", "context"))
	assert.Contains(t, buf.String(), "Details: context")
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	err := f.Fail(ErrCodeNotFound, "missing", nil)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E005]: missing")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut}

	f.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	f.Verbose = true
	f.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
	assert.Empty(t, out.String())
}

func TestOutputFormatter_GetErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	f := &OutputFormatter{Writer: out}
	assert.Same(t, out, f.GetErrWriter())

	errOut := &bytes.Buffer{}
	f.ErrWriter = errOut
	assert.Same(t, errOut, f.GetErrWriter())
}

func TestOutputFormatter_Logger(t *testing.T) {
	errOut := &bytes.Buffer{}
	f := &OutputFormatter{Writer: &bytes.Buffer{}, ErrWriter: errOut}

	f.Logger().Debug("executing query", "sql", "SELECT 1")
	assert.Empty(t, errOut.String())

	f.Verbose = true
	f.Logger().Debug("executing query", "sql", "SELECT 1")
	assert.Contains(t, errOut.String(), "executing query")
	assert.Contains(t, errOut.String(), `sql="SELECT 1"`)
}

func TestExitError(t *testing.T) {
	err := NewExitError(ExitFailure, "no match")
	assert.Equal(t, "no match", err.Error())
	assert.Nil(t, err.Unwrap())

	cause := errors.New("disk full")
	wrapped := WrapExitError(ExitCommandError, "insert failed", cause)
	assert.Equal(t, "insert failed: disk full", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "bad"))))
}
