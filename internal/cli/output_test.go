package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/loader"
	"github.com/roach88/embody/internal/store"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E001", "template not embodied", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Equal(t, "template not embodied", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]any{"names": []string{"host", "port"}}
	err := formatter.Error("E201", "missing required parameters", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("cycles: none")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "cycles: none")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E001", "template not embodied", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "template not embodied")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]any{"path": "/a/b"}
	err := formatter.Error("E001", "template not embodied", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Loaded %s", "params.yaml")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Loaded params.yaml")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestOutputFormatter_JSONKeepsMarkers(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("E201", "missing ${host} & <port>", nil))
	assert.Contains(t, buf.String(), "missing ${host} & <port>")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "bad flag"))))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"missing", errdefs.NewMissingParameter("a"), ErrCodeMissingParameter, ExitFailure},
		{"cycle", errdefs.NewCycle("/a"), ErrCodeCycle, ExitFailure},
		{"collision", errdefs.NewKeyCollision("k"), ErrCodeKeyCollision, ExitFailure},
		{"path not found", errdefs.NewPathNotFound("/x"), ErrCodePathNotFound, ExitFailure},
		{"invalid path", errdefs.NewInvalidPath("x", "must start with /"), ErrCodeInvalidPath, ExitCommandError},
		{"invalid config", errdefs.NewInvalidConfig("bad"), ErrCodeInvalidConfig, ExitCommandError},
		{"wrapped", fmt.Errorf("render: %w", errdefs.NewCycle("/a")), ErrCodeCycle, ExitFailure},
		{"not exist", fmt.Errorf("reading x: %w", os.ErrNotExist), ErrCodeNotFound, ExitCommandError},
		{"format", fmt.Errorf("x.txt: %w", loader.ErrUnsupportedFormat), ErrCodeLoadFailed, ExitCommandError},
		{"not a store", store.ErrNotParamStore, ErrCodeLoadFailed, ExitCommandError},
		{"decode", fmt.Errorf("t.json: %w: %w", loader.ErrDecode, errors.New("EOF")), ErrCodeLoadFailed, ExitCommandError},
		{"config file", fmt.Errorf("c.yaml: %w: %w", ErrConfigFile, errors.New("field x not found")), ErrCodeLoadFailed, ExitCommandError},
		{"other", errors.New("boom"), ErrCodeGeneric, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, exit := Classify(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantExit, exit)
		})
	}
}

func TestOutputFormatter_FailMissingParameter(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Fail(errdefs.NewMissingParameter("port", "host"))
	require.Error(t, err)
	assert.True(t, Reported(err))
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, errdefs.IsMissingParameter(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				Names []string `json:"names"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeMissingParameter, resp.Error.Code)
	assert.Equal(t, []string{"host", "port"}, resp.Error.Details.Names)
}

func TestOutputFormatter_FailCycleText(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	err := formatter.Fail(errdefs.NewCycle("/a/b"))
	assert.True(t, Reported(err))
	assert.Contains(t, buf.String(), "Error [E202]")
	assert.Contains(t, buf.String(), "Details: map[path:/a/b]")
}

func TestReported(t *testing.T) {
	assert.False(t, Reported(nil))
	assert.False(t, Reported(errors.New("boom")))
	assert.False(t, Reported(NewExitError(ExitFailure, "x")))
}

func TestOutputFormatter_FailCode(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	cause := os.ErrPermission
	err := formatter.FailCode(ExitCommandError, ErrCodeWriteFailed, fmt.Errorf("failed to write output: %w", cause))
	assert.True(t, Reported(err))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Error [E007]: failed to write output: permission denied\n", buf.String())
}
