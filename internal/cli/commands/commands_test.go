package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantOut []string
	}{
		{
			name:    "default version",
			version: "0.1.0",
			wantOut: []string{"squint v0.1.0", "Quantum control compiler"},
		},
		{
			name:    "dev version",
			version: "dev",
			wantOut: []string{"squint vdev"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.version)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)

			err := cmd.Execute()
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			output := buf.String()
			for _, want := range tt.wantOut {
				if !strings.Contains(output, want) {
					t.Errorf("output should contain %q, got: %s", want, output)
				}
			}
		})
	}
}

func TestNewCompileCommand(t *testing.T) {
	cmd := NewCompileCommand()

	assert.Equal(t, "compile <file>...", cmd.Use)
	assert.Contains(t, cmd.Aliases, "build")
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	for _, flag := range []string{"simulate", "stdout", "output"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewSimulateCommand(t *testing.T) {
	cmd := NewSimulateCommand()

	assert.Equal(t, "simulate <file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("json"), "flag json should exist")
}

func TestNewInspectCommand(t *testing.T) {
	cmd := NewInspectCommand()

	assert.Equal(t, "inspect <file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("overlays"), "flag overlays should exist")
}

func TestNewRunsCommand(t *testing.T) {
	cmd := NewRunsCommand()

	assert.Equal(t, "runs", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("limit"), "flag limit should exist")
}

func TestNewWatchCommand(t *testing.T) {
	cmd := NewWatchCommand()

	assert.Equal(t, "watch <dir>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("simulate"), "flag simulate should exist")
}

func TestNewREPLCommand(t *testing.T) {
	cmd := NewREPLCommand()

	assert.Equal(t, "repl", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestStatementCompleterVerbs(t *testing.T) {
	names := map[string]bool{}
	for _, item := range newStatementCompleter().GetChildren() {
		names[strings.TrimSpace(string(item.GetName()))] = true
	}

	for _, verb := range []string{"ctrl", "measure", "nucleate", "pin", "anneal", "evolve"} {
		assert.True(t, names[verb], "completer should offer %q", verb)
	}
}
