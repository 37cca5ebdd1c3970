// Package main provides tests for the tabkit CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tabkit-labs/tabkit/internal/cli"
	"github.com/tabkit-labs/tabkit/pkg/table"
	"github.com/tabkit-labs/tabkit/pkg/value"
)

// writePeaksTable stores a small sample table and returns its path.
func writePeaksTable(t *testing.T) string {
	t.Helper()

	tab, err := table.New(
		[]string{"id", "mz", "name"},
		[]value.ColType{value.TypeInt, value.TypeFloat, value.TypeString},
		[]string{"%d", "%.5f", "%s"},
		[][]any{
			{int64(1), 507.81, "alpha"},
			{int64(2), 389.95, "beta"},
			{int64(3), 271.11, "gamma"},
		},
	)
	if err != nil {
		t.Fatalf("failed to build sample table: %v", err)
	}

	path := filepath.Join(t.TempDir(), "peaks.table")
	if err := tab.Store(path); err != nil {
		t.Fatalf("failed to store sample table: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "tabkit") {
		t.Errorf("version output should contain 'tabkit', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	output := buf.String()
	expectedCommands := []string{"show", "info", "convert", "version", "completion"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestShowCommand(t *testing.T) {
	path := writePeaksTable(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"show", path})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("show command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "alpha") {
		t.Errorf("show output should contain 'alpha', got: %s", output)
	}
	if !strings.Contains(output, "(3 rows)") {
		t.Errorf("show output should contain '(3 rows)', got: %s", output)
	}
}

func TestShowCommandMaxRows(t *testing.T) {
	path := writePeaksTable(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"show", path, "--max-rows", "2"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("show --max-rows command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "...") {
		t.Errorf("show output should elide rows with '...', got: %s", output)
	}
	if !strings.Contains(output, "(3 rows)") {
		t.Errorf("show output should report the full row count, got: %s", output)
	}
}

func TestShowCommandJSONOutput(t *testing.T) {
	path := writePeaksTable(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"show", path, "--output", "json"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("show --output json command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"name": "alpha"`) {
		t.Errorf("json output should contain rows, got: %s", output)
	}
}

func TestShowCommandVerbose(t *testing.T) {
	path := writePeaksTable(t)

	cmd := cli.NewRootCmd()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{"show", path, "--verbose"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("show --verbose command error = %v", err)
	}

	if !strings.Contains(errBuf.String(), "table loaded") {
		t.Errorf("verbose run should log the load, got: %s", errBuf.String())
	}
}

func TestInfoCommand(t *testing.T) {
	path := writePeaksTable(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"info", path})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("info command error = %v", err)
	}

	output := buf.String()
	for _, expected := range []string{"Unique ID:", "Rows:      3", "mz", "float"} {
		if !strings.Contains(output, expected) {
			t.Errorf("info output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestConvertCommand(t *testing.T) {
	src := writePeaksTable(t)
	dst := filepath.Join(t.TempDir(), "peaks.csv")

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"convert", src, dst})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("convert command error = %v", err)
	}

	if !strings.Contains(buf.String(), "Wrote ") {
		t.Errorf("convert output should report the written file, got: %s", buf.String())
	}

	loaded, err := table.LoadCSV(dst)
	if err != nil {
		t.Fatalf("failed to load converted file: %v", err)
	}
	if loaded.Len() != 3 {
		t.Errorf("converted table rows = %d, want 3", loaded.Len())
	}
}

func TestInvalidOutputFlag(t *testing.T) {
	path := writePeaksTable(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"show", path, "--output", "xml"})

	err := cmd.Execute()
	if err == nil {
		t.Error("invalid output format should return an error")
	} else if !strings.Contains(err.Error(), "invalid output format") {
		t.Errorf("error should mention the invalid format, got: %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	shells := []string{"bash", "zsh", "fish", "powershell"}

	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			cmd := cli.NewRootCmd()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs([]string{"completion", shell})

			err := cmd.Execute()
			if err != nil {
				t.Errorf("completion %s command error = %v", shell, err)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"unknown-command"})

	err := cmd.Execute()
	if err == nil {
		t.Error("unknown command should return an error")
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
