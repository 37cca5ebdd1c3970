package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedPeaks(t *testing.T) string {
	t.Helper()
	tab := samplePeaks(t)
	tab.SetTitle("peaks")
	tab.SetMeta("origin", "import")

	path := filepath.Join(t.TempDir(), "peaks.table")
	require.NoError(t, tab.Store(path))
	return path
}

func TestInfoCommand_Text(t *testing.T) {
	path := storedPeaks(t)

	cmd := NewInfoCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Table: peaks")
	assert.Contains(t, output, "Rows:      3")
	assert.Contains(t, output, "Columns:   3")
	assert.Contains(t, output, "Unique ID:")
	assert.Contains(t, output, "Source:")
	assert.Contains(t, output, "mz")
	assert.Contains(t, output, "float")
	assert.Contains(t, output, "%.5f")
	assert.Contains(t, output, "Origin: import")
}

func TestInfoCommand_JSON(t *testing.T) {
	path := storedPeaks(t)

	require.NoError(t, os.Setenv("TABKIT_OUTPUT", "json"))
	defer func() { _ = os.Unsetenv("TABKIT_OUTPUT") }()

	cmd := NewInfoCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, `"title": "peaks"`)
	assert.Contains(t, output, `"rows": 3`)
	assert.Contains(t, output, `"unique_id"`)
	assert.Contains(t, output, `"name": "mz"`)
	assert.Contains(t, output, `"type": "float"`)
	assert.Contains(t, output, `"origin": "import"`)
}

func TestInfoCommand_UntitledTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.table")
	require.NoError(t, samplePeaks(t).Store(path))

	cmd := NewInfoCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Table: (untitled)")
}

func TestNewInfoCommand(t *testing.T) {
	cmd := NewInfoCommand()

	assert.Equal(t, "info <file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("table"), "flag \"table\" should exist")
}
