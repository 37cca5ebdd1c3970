package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	tab := newSampleTable(t)
	var buf bytes.Buffer

	tab.Print(&buf)
	out := buf.String()

	for _, want := range []string{"a", "b", "c", "int", "float", "str"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "1.50", "float cells render through their format")
	assert.Contains(t, out, "-", "missing cells render as a dash")
	assert.True(t, strings.HasSuffix(out, "(3 rows)\n"))
}

func TestPrintTitle(t *testing.T) {
	tab := newSampleTable(t)
	tab.SetTitle("peaks")
	var buf bytes.Buffer

	tab.Print(&buf)
	assert.Contains(t, buf.String(), "peaks")
}

func TestPrintSkipsHiddenColumns(t *testing.T) {
	tab := newSampleTable(t)
	require.NoError(t, tab.SetColFormat("b", ""))
	var buf bytes.Buffer

	tab.Print(&buf)
	assert.NotContains(t, buf.String(), "2.5")

	buf.Reset()
	tab.Print(&buf, WithAllColumns())
	assert.Contains(t, buf.String(), "2.5")
}

func TestPrintMaxRowsElidesMiddle(t *testing.T) {
	ids := make([]int, 10)
	for i := range ids {
		ids[i] = i
	}
	tab, err := FromSlice("id", ids)
	require.NoError(t, err)
	var buf bytes.Buffer

	tab.Print(&buf, WithMaxRows(4))
	out := buf.String()

	assert.Contains(t, out, "...")
	for _, want := range []string{"0", "1", "8", "9"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "5")
	assert.True(t, strings.HasSuffix(out, "(10 rows)\n"))
}

func TestPrintEmptyTable(t *testing.T) {
	tab := newSampleTable(t)
	empty := tab.EmptyClone()
	var buf bytes.Buffer

	empty.Print(&buf)
	assert.True(t, strings.HasSuffix(buf.String(), "(0 rows)\n"))
}

func TestInfo(t *testing.T) {
	tab := newSampleTable(t)
	tab.SetTitle("peaks")
	var buf bytes.Buffer

	tab.Info(&buf)
	out := buf.String()

	assert.Contains(t, out, `title="peaks", 3 rows`)
	for _, want := range []string{"Column", "Distinct", "Missing"} {
		assert.Contains(t, out, want)
	}
	var bLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, " b ") {
			bLine = line
		}
	}
	require.NotEmpty(t, bLine)
	fields := strings.Split(bLine, "│")
	require.Len(t, fields, 8)
	assert.Equal(t, "2", strings.TrimSpace(fields[5]), "two distinct values in b")
	assert.Equal(t, "1", strings.TrimSpace(fields[6]), "one missing value in b")
}
