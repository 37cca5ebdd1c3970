package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

func TestCompileFormat(t *testing.T) {
	tests := []struct {
		name   string
		format string
		value  any
		want   string
	}{
		{"int verb", "%d", int64(42), "42"},
		{"int verb narrows float", "%d", 2.9, "2"},
		{"float verb", "%.2f", 1.5, "1.50"},
		{"float verb widens int", "%.2f", int64(3), "3.00"},
		{"five decimals", "%.5f", 700.5, "700.50000"},
		{"string verb", "%s", "abc", "abc"},
		{"string verb renders numbers", "%s", int64(7), "7"},
		{"generic verb", "%v", true, "true"},
		{"missing renders dash", "%d", nil, "-"},
		{"minutes from seconds", "@minutes", 90.0, "1.50m"},
		{"minutes from int seconds", "@minutes", int64(120), "2.00m"},
		{"minutes missing", "@minutes", nil, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := compileFormat(tt.format)
			require.NoError(t, err)
			require.NotNil(t, fn)
			assert.Equal(t, tt.want, fn(tt.value))
		})
	}
}

func TestCompileFormatHidden(t *testing.T) {
	fn, err := compileFormat("")
	require.NoError(t, err)
	assert.Nil(t, fn)
}

func TestCompileFormatUnknown(t *testing.T) {
	_, err := compileFormat("garbage")
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.ErrorContains(t, err, `unknown column format "garbage"`)
}

func TestVerbKind(t *testing.T) {
	tests := []struct {
		format string
		want   byte
	}{
		{"%d", 'd'},
		{"%03d", 'd'},
		{"%x", 'd'},
		{"%.2f", 'f'},
		{"%8.3e", 'f'},
		{"%g", 'f'},
		{"%v", 0},
		{"no verb", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, verbKind(tt.format), "format %q", tt.format)
	}
}

func TestGuessFormat(t *testing.T) {
	tests := []struct {
		name string
		typ  value.ColType
		want string
	}{
		{"mz", value.TypeFloat, "%.5f"},
		{"mzmin", value.TypeFloat, "%.5f"},
		{"mass", value.TypeInt, "%.5f"},
		{"rt", value.TypeFloat, "@minutes"},
		{"rtmax", value.TypeFloat, "@minutes"},
		{"id", value.TypeInt, "%d"},
		{"area", value.TypeFloat, "%.2f"},
		{"name", value.TypeString, "%s"},
		{"empty", value.TypeNone, ""},
		{"sub", value.TypeTable, "%v"},
		{"data", value.TypeBlob, "%v"},
		{"mz", value.TypeString, "%s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, guessFormat(tt.name, tt.typ),
			"name %q type %s", tt.name, tt.typ)
	}
}

func TestFormattersSkipHiddenColumns(t *testing.T) {
	tab := newSampleTable(t)
	require.NoError(t, tab.SetColFormat("b", ""))

	fns := tab.formatters()
	require.Len(t, fns, 3)
	assert.NotNil(t, fns[0])
	assert.Nil(t, fns[1])
	assert.NotNil(t, fns[2])
}
