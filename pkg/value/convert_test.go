package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "int", in: 3, want: int64(3)},
		{name: "int8", in: int8(-2), want: int64(-2)},
		{name: "int32", in: int32(7), want: int64(7)},
		{name: "uint16", in: uint16(9), want: int64(9)},
		{name: "float32", in: float32(1.5), want: float64(1.5)},
		{name: "float64 untouched", in: 2.25, want: 2.25},
		{name: "string untouched", in: "x", want: "x"},
		{name: "bool untouched", in: true, want: true},
		{name: "nil untouched", in: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want ColType
	}{
		{name: "nil", in: nil, want: TypeNone},
		{name: "int", in: 1, want: TypeInt},
		{name: "int64", in: int64(1), want: TypeInt},
		{name: "float", in: 1.5, want: TypeFloat},
		{name: "bool", in: false, want: TypeBool},
		{name: "string", in: "a", want: TypeString},
		{name: "blob", in: NewBlob([]byte{1}), want: TypeBlob},
		{name: "slice is object", in: []any{1, 2}, want: TypeObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.in))
		})
	}
}

func TestCommonType(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   ColType
	}{
		{name: "all nil", values: []any{nil, nil}, want: TypeNone},
		{name: "empty", values: nil, want: TypeNone},
		{name: "ints", values: []any{1, 2, nil}, want: TypeInt},
		{name: "int widens to float", values: []any{1, 2.0}, want: TypeFloat},
		{name: "float then int", values: []any{2.0, 1}, want: TypeFloat},
		{name: "mixed types", values: []any{1, "a"}, want: TypeObject},
		{name: "bool and int", values: []any{true, 1}, want: TypeObject},
		{name: "strings", values: []any{"a", nil, "b"}, want: TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommonType(tt.values))
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		typ     ColType
		want    any
		wantErr bool
	}{
		{name: "nil passes", in: nil, typ: TypeInt, want: nil},
		{name: "float truncates to int", in: 3.7, typ: TypeInt, want: int64(3)},
		{name: "string to int", in: "42", typ: TypeInt, want: int64(42)},
		{name: "bad string to int", in: "4.2", typ: TypeInt, wantErr: true},
		{name: "int to float", in: 3, typ: TypeFloat, want: 3.0},
		{name: "comma string to float fails", in: "1,5", typ: TypeFloat, wantErr: true},
		{name: "int to string", in: 3, typ: TypeString, want: "3"},
		{name: "float to string", in: 1.5, typ: TypeString, want: "1.5"},
		{name: "bool column passes through", in: 1, typ: TypeBool, want: int64(1)},
		{name: "object column passes through", in: "x", typ: TypeObject, want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.in, tt.typ)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColType(t *testing.T) {
	ct, ok := ParseColType("float")
	require.True(t, ok)
	assert.Equal(t, TypeFloat, ct)

	ct, ok = ParseColType("string")
	require.True(t, ok)
	assert.Equal(t, TypeString, ct)

	_, ok = ParseColType("decimal")
	assert.False(t, ok)
}
