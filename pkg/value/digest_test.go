package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyDeterministic(t *testing.T) {
	k1 := Key(1, "a", nil, 2.5)
	k2 := Key(1, "a", nil, 2.5)
	assert.Equal(t, k1, k2)
}

func TestKeyDistinguishesTypes(t *testing.T) {
	// The tagged encoding keeps equal renderings of different types apart.
	assert.NotEqual(t, Key(1), Key("1"))
	assert.NotEqual(t, Key(1), Key(1.0))
	assert.NotEqual(t, Key(nil), Key(""))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
}

func TestKeyNestedStructures(t *testing.T) {
	a := map[string]any{"x": 1, "y": []any{1, 2}}
	b := map[string]any{"y": []any{1, 2}, "x": 1}
	assert.Equal(t, Key(a), Key(b))

	c := map[string]any{"x": 1, "y": []any{2, 1}}
	assert.NotEqual(t, Key(a), Key(c))
}

func TestKeyUsesHashableID(t *testing.T) {
	b1 := NewBlob([]byte("payload"))
	b2 := NewBlob([]byte("payload"))
	require.NotSame(t, b1, b2)
	assert.Equal(t, Key(b1), Key(b2))

	b3 := NewBlob([]byte("other"))
	assert.NotEqual(t, Key(b1), Key(b3))
}

func TestDigestSchemaParts(t *testing.T) {
	d1 := NewDigest()
	d1.UpdateString("a")
	d1.UpdateString("bc")

	d2 := NewDigest()
	d2.UpdateString("ab")
	d2.UpdateString("c")

	assert.NotEqual(t, d1.HexSum(), d2.HexSum())
}

func TestBlobIdentity(t *testing.T) {
	b := NewBlob([]byte("abc"))
	id := b.UniqueID()
	assert.Len(t, id, 64)
	assert.Equal(t, id, b.UniqueID())

	cp, ok := b.Copy().(*Blob)
	require.True(t, ok)
	assert.True(t, b.Equal(cp))

	cp.Data[0] = 'x'
	// The original is untouched by mutating the copy.
	assert.Equal(t, []byte("abc"), b.Data)
}
