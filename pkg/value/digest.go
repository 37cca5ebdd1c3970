package value

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	"github.com/zeebo/blake3"
)

// Value tags for the digest encoding. Every encoded value starts with a
// tag byte so that e.g. the int 1 and the string "1" never collide.
const (
	tagNil    = 'z'
	tagBool   = 'b'
	tagInt    = 'i'
	tagFloat  = 'f'
	tagString = 's'
	tagBytes  = 'y'
	tagList   = 'l'
	tagMap    = 'm'
	tagHashed = 'h'
	tagOther  = 'o'
)

// Digest computes a deterministic blake3 content digest over a sequence of
// cell values. Hashable objects contribute their UniqueID instead of a
// structural encoding, so nested tables and blobs fold their own identity.
type Digest struct {
	h       *blake3.Hasher
	scratch [8]byte
}

// NewDigest returns a fresh digest.
func NewDigest() *Digest {
	return &Digest{h: blake3.New()}
}

// Update feeds one cell value into the digest.
func (d *Digest) Update(v any) {
	switch n := Normalize(v).(type) {
	case nil:
		d.tag(tagNil)
	case bool:
		d.tag(tagBool)
		if n {
			d.scratch[0] = 1
		} else {
			d.scratch[0] = 0
		}
		d.write(d.scratch[:1])
	case int64:
		d.tag(tagInt)
		binary.BigEndian.PutUint64(d.scratch[:], uint64(n))
		d.write(d.scratch[:])
	case float64:
		d.tag(tagFloat)
		binary.BigEndian.PutUint64(d.scratch[:], math.Float64bits(n))
		d.write(d.scratch[:])
	case string:
		d.tag(tagString)
		d.length(len(n))
		d.write([]byte(n))
	case []byte:
		d.tag(tagBytes)
		d.length(len(n))
		d.write(n)
	case Hashable:
		d.tag(tagHashed)
		id := n.UniqueID()
		d.length(len(id))
		d.write([]byte(id))
	case []any:
		d.tag(tagList)
		d.length(len(n))
		for _, item := range n {
			d.Update(item)
		}
	case map[string]any:
		d.tag(tagMap)
		d.length(len(n))
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d.Update(k)
			d.Update(n[k])
		}
	default:
		// No structural encoding known, fall back to the printed form.
		d.tag(tagOther)
		s := fmt.Sprintf("%v", v)
		d.length(len(s))
		d.write([]byte(s))
	}
}

// UpdateString feeds a raw string into the digest without a value tag.
// Intended for schema parts (names, formats) rather than cells.
func (d *Digest) UpdateString(s string) {
	d.length(len(s))
	d.write([]byte(s))
}

// HexSum returns the hex-encoded digest of everything fed so far.
func (d *Digest) HexSum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

func (d *Digest) tag(t byte) {
	d.scratch[0] = t
	d.write(d.scratch[:1])
}

func (d *Digest) length(n int) {
	binary.BigEndian.PutUint64(d.scratch[:], uint64(n))
	d.write(d.scratch[:])
}

func (d *Digest) write(p []byte) {
	_, _ = d.h.Write(p)
}

// Key returns a structural equality key for a tuple of cell values.
// Two tuples produce the same key exactly when their values are deep
// content equal, with Hashable objects contributing their unique id.
func Key(vs ...any) string {
	d := NewDigest()
	for _, v := range vs {
		d.Update(v)
	}
	return d.HexSum()
}

// Sum returns the hex-encoded blake3 digest of raw bytes.
func Sum(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
