package value

import "fmt"

// Blob is a binary cell value. The content digest is computed lazily and
// cached, so blobs must be treated as immutable once stored in a table.
type Blob struct {
	Data []byte

	uid string
}

// NewBlob wraps raw bytes in a blob cell.
func NewBlob(data []byte) *Blob {
	return &Blob{Data: data}
}

// UniqueID returns the cached content digest of the blob data.
func (b *Blob) UniqueID() string {
	if b.uid == "" {
		b.uid = Sum(b.Data)
	}
	return b.uid
}

// Copy returns a blob with its own copy of the data.
func (b *Blob) Copy() any {
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return &Blob{Data: data}
}

// Equal reports content equality with another blob.
func (b *Blob) Equal(other *Blob) bool {
	if other == nil {
		return false
	}
	return b.UniqueID() == other.UniqueID()
}

// Len returns the number of bytes held.
func (b *Blob) Len() int {
	return len(b.Data)
}

func (b *Blob) String() string {
	return fmt.Sprintf("blob(%d bytes)", len(b.Data))
}
