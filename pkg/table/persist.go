package table

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// versionHeaderPrefix starts the first line of every stored table file.
const versionHeaderPrefix = "emzed_version="

// formatVersion is the binary format version written to the header.
var formatVersion = [3]int{2, 0, 2}

// xzMagic identifies a compressed payload.
var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// tablePayload is the serialized form of a table: the column registry,
// title, meta and rows, in that order.
type tablePayload struct {
	ColNames     []string
	ColTypes     []value.ColType
	ColFormats   []string
	Title        string
	Meta         map[string]any
	Rows         [][]any
	PrimaryIndex map[string]bool
}

// legacyPayload is the pre-versioning serialized form, carrying column
// types by name instead of enum values.
type legacyPayload struct {
	ColNames   []string
	ColTypes   []string
	ColFormats []string
	Title      string
	Meta       map[string]any
	Rows       [][]any
}

func init() {
	gob.Register(int64(0))
	gob.Register(float64(0))
	gob.Register(false)
	gob.Register("")
	gob.Register([]any{})
	gob.Register(map[string]any{})
	gob.Register(&value.Blob{})
	gob.Register(&Table{})
}

// Store writes the table in binary format: a version header line
// followed by the serialized payload, compressed when WithCompression
// is given. Content-identical embedded objects are canonicalized first
// unless WithoutBlobDedup disables that. An existing file is only
// replaced with WithOverwrite.
func (t *Table) Store(path string, opts ...Option) error {
	o := applyOptions(opts)
	if !o.overwrite {
		if _, err := os.Stat(path); err == nil {
			return &ArgumentError{Message: fmt.Sprintf(
				"%s exists, use the overwrite option to replace it", path)}
		}
	}
	if !o.noDedup {
		t.CompressBlobs()
	}

	payload, err := t.encodePayload()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s%d.%d.%d\n", versionHeaderPrefix,
		formatVersion[0], formatVersion[1], formatVersion[2])
	if o.compress {
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
	} else {
		buf.Write(payload)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Load reads a table stored with Store. Decoding attempts, in order:
// the strict version-tagged payload, the legacy payload behind the same
// header, and finally the whole file as a raw legacy payload without
// header. Each failure falls through to the next stage; exhausting all
// stages is a LoadError carrying every stage's error.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var errs []error
	header, payload, hasHeader := bytes.Cut(data, []byte("\n"))
	if hasHeader && bytes.HasPrefix(header, []byte(versionHeaderPrefix)) {
		major, err := parseFormatVersion(string(header[len(versionHeaderPrefix):]))
		switch {
		case err != nil:
			errs = append(errs, err)
		case major > formatVersion[0]:
			errs = append(errs, fmt.Errorf(
				"file format version %d is newer than the supported version %d",
				major, formatVersion[0]))
		default:
			raw, err := maybeDecompress(payload)
			if err != nil {
				errs = append(errs, err)
				break
			}
			if t, err := decodeStrict(raw); err == nil {
				return loaded(t, path)
			} else {
				errs = append(errs, err)
			}
			if t, err := decodeLegacy(raw); err == nil {
				return loaded(t, path)
			} else {
				errs = append(errs, fmt.Errorf("legacy payload: %w", err))
			}
		}
	}

	raw, err := maybeDecompress(data)
	if err != nil {
		errs = append(errs, err)
	} else if t, err := decodeLegacy(raw); err == nil {
		return loaded(t, path)
	} else {
		errs = append(errs, fmt.Errorf("raw legacy payload: %w", err))
	}
	return nil, &LoadError{Path: path, Errs: errs}
}

// loaded records where the table came from.
func loaded(t *Table, path string) (*Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	t.meta[metaLoadedFrom] = abs
	return t, nil
}

func parseFormatVersion(s string) (int, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed version header %q", s)
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return 0, fmt.Errorf("malformed version header %q", s)
		}
	}
	major, _ := strconv.Atoi(parts[0])
	return major, nil
}

func maybeDecompress(payload []byte) ([]byte, error) {
	if !bytes.HasPrefix(payload, xzMagic) {
		return payload, nil
	}
	r, err := xz.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func (t *Table) encodePayload() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(tablePayload{
		ColNames:     t.colNames,
		ColTypes:     t.colTypes,
		ColFormats:   t.colFormats,
		Title:        t.title,
		Meta:         t.meta,
		Rows:         t.rows,
		PrimaryIndex: t.primaryIndex,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeStrict(payload []byte) (*Table, error) {
	var p tablePayload
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&p); err != nil {
		return nil, fmt.Errorf("file has invalid format: %w", err)
	}
	t, err := tableFromParts(p.ColNames, p.ColTypes, p.ColFormats, p.Title, p.Meta, p.Rows)
	if err != nil {
		return nil, err
	}
	if len(p.PrimaryIndex) > 0 {
		t.primaryIndex = p.PrimaryIndex
	}
	return t, nil
}

func decodeLegacy(payload []byte) (*Table, error) {
	var p legacyPayload
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&p); err != nil {
		return nil, fmt.Errorf("file has invalid format: %w", err)
	}
	types := make([]value.ColType, len(p.ColTypes))
	for i, s := range p.ColTypes {
		ct, ok := value.ParseColType(s)
		if !ok {
			return nil, fmt.Errorf("unknown column type %q in file", s)
		}
		types[i] = ct
	}
	return tableFromParts(p.ColNames, types, p.ColFormats, p.Title, p.Meta, p.Rows)
}

// tableFromParts rebuilds a table from decoded payload parts without
// the constructor's name policy checks, so archives written by other
// versions keep loading.
func tableFromParts(names []string, types []value.ColType, formats []string, title string, meta map[string]any, rows [][]any) (*Table, error) {
	if len(names) != len(types) || len(names) != len(formats) {
		return nil, fmt.Errorf("column registry from file is inconsistent: %d names, %d types, %d formats",
			len(names), len(types), len(formats))
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("row %d of length %d does not fit %d columns", i, len(row), len(names))
		}
	}
	if meta == nil {
		meta = map[string]any{}
	}
	if rows == nil {
		rows = [][]any{}
	}
	t := &Table{
		colNames:     names,
		colTypes:     types,
		colFormats:   formats,
		rows:         rows,
		title:        title,
		meta:         meta,
		id:           newTableID(),
		primaryIndex: map[string]bool{},
		logger:       slog.New(slog.DiscardHandler),
	}
	t.resetInternals()
	return t, nil
}

// GobEncode serializes nested table cells through the same payload as
// the file format.
func (t *Table) GobEncode() ([]byte, error) {
	return t.encodePayload()
}

// GobDecode rebuilds a nested table cell.
func (t *Table) GobDecode(data []byte) error {
	decoded, err := decodeStrict(data)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}
