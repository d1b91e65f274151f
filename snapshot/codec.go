package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Codec names a serialization format.
type Codec string

const (
	JSON Codec = "json"
	TOML Codec = "toml"
)

// ParseCodec parses "json" or "toml" (case-insensitive).
func ParseCodec(s string) (Codec, error) {
	switch c := Codec(strings.ToLower(strings.TrimSpace(s))); c {
	case JSON, TOML:
		return c, nil
	}

	return "", fmt.Errorf("snapshot: codec %q: %w", s, ErrCodec)
}

// CodecForPath picks the codec from a file extension (.json, .toml).
func CodecForPath(path string) (Codec, error) {
	return ParseCodec(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Marshal encodes r with c.
func Marshal(c Codec, r Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, c, r); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes data with c.
func Unmarshal(c Codec, data []byte) (Record, error) {
	return Decode(bytes.NewReader(data), c)
}

// Encode writes r to w with c. JSON output is indented.
func Encode(w io.Writer, c Codec, r Record) error {
	if r.Format == 0 {
		r.Format = FormatVersion
	}
	if r.Transforms == nil {
		r.Transforms = []Entry{}
	}
	switch c {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("snapshot: encode json: %w", err)
		}
	case TOML:
		if err := toml.NewEncoder(w).Encode(r); err != nil {
			return fmt.Errorf("snapshot: encode toml: %w", err)
		}
	default:
		return fmt.Errorf("snapshot: codec %q: %w", c, ErrCodec)
	}

	return nil
}

// Decode reads one Record from rd with c. Unknown fields are rejected.
func Decode(rd io.Reader, c Codec) (Record, error) {
	var r Record
	switch c {
	case JSON:
		dec := json.NewDecoder(rd)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&r); err != nil {
			return Record{}, fmt.Errorf("snapshot: decode json: %w", err)
		}
	case TOML:
		md, err := toml.NewDecoder(rd).Decode(&r)
		if err != nil {
			return Record{}, fmt.Errorf("snapshot: decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Record{}, fmt.Errorf("snapshot: decode toml: unknown key %q", undecoded[0].String())
		}
	default:
		return Record{}, fmt.Errorf("snapshot: codec %q: %w", c, ErrCodec)
	}

	return r, nil
}
