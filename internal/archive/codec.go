package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/semnet/internal/props"
)

// Encoding names an archive wire format.
type Encoding string

const (
	// EncodingJSON is RFC 8785 canonical JSON followed by a newline.
	EncodingJSON Encoding = "json"

	// EncodingMsgpack is MessagePack with sorted map keys.
	EncodingMsgpack Encoding = "msgpack"
)

// ParseEncoding validates an encoding name.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case EncodingJSON, EncodingMsgpack:
		return Encoding(s), nil
	}
	return "", fmt.Errorf("unknown encoding %q (want json or msgpack)", s)
}

// Encode writes a in the given encoding.
func Encode(w io.Writer, a *Archive, enc Encoding) error {
	switch enc {
	case EncodingJSON:
		data, err := props.MarshalCanonical(a.Value())
		if err != nil {
			return fmt.Errorf("encode archive: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write archive: %w", err)
		}
		return nil
	case EncodingMsgpack:
		e := msgpack.NewEncoder(w)
		e.SetSortMapKeys(true)
		if err := e.Encode(a); err != nil {
			return fmt.Errorf("encode archive: %w", err)
		}
		return nil
	}
	return fmt.Errorf("encode archive: unknown encoding %q", enc)
}

// Decode reads an archive in the given encoding.
func Decode(r io.Reader, enc Encoding) (*Archive, error) {
	var a Archive
	switch enc {
	case EncodingJSON:
		if err := json.NewDecoder(r).Decode(&a); err != nil {
			return nil, fmt.Errorf("decode archive: %w", err)
		}
	case EncodingMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&a); err != nil {
			return nil, fmt.Errorf("decode archive: %w", err)
		}
	default:
		return nil, fmt.Errorf("decode archive: unknown encoding %q", enc)
	}
	for i := range a.Items {
		if a.Items[i].Props == nil {
			a.Items[i].Props = props.Object{}
		}
	}
	return &a, nil
}

// Marshal encodes a into a byte slice.
func Marshal(a *Archive, enc Encoding) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, a, enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes an archive from a byte slice.
func Unmarshal(data []byte, enc Encoding) (*Archive, error) {
	return Decode(bytes.NewReader(data), enc)
}
