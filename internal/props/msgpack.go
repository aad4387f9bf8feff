package props

import (
	"github.com/vmihailenco/msgpack/v5"
)

var (
	_ msgpack.CustomEncoder = Object{}
	_ msgpack.CustomDecoder = (*Object)(nil)
)

// EncodeMsgpack implements msgpack.CustomEncoder. Values are written as
// plain msgpack types.
func (obj Object) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(obj.ToMap())
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (obj *Object) DecodeMsgpack(dec *msgpack.Decoder) error {
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ObjectFromAny(raw)
	if err != nil {
		return err
	}
	*obj = parsed
	return nil
}
