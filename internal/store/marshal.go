package store

import (
	"fmt"

	"github.com/roach88/semnet/internal/props"
)

// marshalProps converts props to canonical JSON TEXT for storage.
func marshalProps(p props.Object) (string, error) {
	if p == nil {
		p = props.Object{}
	}
	data, err := props.MarshalCanonical(p)
	if err != nil {
		return "", fmt.Errorf("marshal props: %w", err)
	}
	return string(data), nil
}

// unmarshalProps parses canonical JSON TEXT. Integers stay integral.
func unmarshalProps(data string) (props.Object, error) {
	if data == "" || data == "{}" {
		return props.Object{}, nil
	}
	obj, err := props.ParseObject([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal props: %w", err)
	}
	return obj, nil
}
