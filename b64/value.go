package b64

import (
	"github.com/dmrmodel/dmr/binary"
	"github.com/dmrmodel/dmr/value"
)

// EncodeValue renders v through the binary codec, then base64, for
// transport over text-only channels (§6).
func EncodeValue(v *value.Value) (string, error) {
	b, err := binary.Marshal(v)
	if err != nil {
		return "", err
	}
	return Encode(b), nil
}

// DecodeValue reverses EncodeValue.
func DecodeValue(s string) (*value.Value, error) {
	b, err := Decode(s)
	if err != nil {
		return nil, err
	}
	return binary.Unmarshal(b)
}
