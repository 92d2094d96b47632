package object

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Structured objects are encoded as CBOR in Core Deterministic Encoding
// mode: map keys are sorted and integers take their shortest form, so one
// logical value always produces the same bytes and therefore the same id.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	encOpts := cbor.CoreDetEncOptions()
	encOpts.NilContainers = cbor.NilContainerAsEmpty
	em, err := encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("object: cbor encoder options: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		// File names are not guaranteed to be valid UTF-8.
		UTF8: cbor.UTF8DecodeInvalid,
	}
	dm, err := decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("object: cbor decoder options: %v", err))
	}
	encMode, decMode = em, dm
}

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes data produced by Marshal into v. Trailing bytes,
// duplicate map keys and unknown struct fields are rejected.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Insert serializes v and pushes the bytes into s.
func Insert[T any](s Store, v T) (Hash, error) {
	data, err := Marshal(v)
	if err != nil {
		return ZeroHash, fmt.Errorf("insert %T: marshal: %w", v, err)
	}
	h, err := s.Push(data)
	if err != nil {
		return ZeroHash, fmt.Errorf("insert %T: %w", v, err)
	}
	return h, nil
}

// Read fetches the object h from s and decodes it as a T. It fails with
// ErrMissingObject when h is not stored and ErrMalformedObject when the
// bytes do not decode.
func Read[T any](s Store, h Hash) (T, error) {
	var v T
	data, ok, err := s.Get(h)
	if err != nil {
		return v, fmt.Errorf("read %s: %w", h, err)
	}
	if !ok {
		return v, missingObject(h)
	}
	if err := Unmarshal(data, &v); err != nil {
		var zero T
		return zero, malformedObject(h, err)
	}
	return v, nil
}
