package object

import (
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Codec transforms object payloads on their way to and from disk. The
// fingerprint of an object is always computed over the decoded bytes.
type Codec interface {
	Name() string
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

const (
	CodecNone = "none"
	CodecZstd = "zstd"
)

// ParseCodec returns the codec registered under name. An empty name
// selects CodecNone.
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CodecNone:
		return rawCodec{}, nil
	case CodecZstd:
		return zstdCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown object codec %q", name)
	}
}

type rawCodec struct{}

func (rawCodec) Name() string { return CodecNone }

func (rawCodec) Encode(data []byte) ([]byte, error) { return data, nil }

func (rawCodec) Decode(data []byte) ([]byte, error) { return data, nil }

type zstdCodec struct{}

func (zstdCodec) Name() string { return CodecZstd }

func (zstdCodec) Encode(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func (zstdCodec) Decode(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
