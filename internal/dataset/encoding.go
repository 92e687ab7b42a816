package dataset

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	rerrors "github.com/recipestore/recipestore/internal/errors"
)

// Encoding is the byte encoding of the stored dataset object.
type Encoding string

const (
	// EncodingNone stores plain CSV.
	EncodingNone Encoding = "none"
	// EncodingSnappy stores CSV as a framed snappy stream.
	EncodingSnappy Encoding = "snappy"
	// EncodingZstd stores CSV as a zstd frame.
	EncodingZstd Encoding = "zstd"
)

// ParseEncoding validates an encoding name. The empty string means none.
func ParseEncoding(name string) (Encoding, error) {
	switch Encoding(name) {
	case "", EncodingNone:
		return EncodingNone, nil
	case EncodingSnappy, EncodingZstd:
		return Encoding(name), nil
	default:
		return "", fmt.Errorf("unsupported dataset encoding: %s (must be none, snappy, or zstd)", name)
	}
}

// wrap encodes plain CSV bytes for storage.
func (e Encoding) wrap(data []byte) ([]byte, error) {
	switch e {
	case EncodingSnappy:
		var buf bytes.Buffer
		w := snappy.NewBufferedWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case EncodingZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return data, nil
	}
}

// unwrap decodes stored bytes back to plain CSV.
func (e Encoding) unwrap(data []byte) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch e {
	case EncodingSnappy:
		out, err = io.ReadAll(snappy.NewReader(bytes.NewReader(data)))
	case EncodingZstd:
		var dec *zstd.Decoder
		dec, err = zstd.NewReader(nil)
		if err == nil {
			defer dec.Close()
			out, err = dec.DecodeAll(data, nil)
		}
	default:
		return data, nil
	}
	if err != nil {
		return nil, rerrors.NewDataError(rerrors.CodeDecodingFailed,
			fmt.Sprintf("failed to decode %s dataset object", e), err)
	}
	return out, nil
}
