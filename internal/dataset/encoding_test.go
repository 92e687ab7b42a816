package dataset

import (
	"bytes"
	"testing"

	rerrors "github.com/recipestore/recipestore/internal/errors"
)

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in      string
		want    Encoding
		wantErr bool
	}{
		{"", EncodingNone, false},
		{"none", EncodingNone, false},
		{"snappy", EncodingSnappy, false},
		{"zstd", EncodingZstd, false},
		{"gzip", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEncoding(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEncoding(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEncoding(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodingWrapUnwrap(t *testing.T) {
	plain := bytes.Repeat([]byte(",Recipe,Type\n0,Pasta,Dinner\n"), 50)

	for _, e := range []Encoding{EncodingNone, EncodingSnappy, EncodingZstd} {
		t.Run(string(e), func(t *testing.T) {
			wrapped, err := e.wrap(plain)
			if err != nil {
				t.Fatalf("wrap failed: %v", err)
			}
			if e != EncodingNone && len(wrapped) >= len(plain) {
				t.Errorf("expected %s to compress repetitive input: %d >= %d", e, len(wrapped), len(plain))
			}
			got, err := e.unwrap(wrapped)
			if err != nil {
				t.Fatalf("unwrap failed: %v", err)
			}
			if !bytes.Equal(got, plain) {
				t.Error("unwrap did not restore the original bytes")
			}
		})
	}
}

func TestEncodingUnwrapGarbage(t *testing.T) {
	for _, e := range []Encoding{EncodingSnappy, EncodingZstd} {
		_, err := e.unwrap([]byte("definitely not compressed"))
		if rerrors.GetCode(err) != rerrors.CodeDecodingFailed {
			t.Errorf("%s: expected DECODING_FAILED, got %v", e, err)
		}
	}
}
