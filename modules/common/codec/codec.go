package codec

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/spacemeshos/go-scale"
)

// EncodeTo encodes value to a writer stream.
func EncodeTo(w io.Writer, value scale.Encodable) (int, error) {
	return value.EncodeScale(scale.NewEncoder(w))
}

// DecodeFrom decodes a value using data from a reader stream.
func DecodeFrom(r io.Reader, value scale.Decodable) (int, error) {
	return value.DecodeScale(scale.NewDecoder(r))
}

var encoderPool = sync.Pool{
	New: func() any {
		b := new(bytes.Buffer)
		b.Grow(128)
		return b
	},
}

// Encode value to a byte buffer.
func Encode(value scale.Encodable) ([]byte, error) {
	b := encoderPool.Get().(*bytes.Buffer)
	defer func() {
		b.Reset()
		encoderPool.Put(b)
	}()
	if _, err := EncodeTo(b, value); err != nil {
		return nil, fmt.Errorf("encode %T: %w", value, err)
	}
	buf := make([]byte, b.Len())
	copy(buf, b.Bytes())
	return buf, nil
}

// Decode value from a byte buffer. Trailing bytes are rejected so that a
// record can never silently decode from a longer, foreign value.
func Decode(buf []byte, value scale.Decodable) error {
	r := bytes.NewReader(buf)
	if _, err := DecodeFrom(r, value); err != nil {
		return fmt.Errorf("decode %T: %w", value, err)
	}
	if r.Len() != 0 {
		return fmt.Errorf("decode %T: %d trailing bytes", value, r.Len())
	}
	return nil
}

// EncodeUint64 encodes a bare counter as a SCALE compact integer.
func EncodeUint64(v uint64) ([]byte, error) {
	var b bytes.Buffer
	if _, err := scale.EncodeCompact64(scale.NewEncoder(&b), v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func DecodeUint64(buf []byte) (uint64, error) {
	r := bytes.NewReader(buf)
	v, _, err := scale.DecodeCompact64(scale.NewDecoder(r))
	if err != nil {
		return 0, fmt.Errorf("decode counter: %w", err)
	}
	if r.Len() != 0 {
		return 0, fmt.Errorf("decode counter: %d trailing bytes", r.Len())
	}
	return v, nil
}

// EncodeString encodes s the way a SCALE string is laid out: compact
// length prefix followed by the raw bytes.
func EncodeString(s string) ([]byte, error) {
	var b bytes.Buffer
	if _, err := scale.EncodeByteSliceWithLimit(scale.NewEncoder(&b), []byte(s), uint32(len(s))); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
