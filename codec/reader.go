package codec

import (
	"encoding/binary"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/pkmsig/errors"
)

// Reader walks over the fields of a protobuf encoded message.
//
//	r := codec.NewReader(raw)
//	for r.More() {
//	  field, wire, err := r.Key()
//	  ...
//	}
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a reader positioned at the first field.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// More returns true while there is unread data.
func (r *Reader) More() bool {
	return r.pos < len(r.data)
}

func (r *Reader) varint() (uint64, error) {
	x, n := proto.DecodeVarint(r.data[r.pos:])
	if n == 0 {
		return 0, errors.Wrap(errors.ErrInput, "malformed varint")
	}
	r.pos += n
	return x, nil
}

// Key reads the next field tag.
func (r *Reader) Key() (field, wire int, err error) {
	k, err := r.varint()
	if err != nil {
		return 0, 0, err
	}
	field, wire = int(k>>3), int(k&0x7)
	if field <= 0 {
		return 0, 0, errors.Wrapf(errors.ErrInput, "illegal field number %d", field)
	}
	return field, wire, nil
}

// Uint64 reads a varint value.
func (r *Reader) Uint64(wire int) (uint64, error) {
	if wire != WireVarint {
		return 0, errors.Wrapf(errors.ErrInput, "wire type %d is not a varint", wire)
	}
	return r.varint()
}

// Int64 reads a varint value written by Writer.Int64.
func (r *Reader) Int64(wire int) (int64, error) {
	v, err := r.Uint64(wire)
	return int64(v), err
}

// Bool reads a varint as a boolean.
func (r *Reader) Bool(wire int) (bool, error) {
	v, err := r.Uint64(wire)
	return v != 0, err
}

// Bytes reads a length delimited value. The returned slice is a copy.
func (r *Reader) Bytes(wire int) ([]byte, error) {
	if wire != WireBytes {
		return nil, errors.Wrapf(errors.ErrInput, "wire type %d is not length delimited", wire)
	}
	l, err := r.varint()
	if err != nil {
		return nil, err
	}
	if l > uint64(len(r.data)-r.pos) {
		return nil, errors.Wrap(errors.ErrInput, "length exceeds message")
	}
	end := r.pos + int(l)
	out := make([]byte, int(l))
	copy(out, r.data[r.pos:end])
	r.pos = end
	return out, nil
}

// String reads a length delimited value as a string.
func (r *Reader) String(wire int) (string, error) {
	b, err := r.Bytes(wire)
	return string(b), err
}

// Skip discards the value of an unknown field.
func (r *Reader) Skip(wire int) error {
	switch wire {
	case WireVarint:
		_, err := r.varint()
		return err
	case WireBytes:
		_, err := r.Bytes(wire)
		return err
	case WireFixed64:
		return r.fixed(8)
	case WireFixed32:
		return r.fixed(4)
	default:
		return errors.Wrapf(errors.ErrInput, "unsupported wire type %d", wire)
	}
}

func (r *Reader) fixed(n int) error {
	if len(r.data)-r.pos < n {
		return errors.Wrap(errors.ErrInput, "unexpected end of message")
	}
	r.pos += n
	return nil
}

// EncodeSequence returns the 8 byte big endian form of val.
func EncodeSequence(val uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, val)
	return bz
}

// DecodeSequence is the inverse of EncodeSequence. A nil value decodes
// to zero.
func DecodeSequence(bz []byte) (uint64, error) {
	if bz == nil {
		return 0, nil
	}
	if len(bz) != 8 {
		return 0, errors.Wrap(errors.ErrInput, "sequence is invalid length (expect 8 bytes)")
	}
	return binary.BigEndian.Uint64(bz), nil
}
