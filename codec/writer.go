package codec

import (
	"github.com/gogo/protobuf/proto"
)

// Wire types used by the encoder.
const (
	WireVarint  = 0
	WireFixed64 = 1
	WireBytes   = 2
	WireFixed32 = 5
)

// Marshaller is anything that can be encoded as an embedded message.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Writer serializes fields into a protobuf encoded message.
// The first error is kept and returned by Result.
type Writer struct {
	buf *proto.Buffer
	err error
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{buf: proto.NewBuffer(nil)}
}

func (w *Writer) key(field, wire int) {
	if w.err == nil {
		w.err = w.buf.EncodeVarint(uint64(field)<<3 | uint64(wire))
	}
}

// Uint64 writes a varint field. Zero is omitted.
func (w *Writer) Uint64(field int, v uint64) *Writer {
	if v == 0 {
		return w
	}
	w.key(field, WireVarint)
	if w.err == nil {
		w.err = w.buf.EncodeVarint(v)
	}
	return w
}

// Int64 writes a signed varint field using the two's complement
// representation, like the int64 protobuf type. Zero is omitted.
func (w *Writer) Int64(field int, v int64) *Writer {
	return w.Uint64(field, uint64(v))
}

// Bool writes a boolean field. False is omitted.
func (w *Writer) Bool(field int, v bool) *Writer {
	if !v {
		return w
	}
	return w.Uint64(field, 1)
}

// Bytes writes a length delimited field. Empty values are omitted.
func (w *Writer) Bytes(field int, v []byte) *Writer {
	if len(v) == 0 {
		return w
	}
	w.key(field, WireBytes)
	if w.err == nil {
		w.err = w.buf.EncodeRawBytes(v)
	}
	return w
}

// RepeatedBytes writes every element as its own field, keeping empty
// elements so the count survives a round trip.
func (w *Writer) RepeatedBytes(field int, vs [][]byte) *Writer {
	for _, v := range vs {
		w.key(field, WireBytes)
		if w.err == nil {
			w.err = w.buf.EncodeRawBytes(v)
		}
	}
	return w
}

// String writes a string field. Empty strings are omitted.
func (w *Writer) String(field int, v string) *Writer {
	if v == "" {
		return w
	}
	w.key(field, WireBytes)
	if w.err == nil {
		w.err = w.buf.EncodeStringBytes(v)
	}
	return w
}

// Message writes an embedded message. A nil message is omitted.
func (w *Writer) Message(field int, m Marshaller) *Writer {
	if m == nil || w.err != nil {
		return w
	}
	raw, err := m.Marshal()
	if err != nil {
		w.err = err
		return w
	}
	w.key(field, WireBytes)
	if w.err == nil {
		w.err = w.buf.EncodeRawBytes(raw)
	}
	return w
}

// Result returns the encoded message or the first error hit while
// writing.
func (w *Writer) Result() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}
