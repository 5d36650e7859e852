package app

import (
	"fmt"
	"reflect"

	"github.com/iov-one/pkmsig/codec"
	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weave"
)

// Tx is the transaction envelope. It carries a single message together
// with the path used to decode and route it.
type Tx struct {
	Path string
	Msg  []byte

	msg weave.Msg
}

var _ weave.Tx = (*Tx)(nil)

// NewTx wraps a message into a transaction.
func NewTx(msg weave.Msg) (*Tx, error) {
	raw, err := msg.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal msg")
	}
	return &Tx{Path: msg.Path(), Msg: raw, msg: msg}, nil
}

// GetMsg returns the message decoded by the TxDecoder, or the one given to
// NewTx.
func (tx *Tx) GetMsg() (weave.Msg, error) {
	if tx.msg == nil {
		return nil, errors.Wrapf(errors.ErrMsg, "message %q not decoded", tx.Path)
	}
	return tx.msg, nil
}

func (tx *Tx) Marshal() ([]byte, error) {
	return codec.NewWriter().
		String(1, tx.Path).
		Bytes(2, tx.Msg).
		Result()
}

func (tx *Tx) Unmarshal(raw []byte) error {
	*tx = Tx{}
	r := codec.NewReader(raw)
	for r.More() {
		field, wire, err := r.Key()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			tx.Path, err = r.String(wire)
		case 2:
			tx.Msg, err = r.Bytes(wire)
		default:
			err = r.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// MsgRegistry knows how to create an empty message for each path.
type MsgRegistry struct {
	types map[string]reflect.Type
}

// NewMsgRegistry returns a registry of the given message types.
func NewMsgRegistry(msgs ...weave.Msg) *MsgRegistry {
	r := &MsgRegistry{types: make(map[string]reflect.Type, len(msgs))}
	r.Register(msgs...)
	return r
}

// Register adds the types of the given messages. Messages must be
// pointers. Registering a path twice panics.
func (r *MsgRegistry) Register(msgs ...weave.Msg) {
	for _, m := range msgs {
		t := reflect.TypeOf(m)
		if t.Kind() != reflect.Ptr {
			panic(fmt.Sprintf("message %T must be a pointer", m))
		}
		if _, ok := r.types[m.Path()]; ok {
			panic(fmt.Sprintf("message path %q already registered", m.Path()))
		}
		r.types[m.Path()] = t.Elem()
	}
}

// New returns an empty message for the path.
func (r *MsgRegistry) New(path string) (weave.Msg, error) {
	t, ok := r.types[path]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "unknown message path %q", path)
	}
	return reflect.New(t).Interface().(weave.Msg), nil
}

// TxDecoder returns a decoder of Tx envelopes that also decodes the
// carried message.
func (r *MsgRegistry) TxDecoder() weave.TxDecoder {
	return func(raw []byte) (weave.Tx, error) {
		tx := new(Tx)
		if err := tx.Unmarshal(raw); err != nil {
			return nil, errors.Wrap(err, "tx envelope")
		}
		msg, err := r.New(tx.Path)
		if err != nil {
			return nil, err
		}
		if err := msg.Unmarshal(tx.Msg); err != nil {
			return nil, errors.Wrapf(err, "message %q", tx.Path)
		}
		tx.msg = msg
		return tx, nil
	}
}
