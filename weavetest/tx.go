package weavetest

import (
	"github.com/iov-one/pkmsig/codec"
	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weave"
)

// Tx is a transaction carrying a single message. It serializes to the
// same envelope the application decodes, so it can also be fed to
// CheckTx and DeliverTx as raw bytes.
type Tx struct {
	Msg weave.Msg
	// Err if set is returned by GetMsg.
	Err error
}

var _ weave.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (weave.Msg, error) {
	return tx.Msg, tx.Err
}

// Unmarshal is not supported, the message type is unknown.
func (tx *Tx) Unmarshal([]byte) error {
	return errors.Wrap(errors.ErrHuman, "test transaction cannot be decoded")
}

func (tx *Tx) Marshal() ([]byte, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "msg")
	}
	raw, err := tx.Msg.Marshal()
	if err != nil {
		return nil, err
	}
	return codec.NewWriter().
		String(1, tx.Msg.Path()).
		Bytes(2, raw).
		Result()
}

// Msg is a message with a configurable route. Every method returns Err
// when set.
type Msg struct {
	// RoutePath is used by the router to dispatch the message.
	RoutePath string
	// Serialized is returned by Marshal and set by Unmarshal.
	Serialized []byte
	Err        error
}

var _ weave.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Unmarshal(b []byte) error {
	m.Serialized = b
	return m.Err
}

func (m *Msg) Marshal() ([]byte, error) {
	return m.Serialized, m.Err
}

func (m *Msg) Validate() error {
	return m.Err
}
