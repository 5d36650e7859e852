package app

import (
	"context"
	"testing"

	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weave"
	"github.com/iov-one/pkmsig/weavetest"
	"github.com/iov-one/pkmsig/weavetest/assert"
	"github.com/iov-one/pkmsig/x/multisig"
)

func TestRouter(t *testing.T) {
	r := NewRouter()

	good := &weavetest.Handler{}
	bad := &weavetest.Handler{
		CheckErr:   errors.ErrUnauthorized.New("bad"),
		DeliverErr: errors.ErrUnauthorized.New("bad"),
	}
	r.Handle("good/path", good)
	r.Handle("bad", bad)

	// make sure invalid registrations panic
	assert.Panics(t, func() { r.Handle("good/path", good) })
	assert.Panics(t, func() { r.Handle("l:7", good) })
	assert.Panics(t, func() { r.Handle("trailing/", good) })

	ctx := context.Background()
	tx := func(path string) *weavetest.Tx {
		return &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: path}}
	}

	_, err := r.Check(ctx, nil, tx("good/path"))
	assert.Nil(t, err)
	_, err = r.Deliver(ctx, nil, tx("good/path"))
	assert.Nil(t, err)
	assert.Equal(t, 2, good.CallCount())

	_, err = r.Deliver(ctx, nil, tx("bad"))
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Equal(t, 1, bad.CallCount())

	_, err = r.Deliver(ctx, nil, tx("missing"))
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = r.Check(ctx, nil, tx("missing"))
	assert.IsErr(t, errors.ErrNotFound, err)

	_, err = r.Check(ctx, nil, &weavetest.Tx{Err: errors.ErrMsg.New("broken")})
	assert.IsErr(t, errors.ErrMsg, err)
	assert.Equal(t, 2, good.CallCount())
}

func TestRoutes(t *testing.T) {
	r := Routes()

	msgs := []weave.Msg{
		&multisig.CreateWalletMsg{},
		&multisig.DepositMsg{},
		&multisig.ProposeTxMsg{},
		&multisig.ApproveTxMsg{},
		&multisig.ExecuteTxMsg{},
		&multisig.CancelTxMsg{},
	}
	for _, msg := range msgs {
		if _, ok := r.Handler(msg.Path()).(noSuchPathHandler); ok {
			t.Errorf("no handler registered for %q", msg.Path())
		}
	}
}
