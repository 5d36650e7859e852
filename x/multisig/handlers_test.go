package multisig

import (
	"encoding/hex"
	"testing"

	"github.com/iov-one/pkmsig/codec"
	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/store"
	"github.com/iov-one/pkmsig/weave"
	"github.com/iov-one/pkmsig/weavetest"
	"github.com/iov-one/pkmsig/weavetest/assert"
)

type router map[string]weave.Handler

func (r router) Handle(path string, h weave.Handler) {
	r[path] = h
}

func routes() router {
	r := make(router)
	RegisterRoutes(r)
	return r
}

func TestRegisterRoutes(t *testing.T) {
	r := routes()
	for _, path := range []string{
		pathCreateWalletMsg,
		pathDepositMsg,
		pathProposeTxMsg,
		pathApproveTxMsg,
		pathExecuteTxMsg,
		pathCancelTxMsg,
	} {
		if r[path] == nil {
			t.Fatalf("no handler for %q", path)
		}
	}
}

func TestHandlersDeliver(t *testing.T) {
	r := routes()
	db := store.MemStore()
	ctx := testContext()
	keys := weavetest.SeedKeys("handler", 2)
	id := walletID(0x11)

	deliver := func(msg weave.Msg) (*weave.DeliverResult, error) {
		return r[msg.Path()].Deliver(ctx, db, &weavetest.Tx{Msg: msg})
	}

	res, err := deliver(&CreateWalletMsg{ID: id, Name: "h", Threshold: 2, Signers: weavetest.PubKeys(keys...)})
	assert.Nil(t, err)
	assert.Equal(t, id, res.Data)

	res, err = deliver(&DepositMsg{WalletID: id, Amount: 70})
	assert.Nil(t, err)
	assert.Equal(t, codec.EncodeSequence(70), res.Data)

	res, err = deliver(&ProposeTxMsg{WalletID: id, Kind: "TRANSFER", Amount: 30, Recipient: recipient()})
	assert.Nil(t, err)
	assert.Equal(t, codec.EncodeSequence(1), res.Data)

	p, err := NewController().Proposal(db, id, 1)
	assert.Nil(t, err)

	for i, k := range keys {
		res, err = deliver(approveMsg(t, db, k, p))
		assert.Nil(t, err)
		assert.Equal(t, codec.EncodeSequence(uint64(i+1)), res.Data)
	}

	res, err = deliver(&ExecuteTxMsg{WalletID: id, TxID: 1})
	assert.Nil(t, err)
	assert.Equal(t, codec.EncodeSequence(1), res.Data)
	assert.Equal(t, 2, len(res.Tags))
	assert.Equal(t, hex.EncodeToString(id), string(res.Tags[0].Value))
	assert.Equal(t, pathExecuteTxMsg, string(res.Tags[1].Value))

	w, err := NewController().Wallet(db, id)
	assert.Nil(t, err)
	assert.Equal(t, uint64(40), w.Balance)

	_, err = deliver(&ProposeTxMsg{WalletID: id, Kind: "TRANSFER", Amount: 1, Recipient: recipient()})
	assert.Nil(t, err)
	p, err = NewController().Proposal(db, id, 2)
	assert.Nil(t, err)
	_, err = deliver(cancelMsg(t, db, keys[1], p))
	assert.Nil(t, err)
}

func TestHandlersErrors(t *testing.T) {
	r := routes()
	ctx := testContext()
	keys := weavetest.SeedKeys("errors", 2)

	cases := map[string]struct {
		msg      weave.Msg
		wantErr  *errors.Error
		wantCode uint32
	}{
		"threshold above signers": {
			msg:      &CreateWalletMsg{ID: walletID(1), Name: "x", Threshold: 5, Signers: weavetest.PubKeys(keys...)},
			wantErr:  ErrInvalidThreshold,
			wantCode: 5009,
		},
		"zero threshold": {
			msg:      &CreateWalletMsg{ID: walletID(1), Name: "x", Threshold: 0, Signers: weavetest.PubKeys(keys...)},
			wantErr:  ErrInvalidThreshold,
			wantCode: 5009,
		},
		"deposit to unknown wallet": {
			msg:      &DepositMsg{WalletID: walletID(0xff), Amount: 100},
			wantErr:  ErrWalletNotFound,
			wantCode: 5003,
		},
		"propose on unknown wallet": {
			msg:      &ProposeTxMsg{WalletID: walletID(0xff), Kind: "TRANSFER", Recipient: recipient()},
			wantErr:  ErrWalletNotFound,
			wantCode: 5003,
		},
		"lowercase kind": {
			msg:      &ProposeTxMsg{WalletID: walletID(0xff), Kind: "transfer", Recipient: recipient()},
			wantErr:  ErrInvalidKind,
			wantCode: 5019,
		},
		"execute unknown proposal": {
			msg:      &ExecuteTxMsg{WalletID: walletID(0xff), TxID: 0},
			wantErr:  ErrTxNotFound,
			wantCode: 5007,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			h := r[tc.msg.Path()]
			tx := &weavetest.Tx{Msg: tc.msg}

			_, err := h.Check(ctx, db, tx)
			assert.IsErr(t, tc.wantErr, err)
			_, err = h.Deliver(ctx, db, tx)
			assert.IsErr(t, tc.wantErr, err)
			assert.ABCICode(t, tc.wantCode, err)
		})
	}
}

func TestHandlerWrongMessage(t *testing.T) {
	h := routes()[pathDepositMsg]
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: pathDepositMsg}}
	_, err := h.Deliver(testContext(), store.MemStore(), tx)
	assert.IsErr(t, errors.ErrType, err)
}
