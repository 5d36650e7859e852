package multisig

import (
	"encoding/hex"

	"github.com/iov-one/pkmsig/codec"
	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weave"
)

const (
	createWalletCost int64 = 100
	depositCost      int64 = 10
	proposeCost      int64 = 20
	approveCost      int64 = 50
	executeCost      int64 = 20
	cancelCost       int64 = 50
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r weave.Registry) {
	ctrl := NewController()
	r.Handle(pathCreateWalletMsg, CreateWalletHandler{ctrl: ctrl})
	r.Handle(pathDepositMsg, DepositHandler{ctrl: ctrl})
	r.Handle(pathProposeTxMsg, ProposeTxHandler{ctrl: ctrl})
	r.Handle(pathApproveTxMsg, ApproveTxHandler{ctrl: ctrl})
	r.Handle(pathExecuteTxMsg, ExecuteTxHandler{ctrl: ctrl})
	r.Handle(pathCancelTxMsg, CancelTxHandler{ctrl: ctrl})
}

// CreateWalletHandler registers new wallets.
type CreateWalletHandler struct {
	ctrl Controller
}

var _ weave.Handler = CreateWalletHandler{}

func (h CreateWalletHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: createWalletCost}, nil
}

func (h CreateWalletHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	w, err := h.run(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("wallet created",
		"wallet", hex.EncodeToString(w.ID),
		"threshold", w.Threshold,
		"signers", len(w.Signers))
	return walletResult(w.ID, pathCreateWalletMsg, w.ID), nil
}

func (h CreateWalletHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*Wallet, error) {
	var msg CreateWalletMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return h.ctrl.CreateWallet(ctx, db, &msg)
}

// DepositHandler adds funds to wallets.
type DepositHandler struct {
	ctrl Controller
}

var _ weave.Handler = DepositHandler{}

func (h DepositHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.run(db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: depositCost}, nil
}

func (h DepositHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, amount, err := h.run(db, tx)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("deposit",
		"wallet", hex.EncodeToString(msg.WalletID),
		"amount", amount)
	return walletResult(msg.WalletID, pathDepositMsg, codec.EncodeSequence(amount)), nil
}

func (h DepositHandler) run(db weave.KVStore, tx weave.Tx) (*DepositMsg, uint64, error) {
	var msg DepositMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, 0, errors.Wrap(err, "load msg")
	}
	amount, err := h.ctrl.Deposit(db, msg.WalletID, msg.Amount)
	return &msg, amount, err
}

// ProposeTxHandler opens spending proposals.
type ProposeTxHandler struct {
	ctrl Controller
}

var _ weave.Handler = ProposeTxHandler{}

func (h ProposeTxHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: proposeCost}, nil
}

func (h ProposeTxHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	p, err := h.run(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("proposal created",
		"wallet", hex.EncodeToString(p.WalletID),
		"tx", p.TxID,
		"kind", p.Kind,
		"amount", p.Amount)
	return walletResult(p.WalletID, pathProposeTxMsg, codec.EncodeSequence(p.TxID)), nil
}

func (h ProposeTxHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*Proposal, error) {
	var msg ProposeTxMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return h.ctrl.Propose(ctx, db, &msg)
}

// ApproveTxHandler records signer approvals.
type ApproveTxHandler struct {
	ctrl Controller
}

var _ weave.Handler = ApproveTxHandler{}

func (h ApproveTxHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: approveCost}, nil
}

// Deliver returns the number of approvals collected so far.
func (h ApproveTxHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	p, err := h.run(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("proposal approved",
		"wallet", hex.EncodeToString(p.WalletID),
		"tx", p.TxID,
		"approvals", len(p.Approvals))
	return walletResult(p.WalletID, pathApproveTxMsg, codec.EncodeSequence(uint64(len(p.Approvals)))), nil
}

func (h ApproveTxHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*Proposal, error) {
	var msg ApproveTxMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return h.ctrl.Approve(ctx, db, &msg)
}

// ExecuteTxHandler executes approved proposals.
type ExecuteTxHandler struct {
	ctrl Controller
}

var _ weave.Handler = ExecuteTxHandler{}

func (h ExecuteTxHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: executeCost}, nil
}

func (h ExecuteTxHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	p, err := h.run(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("proposal executed",
		"wallet", hex.EncodeToString(p.WalletID),
		"tx", p.TxID,
		"amount", p.Amount,
		"recipient", p.Recipient)
	return walletResult(p.WalletID, pathExecuteTxMsg, codec.EncodeSequence(p.TxID)), nil
}

func (h ExecuteTxHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*Proposal, error) {
	var msg ExecuteTxMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return h.ctrl.Execute(ctx, db, &msg)
}

// CancelTxHandler rejects pending proposals.
type CancelTxHandler struct {
	ctrl Controller
}

var _ weave.Handler = CancelTxHandler{}

func (h CancelTxHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: cancelCost}, nil
}

func (h CancelTxHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	p, err := h.run(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("proposal cancelled",
		"wallet", hex.EncodeToString(p.WalletID),
		"tx", p.TxID)
	return walletResult(p.WalletID, pathCancelTxMsg, codec.EncodeSequence(p.TxID)), nil
}

func (h CancelTxHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*Proposal, error) {
	var msg CancelTxMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return h.ctrl.Cancel(ctx, db, &msg)
}

// walletResult tags the result so transactions can be searched by wallet
// and action.
func walletResult(walletID []byte, path string, data []byte) *weave.DeliverResult {
	res := &weave.DeliverResult{Data: data}
	res.AddTag("multisig.wallet", hex.EncodeToString(walletID))
	res.AddTag("multisig.action", path)
	return res
}
