package multisig

import (
	"math"

	"github.com/iov-one/pkmsig/crypto"
	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weave"
)

// WalletInfo is the public snapshot of a wallet.
type WalletInfo struct {
	ID          []byte         `json:"id"`
	Name        string         `json:"name"`
	Threshold   uint32         `json:"threshold"`
	SignerCount uint32         `json:"signer_count"`
	Balance     uint64         `json:"balance"`
	Address     string         `json:"address"`
	TxCount     uint64         `json:"tx_count"`
	CreatedAt   weave.UnixTime `json:"created_at"`
}

// Controller implements all wallet operations on top of a store. It keeps
// no state of its own. Callers must serialize mutating calls and run each
// of them in a cache wrap that is discarded on error.
type Controller struct {
	wallets   WalletBucket
	signers   SignerBucket
	proposals ProposalBucket
}

// NewController returns a controller using the default buckets.
func NewController() Controller {
	return Controller{
		wallets:   NewWalletBucket(),
		signers:   NewSignerBucket(),
		proposals: NewProposalBucket(),
	}
}

// CreateWallet validates and stores a new wallet. The threshold is checked
// before anything else and nothing is written unless all checks pass.
func (c Controller) CreateWallet(ctx weave.Context, db weave.KVStore, msg *CreateWalletMsg) (*Wallet, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	exists, err := c.wallets.Has(db, msg.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Wrapf(ErrWalletExists, "%X", msg.ID)
	}
	now, err := CurrentTime(ctx)
	if err != nil {
		return nil, err
	}

	w := &Wallet{
		ID:        msg.ID,
		Name:      msg.Name,
		Threshold: msg.Threshold,
		Signers:   msg.Signers,
		CreatedAt: now,
	}
	if err := c.wallets.Put(db, w); err != nil {
		return nil, errors.Wrap(err, "save wallet")
	}
	if err := c.signers.Index(db, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Wallet returns the stored wallet or ErrWalletNotFound.
func (c Controller) Wallet(db weave.ReadOnlyKVStore, id []byte) (*Wallet, error) {
	w, err := c.wallets.GetWallet(db, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, errors.Wrapf(ErrWalletNotFound, "%X", id)
	}
	return w, nil
}

// GetWallet returns the wallet snapshot, or nil if the wallet does not
// exist.
func (c Controller) GetWallet(db weave.ReadOnlyKVStore, id []byte) (*WalletInfo, error) {
	w, err := c.wallets.GetWallet(db, id)
	if err != nil || w == nil {
		return nil, err
	}
	conf, err := loadConfiguration(db)
	if err != nil {
		return nil, err
	}
	addr, err := w.Address().Bech32(conf.Bech32Prefix)
	if err != nil {
		return nil, err
	}
	count, err := c.proposals.TxCount(db, id)
	if err != nil {
		return nil, err
	}
	return &WalletInfo{
		ID:          w.ID,
		Name:        w.Name,
		Threshold:   w.Threshold,
		SignerCount: uint32(len(w.Signers)),
		Balance:     w.Balance,
		Address:     addr,
		TxCount:     count,
		CreatedAt:   w.CreatedAt,
	}, nil
}

// Signer returns the public key at the given position of the signer list.
func (c Controller) Signer(db weave.ReadOnlyKVStore, id []byte, index uint64) ([]byte, error) {
	w, err := c.Wallet(db, id)
	if err != nil {
		return nil, err
	}
	if index >= uint64(len(w.Signers)) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d of %d signers", index, len(w.Signers))
	}
	return w.Signers[index], nil
}

// IsValidSigner returns true if the key is one of the wallet signers. Only
// an exact match of the compressed key counts.
func (c Controller) IsValidSigner(db weave.ReadOnlyKVStore, id, pubkey []byte) (bool, error) {
	if len(pubkey) != crypto.PubKeyLength || len(id) != WalletIDLength {
		return false, nil
	}
	ref, err := c.signers.Lookup(db, id, pubkey)
	if err != nil {
		return false, err
	}
	return ref != nil, nil
}

// Deposit adds the amount to the wallet balance and returns the amount.
// An unknown wallet is reported for any amount.
func (c Controller) Deposit(db weave.KVStore, id []byte, amount uint64) (uint64, error) {
	w, err := c.Wallet(db, id)
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, errors.Wrap(ErrInvalidAmount, "deposit must be positive")
	}
	if w.Balance > math.MaxUint64-amount {
		return 0, errors.Wrapf(ErrOverflow, "balance %d + %d", w.Balance, amount)
	}
	w.Balance += amount
	if err := c.wallets.Put(db, w); err != nil {
		return 0, err
	}
	return amount, nil
}

// Propose creates a pending proposal and returns it with its new id.
func (c Controller) Propose(ctx weave.Context, db weave.KVStore, msg *ProposeTxMsg) (*Proposal, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if _, err := c.Wallet(db, msg.WalletID); err != nil {
		return nil, err
	}
	conf, err := loadConfiguration(db)
	if err != nil {
		return nil, err
	}
	now, err := CurrentTime(ctx)
	if err != nil {
		return nil, err
	}
	txID, err := c.proposals.NextTxID(db, msg.WalletID)
	if err != nil {
		return nil, errors.Wrap(err, "tx id")
	}

	p := &Proposal{
		WalletID:  msg.WalletID,
		TxID:      txID,
		Kind:      msg.Kind,
		Amount:    msg.Amount,
		Recipient: msg.Recipient,
		Memo:      msg.Memo,
		Status:    ProposalPending,
		CreatedAt: now,
	}
	if conf.ProposalTTL > 0 {
		p.ExpiresAt = now + weave.UnixTime(conf.ProposalTTL)
	}
	if err := c.proposals.Put(db, p); err != nil {
		return nil, errors.Wrap(err, "save proposal")
	}
	return p, nil
}

// Approve records the approval of one signer. The signature must cover
// SignBytes of the proposal for the approve action.
func (c Controller) Approve(ctx weave.Context, db weave.KVStore, msg *ApproveTxMsg) (*Proposal, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	w, p, err := c.openProposal(ctx, db, msg.WalletID, msg.TxID)
	if err != nil {
		return nil, err
	}
	if err := c.verify(ctx, db, w, p, ActionApprove, msg.Signer, msg.Signature); err != nil {
		return nil, err
	}
	if p.HasApproved(msg.Signer) {
		return nil, errors.Wrap(ErrAlreadyApproved, "signer already approved")
	}
	p.Approvals = append(p.Approvals, msg.Signer)
	if err := c.proposals.Put(db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Execute spends the proposal amount from the wallet balance once enough
// signers approved.
func (c Controller) Execute(ctx weave.Context, db weave.KVStore, msg *ExecuteTxMsg) (*Proposal, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	w, p, err := c.openProposal(ctx, db, msg.WalletID, msg.TxID)
	if err != nil {
		return nil, err
	}
	if uint64(len(p.Approvals)) < uint64(w.Threshold) {
		return nil, errors.Wrapf(ErrThresholdNotReached, "%d of %d approvals", len(p.Approvals), w.Threshold)
	}
	if w.Balance < p.Amount {
		return nil, errors.Wrapf(ErrInsufficientFunds, "balance %d, need %d", w.Balance, p.Amount)
	}
	now, err := CurrentTime(ctx)
	if err != nil {
		return nil, err
	}

	w.Balance -= p.Amount
	p.Status = ProposalExecuted
	p.ExecutedAt = now
	if err := c.wallets.Put(db, w); err != nil {
		return nil, err
	}
	if err := c.proposals.Put(db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Cancel moves a pending proposal into the cancelled state on behalf of
// one signer.
func (c Controller) Cancel(ctx weave.Context, db weave.KVStore, msg *CancelTxMsg) (*Proposal, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	w, err := c.Wallet(db, msg.WalletID)
	if err != nil {
		return nil, err
	}
	p, err := c.proposal(db, w.ID, msg.TxID)
	if err != nil {
		return nil, err
	}
	if err := checkPending(p); err != nil {
		return nil, err
	}
	// Cancelling an expired proposal is allowed, it only tidies up.
	if err := c.verify(ctx, db, w, p, ActionCancel, msg.Signer, msg.Signature); err != nil {
		return nil, err
	}
	p.Status = ProposalCancelled
	if err := c.proposals.Put(db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// IsTxValid returns true if the proposal exists, was not cancelled and has
// at least as many approvals as the wallet threshold. Unknown wallets and
// proposals are not valid.
func (c Controller) IsTxValid(db weave.ReadOnlyKVStore, id []byte, txID uint64) (bool, error) {
	w, err := c.wallets.GetWallet(db, id)
	if err != nil || w == nil {
		return false, err
	}
	p, err := c.proposals.GetProposal(db, id, txID)
	if err != nil || p == nil {
		return false, err
	}
	if p.Status == ProposalCancelled {
		return false, nil
	}
	return uint64(len(p.Approvals)) >= uint64(w.Threshold), nil
}

// Proposal returns the stored proposal or nil.
func (c Controller) Proposal(db weave.ReadOnlyKVStore, id []byte, txID uint64) (*Proposal, error) {
	return c.proposals.GetProposal(db, id, txID)
}

// Proposals returns all proposals of a wallet ordered by id.
func (c Controller) Proposals(db weave.ReadOnlyKVStore, id []byte) ([]*Proposal, error) {
	return c.proposals.ByWallet(db, id)
}

// Summarize renders the proposal description with the stored currency
// configuration. It never writes.
func (c Controller) Summarize(db weave.ReadOnlyKVStore, id []byte, txID uint64, kind string, amount uint64) (string, error) {
	conf, err := loadConfiguration(db)
	if err != nil {
		return "", err
	}
	return Summarize(conf, id, txID, kind, amount), nil
}

// CurrentTime returns the time of the block being processed.
func CurrentTime(ctx weave.Context) (weave.UnixTime, error) {
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return 0, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return weave.AsUnixTime(now), nil
}

// CurrentHeight returns the height of the block being processed.
func CurrentHeight(ctx weave.Context) (int64, error) {
	h, ok := weave.GetHeight(ctx)
	if !ok {
		return 0, errors.Wrap(errors.ErrHuman, "block height not present in the context")
	}
	return h, nil
}

func (c Controller) proposal(db weave.ReadOnlyKVStore, id []byte, txID uint64) (*Proposal, error) {
	p, err := c.proposals.GetProposal(db, id, txID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.Wrapf(ErrTxNotFound, "wallet %X tx #%d", id, txID)
	}
	return p, nil
}

// openProposal loads a wallet and one of its proposals that can still be
// approved or executed.
func (c Controller) openProposal(ctx weave.Context, db weave.ReadOnlyKVStore, id []byte, txID uint64) (*Wallet, *Proposal, error) {
	w, err := c.Wallet(db, id)
	if err != nil {
		return nil, nil, err
	}
	p, err := c.proposal(db, id, txID)
	if err != nil {
		return nil, nil, err
	}
	if err := checkPending(p); err != nil {
		return nil, nil, err
	}
	now, err := CurrentTime(ctx)
	if err != nil {
		return nil, nil, err
	}
	if p.IsExpired(now) {
		return nil, nil, errors.Wrapf(ErrExpired, "expired at %s", p.ExpiresAt)
	}
	return w, p, nil
}

func checkPending(p *Proposal) error {
	switch p.Status {
	case ProposalExecuted:
		return errors.Wrapf(ErrTxExecuted, "tx #%d", p.TxID)
	case ProposalCancelled:
		return errors.Wrapf(ErrTxCancelled, "tx #%d", p.TxID)
	}
	return nil
}

// verify checks membership of the signer and its signature over the sign
// bytes of the action.
func (c Controller) verify(ctx weave.Context, db weave.ReadOnlyKVStore, w *Wallet, p *Proposal, action string, signer, sig []byte) error {
	ok, err := c.IsValidSigner(db, w.ID, signer)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrap(ErrInvalidSigner, "not a wallet signer")
	}
	conf, err := loadConfiguration(db)
	if err != nil {
		return err
	}
	msg, err := SignBytes(action, weave.GetChainID(ctx), conf, p)
	if err != nil {
		return err
	}
	if !crypto.PublicKey(signer).Verify(msg, sig) {
		return errors.Wrap(ErrInvalidSignature, "signature does not match")
	}
	return nil
}
