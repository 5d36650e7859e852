package multisig

import (
	"bytes"
	"encoding/hex"

	"github.com/iov-one/pkmsig/codec"
	"github.com/iov-one/pkmsig/crypto"
	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/orm"
	"github.com/iov-one/pkmsig/weave"
)

const (
	// WalletIDLength is the size of every wallet identifier.
	WalletIDLength = 32
	// MaxNameLength is the maximum number of characters in a wallet name.
	MaxNameLength = 64
	// MaxSigners is the maximum number of signers a wallet may have.
	MaxSigners = 20
	// MaxKindLength is the maximum number of characters of a proposal kind.
	MaxKindLength = 32
	// MaxMemoLength is the maximum number of characters of a proposal memo.
	MaxMemoLength = 128
)

// Wallet is a multisignature account. Only the balance changes after
// creation.
type Wallet struct {
	ID        []byte
	Name      string
	Threshold uint32
	// Signers are compressed public keys in creation order.
	Signers   [][]byte
	Balance   uint64
	CreatedAt weave.UnixTime
}

var _ orm.Model = (*Wallet)(nil)

func (w *Wallet) Marshal() ([]byte, error) {
	return codec.NewWriter().
		Bytes(1, w.ID).
		String(2, w.Name).
		Uint64(3, uint64(w.Threshold)).
		RepeatedBytes(4, w.Signers).
		Uint64(5, w.Balance).
		Int64(6, int64(w.CreatedAt)).
		Result()
}

func (w *Wallet) Unmarshal(raw []byte) error {
	*w = Wallet{}
	r := codec.NewReader(raw)
	for r.More() {
		field, wire, err := r.Key()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			w.ID, err = r.Bytes(wire)
		case 2:
			w.Name, err = r.String(wire)
		case 3:
			var v uint64
			v, err = r.Uint64(wire)
			w.Threshold = uint32(v)
		case 4:
			var s []byte
			s, err = r.Bytes(wire)
			w.Signers = append(w.Signers, s)
		case 5:
			w.Balance, err = r.Uint64(wire)
		case 6:
			var v int64
			v, err = r.Int64(wire)
			w.CreatedAt = weave.UnixTime(v)
		default:
			err = r.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the wallet configuration. The threshold is checked
// first so that a bad threshold is always reported as such.
func (w *Wallet) Validate() error {
	if err := validateWalletConfig(w.ID, w.Name, w.Threshold, w.Signers); err != nil {
		return err
	}
	return w.CreatedAt.Validate()
}

// SignerIndex returns the position of the key in the signer list or -1.
func (w *Wallet) SignerIndex(pubkey []byte) int {
	for i, s := range w.Signers {
		if bytes.Equal(s, pubkey) {
			return i
		}
	}
	return -1
}

// Condition is the permission of the wallet itself.
func (w *Wallet) Condition() weave.Condition {
	return WalletCondition(w.ID)
}

// Address is the address funds of the wallet are kept under.
func (w *Wallet) Address() weave.Address {
	return w.Condition().Address()
}

// WalletCondition returns the condition of the wallet with the given id.
func WalletCondition(id []byte) weave.Condition {
	return weave.NewCondition("multisig", "wallet", id)
}

func validateWalletConfig(id []byte, name string, threshold uint32, signers [][]byte) error {
	if threshold == 0 || int(threshold) > len(signers) {
		return errors.Wrapf(ErrInvalidThreshold, "threshold %d for %d signers", threshold, len(signers))
	}
	if err := validateWalletID(id); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	if len(signers) > MaxSigners {
		return errors.Wrapf(ErrInvalidSigner, "at most %d signers allowed", MaxSigners)
	}
	seen := make(map[string]struct{}, len(signers))
	for i, s := range signers {
		if _, err := crypto.ParsePublicKey(s); err != nil {
			return errors.Wrapf(ErrInvalidSigner, "signer %d: %s", i, err)
		}
		if _, ok := seen[string(s)]; ok {
			return errors.Wrapf(ErrDuplicateSigner, "signer %d", i)
		}
		seen[string(s)] = struct{}{}
	}
	return nil
}

func validateWalletID(id []byte) error {
	if len(id) != WalletIDLength {
		return errors.Wrapf(errors.ErrInput, "wallet id must be %d bytes, got %d", WalletIDLength, len(id))
	}
	return nil
}

func validateName(name string) error {
	if len(name) == 0 || len(name) > MaxNameLength {
		return errors.Wrapf(ErrInvalidName, "name must be 1 to %d characters", MaxNameLength)
	}
	for _, c := range []byte(name) {
		if c < 0x20 || c > 0x7e {
			return errors.Wrap(ErrInvalidName, "name must be printable ASCII")
		}
	}
	return nil
}

func validateKind(kind string) error {
	if len(kind) == 0 || len(kind) > MaxKindLength {
		return errors.Wrapf(ErrInvalidKind, "kind must be 1 to %d characters", MaxKindLength)
	}
	for _, c := range []byte(kind) {
		if (c < 'A' || c > 'Z') && c != '_' {
			return errors.Wrapf(ErrInvalidKind, "%q: only A-Z and _ allowed", kind)
		}
	}
	return nil
}

func validateMemo(memo string) error {
	if len(memo) > MaxMemoLength {
		return errors.Wrapf(errors.ErrInput, "memo longer than %d characters", MaxMemoLength)
	}
	return nil
}

// ProposalStatus is the state of a proposal.
type ProposalStatus int32

const (
	ProposalPending   ProposalStatus = 1
	ProposalExecuted  ProposalStatus = 2
	ProposalCancelled ProposalStatus = 3
)

var statusNames = map[ProposalStatus]string{
	ProposalPending:   "pending",
	ProposalExecuted:  "executed",
	ProposalCancelled: "cancelled",
}

func (s ProposalStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "invalid"
}

// MarshalText renders the status name in JSON.
func (s ProposalStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Proposal is a request to spend funds of a wallet.
type Proposal struct {
	WalletID  []byte
	TxID      uint64
	Kind      string
	Amount    uint64
	Recipient weave.Address
	Memo      string
	// Approvals holds the public keys of the signers that approved, in
	// approval order.
	Approvals  [][]byte
	Status     ProposalStatus
	CreatedAt  weave.UnixTime
	ExpiresAt  weave.UnixTime
	ExecutedAt weave.UnixTime
}

var _ orm.Model = (*Proposal)(nil)

func (p *Proposal) Marshal() ([]byte, error) {
	return codec.NewWriter().
		Bytes(1, p.WalletID).
		Uint64(2, p.TxID).
		String(3, p.Kind).
		Uint64(4, p.Amount).
		Bytes(5, p.Recipient).
		String(6, p.Memo).
		RepeatedBytes(7, p.Approvals).
		Int64(8, int64(p.Status)).
		Int64(9, int64(p.CreatedAt)).
		Int64(10, int64(p.ExpiresAt)).
		Int64(11, int64(p.ExecutedAt)).
		Result()
}

func (p *Proposal) Unmarshal(raw []byte) error {
	*p = Proposal{}
	r := codec.NewReader(raw)
	for r.More() {
		field, wire, err := r.Key()
		if err != nil {
			return err
		}
		var v int64
		switch field {
		case 1:
			p.WalletID, err = r.Bytes(wire)
		case 2:
			p.TxID, err = r.Uint64(wire)
		case 3:
			p.Kind, err = r.String(wire)
		case 4:
			p.Amount, err = r.Uint64(wire)
		case 5:
			p.Recipient, err = r.Bytes(wire)
		case 6:
			p.Memo, err = r.String(wire)
		case 7:
			var a []byte
			a, err = r.Bytes(wire)
			p.Approvals = append(p.Approvals, a)
		case 8:
			v, err = r.Int64(wire)
			p.Status = ProposalStatus(v)
		case 9:
			v, err = r.Int64(wire)
			p.CreatedAt = weave.UnixTime(v)
		case 10:
			v, err = r.Int64(wire)
			p.ExpiresAt = weave.UnixTime(v)
		case 11:
			v, err = r.Int64(wire)
			p.ExecutedAt = weave.UnixTime(v)
		default:
			err = r.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Proposal) Validate() error {
	if err := validateWalletID(p.WalletID); err != nil {
		return err
	}
	if p.TxID == 0 {
		return errors.Wrap(errors.ErrModel, "tx id must be positive")
	}
	if err := validateKind(p.Kind); err != nil {
		return err
	}
	if err := p.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	if err := validateMemo(p.Memo); err != nil {
		return err
	}
	if _, ok := statusNames[p.Status]; !ok {
		return errors.Wrapf(errors.ErrModel, "invalid status %d", p.Status)
	}
	seen := make(map[string]struct{}, len(p.Approvals))
	for _, a := range p.Approvals {
		if len(a) != crypto.PubKeyLength {
			return errors.Wrap(ErrInvalidSigner, "approval key length")
		}
		if _, ok := seen[string(a)]; ok {
			return errors.Wrap(ErrAlreadyApproved, "duplicated approval")
		}
		seen[string(a)] = struct{}{}
	}
	for _, t := range []weave.UnixTime{p.CreatedAt, p.ExpiresAt, p.ExecutedAt} {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasApproved returns true if the key already approved this proposal.
func (p *Proposal) HasApproved(pubkey []byte) bool {
	for _, a := range p.Approvals {
		if bytes.Equal(a, pubkey) {
			return true
		}
	}
	return false
}

// IsExpired returns true if the proposal has a deadline and it has passed
// at the given time.
func (p *Proposal) IsExpired(now weave.UnixTime) bool {
	return !p.ExpiresAt.IsZero() && p.ExpiresAt <= now
}

// SignerRef points from a (wallet, public key) pair to the position of the
// key in the wallet signer list.
type SignerRef struct {
	WalletID []byte
	PubKey   []byte
	Position uint32
}

var _ orm.Model = (*SignerRef)(nil)

func (s *SignerRef) Marshal() ([]byte, error) {
	return codec.NewWriter().
		Bytes(1, s.WalletID).
		Bytes(2, s.PubKey).
		Uint64(3, uint64(s.Position)).
		Result()
}

func (s *SignerRef) Unmarshal(raw []byte) error {
	*s = SignerRef{}
	r := codec.NewReader(raw)
	for r.More() {
		field, wire, err := r.Key()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			s.WalletID, err = r.Bytes(wire)
		case 2:
			s.PubKey, err = r.Bytes(wire)
		case 3:
			var v uint64
			v, err = r.Uint64(wire)
			s.Position = uint32(v)
		default:
			err = r.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SignerRef) Validate() error {
	if err := validateWalletID(s.WalletID); err != nil {
		return err
	}
	if len(s.PubKey) != crypto.PubKeyLength {
		return errors.Wrap(ErrInvalidSigner, "public key length")
	}
	if s.Position >= MaxSigners {
		return errors.Wrap(ErrIndexOutOfRange, "signer position")
	}
	return nil
}

// WalletBucket stores wallets by id.
type WalletBucket struct {
	orm.Bucket
}

// NewWalletBucket returns a bucket for managing wallets.
func NewWalletBucket() WalletBucket {
	return WalletBucket{
		Bucket: orm.NewBucket("wallet", orm.NewSimpleObj(nil, &Wallet{})),
	}
}

// GetWallet returns the wallet or nil if it does not exist.
func (b WalletBucket) GetWallet(db weave.ReadOnlyKVStore, id []byte) (*Wallet, error) {
	obj, err := b.Get(db, id)
	if err != nil || obj == nil {
		return nil, err
	}
	w, ok := obj.Value().(*Wallet)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return w, nil
}

// Put stores the wallet under its id.
func (b WalletBucket) Put(db weave.KVStore, w *Wallet) error {
	return b.Save(db, orm.NewSimpleObj(w.ID, w))
}

// SignerBucket indexes the signers of all wallets so that membership
// checks do not need to load the wallet.
type SignerBucket struct {
	orm.Bucket
}

// NewSignerBucket returns a bucket for the signer index.
func NewSignerBucket() SignerBucket {
	return SignerBucket{
		Bucket: orm.NewBucket("signer", orm.NewSimpleObj(nil, &SignerRef{})),
	}
}

func signerKey(walletID, pubkey []byte) []byte {
	key := make([]byte, 0, len(walletID)+len(pubkey))
	return append(append(key, walletID...), pubkey...)
}

// Index adds all signers of the wallet.
func (b SignerBucket) Index(db weave.KVStore, w *Wallet) error {
	for i, s := range w.Signers {
		ref := &SignerRef{WalletID: w.ID, PubKey: s, Position: uint32(i)}
		if err := b.Save(db, orm.NewSimpleObj(signerKey(w.ID, s), ref)); err != nil {
			return errors.Wrapf(err, "index signer %d", i)
		}
	}
	return nil
}

// Lookup returns the reference of the key within the wallet or nil.
func (b SignerBucket) Lookup(db weave.ReadOnlyKVStore, walletID, pubkey []byte) (*SignerRef, error) {
	obj, err := b.Get(db, signerKey(walletID, pubkey))
	if err != nil || obj == nil {
		return nil, err
	}
	ref, ok := obj.Value().(*SignerRef)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return ref, nil
}

// ProposalBucket stores proposals under wallet id followed by the 8 byte
// big endian tx id, so all proposals of a wallet share a prefix.
type ProposalBucket struct {
	orm.Bucket
}

// NewProposalBucket returns a bucket for managing proposals.
func NewProposalBucket() ProposalBucket {
	return ProposalBucket{
		Bucket: orm.NewBucket("proposal", orm.NewSimpleObj(nil, &Proposal{})),
	}
}

// ProposalKey returns the key of a proposal within the bucket.
func ProposalKey(walletID []byte, txID uint64) []byte {
	key := make([]byte, 0, len(walletID)+8)
	return append(append(key, walletID...), codec.EncodeSequence(txID)...)
}

func (b ProposalBucket) txSequence(walletID []byte) orm.Sequence {
	return b.Sequence(hex.EncodeToString(walletID))
}

// NextTxID reserves the next proposal id of the wallet. Ids start at 1.
func (b ProposalBucket) NextTxID(db weave.KVStore, walletID []byte) (uint64, error) {
	seq := b.txSequence(walletID)
	return seq.NextInt(db)
}

// TxCount returns the number of proposals ever created for the wallet.
func (b ProposalBucket) TxCount(db weave.ReadOnlyKVStore, walletID []byte) (uint64, error) {
	seq := b.txSequence(walletID)
	return seq.Latest(db)
}

// GetProposal returns the proposal or nil if it does not exist.
func (b ProposalBucket) GetProposal(db weave.ReadOnlyKVStore, walletID []byte, txID uint64) (*Proposal, error) {
	obj, err := b.Get(db, ProposalKey(walletID, txID))
	if err != nil || obj == nil {
		return nil, err
	}
	p, ok := obj.Value().(*Proposal)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return p, nil
}

// Put stores the proposal.
func (b ProposalBucket) Put(db weave.KVStore, p *Proposal) error {
	return b.Save(db, orm.NewSimpleObj(ProposalKey(p.WalletID, p.TxID), p))
}

// ByWallet returns all proposals of the wallet ordered by tx id.
func (b ProposalBucket) ByWallet(db weave.ReadOnlyKVStore, walletID []byte) ([]*Proposal, error) {
	objs, err := b.GetPrefix(db, walletID)
	if err != nil {
		return nil, err
	}
	res := make([]*Proposal, 0, len(objs))
	for _, obj := range objs {
		p, ok := obj.Value().(*Proposal)
		if !ok {
			return nil, errors.WithType(errors.ErrModel, obj.Value())
		}
		res = append(res, p)
	}
	return res, nil
}
