package multisig

import (
	"github.com/iov-one/pkmsig/codec"
	"github.com/iov-one/pkmsig/crypto"
	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weave"
)

// Message paths, used by the router.
const (
	pathCreateWalletMsg = "multisig/create"
	pathDepositMsg      = "multisig/deposit"
	pathProposeTxMsg    = "multisig/propose"
	pathApproveTxMsg    = "multisig/approve"
	pathExecuteTxMsg    = "multisig/execute"
	pathCancelTxMsg     = "multisig/cancel"
)

// CreateWalletMsg registers a new wallet.
type CreateWalletMsg struct {
	ID        []byte
	Name      string
	Threshold uint32
	Signers   [][]byte
}

var _ weave.Msg = (*CreateWalletMsg)(nil)

func (CreateWalletMsg) Path() string {
	return pathCreateWalletMsg
}

// Validate checks the threshold before anything else.
func (m *CreateWalletMsg) Validate() error {
	return validateWalletConfig(m.ID, m.Name, m.Threshold, m.Signers)
}

func (m *CreateWalletMsg) Marshal() ([]byte, error) {
	return codec.NewWriter().
		Bytes(1, m.ID).
		String(2, m.Name).
		Uint64(3, uint64(m.Threshold)).
		RepeatedBytes(4, m.Signers).
		Result()
}

func (m *CreateWalletMsg) Unmarshal(raw []byte) error {
	*m = CreateWalletMsg{}
	r := codec.NewReader(raw)
	for r.More() {
		field, wire, err := r.Key()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			m.ID, err = r.Bytes(wire)
		case 2:
			m.Name, err = r.String(wire)
		case 3:
			var v uint64
			v, err = r.Uint64(wire)
			m.Threshold = uint32(v)
		case 4:
			var s []byte
			s, err = r.Bytes(wire)
			m.Signers = append(m.Signers, s)
		default:
			err = r.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// DepositMsg adds funds to a wallet.
type DepositMsg struct {
	WalletID []byte
	Amount   uint64
}

var _ weave.Msg = (*DepositMsg)(nil)

func (DepositMsg) Path() string {
	return pathDepositMsg
}

// Validate only checks the message is not empty. An unknown wallet must be
// reported before a bad amount, so the rest is checked by Controller.Deposit.
func (m *DepositMsg) Validate() error {
	if len(m.WalletID) == 0 {
		return errors.Wrap(ErrWalletNotFound, "missing wallet id")
	}
	return nil
}

func (m *DepositMsg) Marshal() ([]byte, error) {
	return codec.NewWriter().
		Bytes(1, m.WalletID).
		Uint64(2, m.Amount).
		Result()
}

func (m *DepositMsg) Unmarshal(raw []byte) error {
	*m = DepositMsg{}
	r := codec.NewReader(raw)
	for r.More() {
		field, wire, err := r.Key()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			m.WalletID, err = r.Bytes(wire)
		case 2:
			m.Amount, err = r.Uint64(wire)
		default:
			err = r.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ProposeTxMsg opens a new spending proposal.
type ProposeTxMsg struct {
	WalletID  []byte
	Kind      string
	Amount    uint64
	Recipient weave.Address
	Memo      string
}

var _ weave.Msg = (*ProposeTxMsg)(nil)

func (ProposeTxMsg) Path() string {
	return pathProposeTxMsg
}

func (m *ProposeTxMsg) Validate() error {
	if err := validateWalletID(m.WalletID); err != nil {
		return err
	}
	if err := validateKind(m.Kind); err != nil {
		return err
	}
	if err := m.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	return validateMemo(m.Memo)
}

func (m *ProposeTxMsg) Marshal() ([]byte, error) {
	return codec.NewWriter().
		Bytes(1, m.WalletID).
		String(2, m.Kind).
		Uint64(3, m.Amount).
		Bytes(4, m.Recipient).
		String(5, m.Memo).
		Result()
}

func (m *ProposeTxMsg) Unmarshal(raw []byte) error {
	*m = ProposeTxMsg{}
	r := codec.NewReader(raw)
	for r.More() {
		field, wire, err := r.Key()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			m.WalletID, err = r.Bytes(wire)
		case 2:
			m.Kind, err = r.String(wire)
		case 3:
			m.Amount, err = r.Uint64(wire)
		case 4:
			m.Recipient, err = r.Bytes(wire)
		case 5:
			m.Memo, err = r.String(wire)
		default:
			err = r.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ApproveTxMsg carries one signer approval of a proposal.
type ApproveTxMsg struct {
	WalletID  []byte
	TxID      uint64
	Signer    []byte
	Signature []byte
}

var _ weave.Msg = (*ApproveTxMsg)(nil)

func (ApproveTxMsg) Path() string {
	return pathApproveTxMsg
}

func (m *ApproveTxMsg) Validate() error {
	return validateSignedTxMsg(m.WalletID, m.TxID, m.Signer, m.Signature)
}

func (m *ApproveTxMsg) Marshal() ([]byte, error) {
	return marshalSignedTxMsg(m.WalletID, m.TxID, m.Signer, m.Signature)
}

func (m *ApproveTxMsg) Unmarshal(raw []byte) error {
	*m = ApproveTxMsg{}
	return unmarshalSignedTxMsg(raw, &m.WalletID, &m.TxID, &m.Signer, &m.Signature)
}

// CancelTxMsg rejects a pending proposal on behalf of one signer.
type CancelTxMsg struct {
	WalletID  []byte
	TxID      uint64
	Signer    []byte
	Signature []byte
}

var _ weave.Msg = (*CancelTxMsg)(nil)

func (CancelTxMsg) Path() string {
	return pathCancelTxMsg
}

func (m *CancelTxMsg) Validate() error {
	return validateSignedTxMsg(m.WalletID, m.TxID, m.Signer, m.Signature)
}

func (m *CancelTxMsg) Marshal() ([]byte, error) {
	return marshalSignedTxMsg(m.WalletID, m.TxID, m.Signer, m.Signature)
}

func (m *CancelTxMsg) Unmarshal(raw []byte) error {
	*m = CancelTxMsg{}
	return unmarshalSignedTxMsg(raw, &m.WalletID, &m.TxID, &m.Signer, &m.Signature)
}

// ExecuteTxMsg executes an approved proposal.
type ExecuteTxMsg struct {
	WalletID []byte
	TxID     uint64
}

var _ weave.Msg = (*ExecuteTxMsg)(nil)

func (ExecuteTxMsg) Path() string {
	return pathExecuteTxMsg
}

func (m *ExecuteTxMsg) Validate() error {
	if err := validateWalletID(m.WalletID); err != nil {
		return err
	}
	if m.TxID == 0 {
		return errors.Wrap(ErrTxNotFound, "tx id must be positive")
	}
	return nil
}

func (m *ExecuteTxMsg) Marshal() ([]byte, error) {
	return codec.NewWriter().
		Bytes(1, m.WalletID).
		Uint64(2, m.TxID).
		Result()
}

func (m *ExecuteTxMsg) Unmarshal(raw []byte) error {
	*m = ExecuteTxMsg{}
	r := codec.NewReader(raw)
	for r.More() {
		field, wire, err := r.Key()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			m.WalletID, err = r.Bytes(wire)
		case 2:
			m.TxID, err = r.Uint64(wire)
		default:
			err = r.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func validateSignedTxMsg(walletID []byte, txID uint64, signer, sig []byte) error {
	if err := validateWalletID(walletID); err != nil {
		return err
	}
	if txID == 0 {
		return errors.Wrap(ErrTxNotFound, "tx id must be positive")
	}
	if _, err := crypto.ParsePublicKey(signer); err != nil {
		return errors.Wrapf(ErrInvalidSigner, "signer: %s", err)
	}
	if _, _, err := crypto.ParseSignature(sig); err != nil {
		return errors.Wrapf(ErrInvalidSignature, "%s", err)
	}
	return nil
}

func marshalSignedTxMsg(walletID []byte, txID uint64, signer, sig []byte) ([]byte, error) {
	return codec.NewWriter().
		Bytes(1, walletID).
		Uint64(2, txID).
		Bytes(3, signer).
		Bytes(4, sig).
		Result()
}

func unmarshalSignedTxMsg(raw []byte, walletID *[]byte, txID *uint64, signer, sig *[]byte) error {
	r := codec.NewReader(raw)
	for r.More() {
		field, wire, err := r.Key()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			*walletID, err = r.Bytes(wire)
		case 2:
			*txID, err = r.Uint64(wire)
		case 3:
			*signer, err = r.Bytes(wire)
		case 4:
			*sig, err = r.Bytes(wire)
		default:
			err = r.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
