package multisig

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"github.com/iov-one/pkmsig/crypto"
	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weave"
)

// Query responses of boolean queries.
var (
	queryTrue  = []byte{0x01}
	queryFalse = []byte{0x00}
)

// RegisterQuery register queries from buckets in this package
//
//	/wallets            wallet id -> wallet model
//	/wallets/info       wallet id -> WalletInfo as JSON
//	/wallets/signer     wallet id | 8 byte index -> public key
//	/wallets/is_signer  wallet id | public key -> 0x01 or 0x00
//	/proposals          wallet id | 8 byte tx id -> proposal model
//	/proposals/valid    wallet id | 8 byte tx id -> 0x01 or 0x00
//	/summary            SummaryRequest as JSON -> summary text
//
// Queries never fail because of missing data. Absent entities produce an
// empty result or 0x00.
func RegisterQuery(qr weave.QueryRouter) {
	ctrl := NewController()
	NewWalletBucket().Register("wallets", qr)
	NewProposalBucket().Register("proposals", qr)
	qr.Register("/wallets/info", walletInfoQuery{ctrl: ctrl})
	qr.Register("/wallets/signer", signerQuery{ctrl: ctrl})
	qr.Register("/wallets/is_signer", isSignerQuery{ctrl: ctrl})
	qr.Register("/proposals/valid", txValidQuery{ctrl: ctrl})
	qr.Register("/summary", summaryQuery{ctrl: ctrl})
}

func onlyKeyMod(mod string) error {
	if mod != weave.KeyQueryMod {
		return errors.Wrapf(errors.ErrInput, "unsupported mod %q", mod)
	}
	return nil
}

type walletInfoQuery struct {
	ctrl Controller
}

func (q walletInfoQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if err := onlyKeyMod(mod); err != nil {
		return nil, err
	}
	info, err := q.ctrl.GetWallet(db, data)
	if err != nil || info == nil {
		return nil, err
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return []weave.Model{weave.Pair(data, raw)}, nil
}

type signerQuery struct {
	ctrl Controller
}

func (q signerQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if err := onlyKeyMod(mod); err != nil {
		return nil, err
	}
	if len(data) != WalletIDLength+8 {
		return nil, errors.Wrap(errors.ErrInput, "want wallet id and 8 byte index")
	}
	id, index := data[:WalletIDLength], binary.BigEndian.Uint64(data[WalletIDLength:])
	key, err := q.ctrl.Signer(db, id, index)
	switch {
	case ErrWalletNotFound.Is(err), ErrIndexOutOfRange.Is(err):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return []weave.Model{weave.Pair(data, key)}, nil
}

type isSignerQuery struct {
	ctrl Controller
}

func (q isSignerQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if err := onlyKeyMod(mod); err != nil {
		return nil, err
	}
	if len(data) != WalletIDLength+crypto.PubKeyLength {
		return []weave.Model{weave.Pair(data, queryFalse)}, nil
	}
	ok, err := q.ctrl.IsValidSigner(db, data[:WalletIDLength], data[WalletIDLength:])
	if err != nil {
		return nil, err
	}
	return []weave.Model{weave.Pair(data, boolBytes(ok))}, nil
}

type txValidQuery struct {
	ctrl Controller
}

func (q txValidQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if err := onlyKeyMod(mod); err != nil {
		return nil, err
	}
	if len(data) != WalletIDLength+8 {
		return nil, errors.Wrap(errors.ErrInput, "want wallet id and 8 byte tx id")
	}
	ok, err := q.ctrl.IsTxValid(db, data[:WalletIDLength], binary.BigEndian.Uint64(data[WalletIDLength:]))
	if err != nil {
		return nil, err
	}
	return []weave.Model{weave.Pair(data, boolBytes(ok))}, nil
}

// SummaryRequest is the JSON payload of the /summary query.
type SummaryRequest struct {
	// WalletID is hex encoded.
	WalletID string `json:"id"`
	TxID     uint64 `json:"tx_id"`
	Kind     string `json:"kind"`
	Amount   uint64 `json:"amount"`
}

type summaryQuery struct {
	ctrl Controller
}

func (q summaryQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if err := onlyKeyMod(mod); err != nil {
		return nil, err
	}
	var req SummaryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "summary request: %s", err)
	}
	id, err := hex.DecodeString(req.WalletID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "wallet id is not hex")
	}
	text, err := q.ctrl.Summarize(db, id, req.TxID, req.Kind, req.Amount)
	if err != nil {
		return nil, err
	}
	return []weave.Model{weave.Pair(data, []byte(text))}, nil
}

func boolBytes(ok bool) []byte {
	if ok {
		return queryTrue
	}
	return queryFalse
}
