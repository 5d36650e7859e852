package multisig

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/iov-one/pkmsig/weave"
	"github.com/shopspring/decimal"
)

// Summarize renders the human readable description of a proposal, for
// example
//
//	multisig 0a1b...ff tx #3: TRANSFER 1500000 (1.500000 STX)
//
// It is a pure function of its arguments. The proposal does not have to
// exist.
func Summarize(conf Configuration, walletID []byte, txID uint64, kind string, amount uint64) string {
	return fmt.Sprintf("multisig %s tx #%d: %s %d (%s %s)",
		hex.EncodeToString(walletID), txID, kind, amount,
		FormatAmount(amount, conf.Decimals), conf.Ticker)
}

// FormatAmount renders an amount in the smallest unit as a decimal number
// with the given precision.
func FormatAmount(amount uint64, decimals uint32) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
	return d.StringFixed(int32(decimals))
}

// SignBytes returns the message a signer must sign to approve or cancel
// the proposal. It binds the action, the chain and every field that
// influences execution.
func SignBytes(action, chainID string, conf Configuration, p *Proposal) ([]byte, error) {
	recipient, err := weave.Address(p.Recipient).Bech32(conf.Bech32Prefix)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("pkmsig/%s\nchain: %s\n%s\nto: %s\nmemo: %s",
		action, chainID,
		Summarize(conf, p.WalletID, p.TxID, p.Kind, p.Amount),
		recipient, p.Memo)
	return []byte(msg), nil
}

// Actions a signer can sign for.
const (
	ActionApprove = "approve"
	ActionCancel  = "cancel"
)
