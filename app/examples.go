package app

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/iov-one/pkmsig/commands"
	"github.com/iov-one/pkmsig/crypto"
	"github.com/iov-one/pkmsig/weave"
	"github.com/iov-one/pkmsig/x/multisig"
)

// we fix the private keys here for deterministic output with the same encoding
// these are not secure at all, but the only point is to check the format,
// which is easier when everything is reproduceable.
var (
	alice = makePrivKey("1234567890")
	bob   = makePrivKey("F00BA411")
	carol = makePrivKey("00CAFE00F00D")
)

// makePrivKey repeats the string as long as needed to get 64 digits, then
// parses it as hex.
func makePrivKey(seed string) *crypto.PrivateKey {
	rep := 64/len(seed) + 1
	in := strings.Repeat(seed, rep)[:64]
	bin, err := hex.DecodeString(in)
	if err != nil {
		panic(err)
	}
	return crypto.PrivKeyFromSeed(bin)
}

// Examples generates some example structs to dump out with testgen
func Examples() []commands.Example {
	walletID := bytes.Repeat([]byte("treasury"), multisig.WalletIDLength/8)
	signers := [][]byte{
		alice.PublicKey(),
		bob.PublicKey(),
		carol.PublicKey(),
	}

	create := &multisig.CreateWalletMsg{
		ID:        walletID,
		Name:      "Treasury",
		Threshold: 2,
		Signers:   signers,
	}
	deposit := &multisig.DepositMsg{
		WalletID: walletID,
		Amount:   1000000,
	}
	propose := &multisig.ProposeTxMsg{
		WalletID:  walletID,
		Kind:      "TRANSFER",
		Amount:    250000,
		Recipient: carol.PublicKey().Address(),
		Memo:      "Q3 payroll",
	}

	proposal := &multisig.Proposal{
		WalletID:  walletID,
		TxID:      1,
		Kind:      propose.Kind,
		Amount:    propose.Amount,
		Recipient: propose.Recipient,
		Memo:      propose.Memo,
		Status:    multisig.ProposalPending,
	}
	sig := mustSign(multisig.ActionApprove, proposal, alice)
	approve := &multisig.ApproveTxMsg{
		WalletID:  walletID,
		TxID:      1,
		Signer:    alice.PublicKey(),
		Signature: sig,
	}
	cancel := &multisig.CancelTxMsg{
		WalletID:  walletID,
		TxID:      1,
		Signer:    bob.PublicKey(),
		Signature: mustSign(multisig.ActionCancel, proposal, bob),
	}
	execute := &multisig.ExecuteTxMsg{
		WalletID: walletID,
		TxID:     1,
	}

	return []commands.Example{
		{Filename: "create_wallet_msg", Obj: create},
		{Filename: "deposit_msg", Obj: deposit},
		{Filename: "propose_tx_msg", Obj: propose},
		{Filename: "approve_tx_msg", Obj: approve},
		{Filename: "cancel_tx_msg", Obj: cancel},
		{Filename: "execute_tx_msg", Obj: execute},
		{Filename: "proposal", Obj: proposal},
		{Filename: "create_wallet_tx", Obj: mustTx(create)},
		{Filename: "approve_tx_tx", Obj: mustTx(approve)},
	}
}

// exampleChainID is used for all example signatures.
const exampleChainID = "pkmsig-example"

func mustSign(action string, p *multisig.Proposal, key *crypto.PrivateKey) []byte {
	msg, err := multisig.SignBytes(action, exampleChainID, multisig.DefaultConfiguration(), p)
	if err != nil {
		panic(err)
	}
	sig, err := key.Sign(msg)
	if err != nil {
		panic(err)
	}
	return sig
}

func mustTx(msg weave.Msg) *Tx {
	tx, err := NewTx(msg)
	if err != nil {
		panic(err)
	}
	return tx
}
