package multisig

import (
	"bytes"
	"testing"
	"time"

	"github.com/iov-one/pkmsig/crypto"
	"github.com/iov-one/pkmsig/store"
	"github.com/iov-one/pkmsig/weave"
	"github.com/iov-one/pkmsig/weavetest"
	"github.com/stretchr/testify/require"
)

var blockNow = time.Date(2021, time.March, 4, 12, 0, 0, 0, time.UTC)

func walletID(b byte) []byte {
	return bytes.Repeat([]byte{b}, WalletIDLength)
}

func testContext() weave.Context {
	return weavetest.Context(10, blockNow)
}

func recipient() weave.Address {
	return weavetest.SeedKey("recipient").PublicKey().Address()
}

// setup returns a store with a single wallet controlled by n seeded keys.
func setup(t testing.TB, id []byte, threshold uint32, n int) (weave.CacheableKVStore, []*crypto.PrivateKey) {
	t.Helper()
	db := store.MemStore()
	keys := weavetest.SeedKeys(string(id[:1]), n)
	_, err := NewController().CreateWallet(testContext(), db, &CreateWalletMsg{
		ID:        id,
		Name:      "team wallet",
		Threshold: threshold,
		Signers:   weavetest.PubKeys(keys...),
	})
	require.NoError(t, err)
	return db, keys
}

func sign(t testing.TB, db weave.ReadOnlyKVStore, action string, key *crypto.PrivateKey, p *Proposal) []byte {
	t.Helper()
	conf, err := loadConfiguration(db)
	require.NoError(t, err)
	msg, err := SignBytes(action, weavetest.ChainID, conf, p)
	require.NoError(t, err)
	return weavetest.MustSign(key, msg)
}

func approveMsg(t testing.TB, db weave.ReadOnlyKVStore, key *crypto.PrivateKey, p *Proposal) *ApproveTxMsg {
	t.Helper()
	return &ApproveTxMsg{
		WalletID:  p.WalletID,
		TxID:      p.TxID,
		Signer:    key.PublicKey(),
		Signature: sign(t, db, ActionApprove, key, p),
	}
}

func cancelMsg(t testing.TB, db weave.ReadOnlyKVStore, key *crypto.PrivateKey, p *Proposal) *CancelTxMsg {
	t.Helper()
	return &CancelTxMsg{
		WalletID:  p.WalletID,
		TxID:      p.TxID,
		Signer:    key.PublicKey(),
		Signature: sign(t, db, ActionCancel, key, p),
	}
}

// dump returns all the content of the store.
func dump(t testing.TB, db weave.ReadOnlyKVStore) []weave.Model {
	t.Helper()
	it, err := db.Iterator(nil, nil)
	require.NoError(t, err)
	models, err := store.ReadAll(it)
	require.NoError(t, err)
	return models
}
