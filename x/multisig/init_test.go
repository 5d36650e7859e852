package multisig

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/gconf"
	"github.com/iov-one/pkmsig/store"
	"github.com/iov-one/pkmsig/weave"
	"github.com/iov-one/pkmsig/weavetest"
	"github.com/iov-one/pkmsig/weavetest/assert"
)

func TestGenesis(t *testing.T) {
	keys := weavetest.SeedKeys("genesis", 2)
	id := walletID(0x41)

	genesis := fmt.Sprintf(`{
		"conf": {
			"multisig": {"bech32_prefix": "tpkm", "ticker": "USD", "decimals": 2, "proposal_ttl": 3600}
		},
		"multisig": [
			{
				"id": %q,
				"name": "treasury",
				"threshold": 2,
				"signers": [%q, %q],
				"balance": 12345
			}
		]
	}`, hex.EncodeToString(id), hex.EncodeToString(keys[0].PublicKey()), hex.EncodeToString(keys[1].PublicKey()))

	var opts weave.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	var ini Initializer
	assert.Nil(t, ini.FromGenesis(opts, db))

	var conf Configuration
	assert.Nil(t, gconf.Load(db, ConfigurationName, &conf))
	assert.Equal(t, Configuration{Bech32Prefix: "tpkm", Ticker: "USD", Decimals: 2, ProposalTTL: 3600}, conf)

	ctrl := NewController()
	info, err := ctrl.GetWallet(db, id)
	assert.Nil(t, err)
	assert.Equal(t, uint64(12345), info.Balance)
	assert.Equal(t, "tpkm1", info.Address[:5])

	ok, err := ctrl.IsValidSigner(db, id, keys[1].PublicKey())
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	text, err := ctrl.Summarize(db, id, 1, "TRANSFER", 12345)
	assert.Nil(t, err)
	assert.Equal(t, "multisig "+hex.EncodeToString(id)+" tx #1: TRANSFER 12345 (123.45 USD)", text)
}

func TestGenesisErrors(t *testing.T) {
	key := hex.EncodeToString(weavetest.SeedKey("g").PublicKey())
	id := hex.EncodeToString(walletID(0x42))

	cases := map[string]struct {
		genesis string
		wantErr *errors.Error
	}{
		"empty genesis": {
			genesis: `{}`,
		},
		"invalid threshold": {
			genesis: fmt.Sprintf(`{"multisig": [{"id": %q, "name": "a", "threshold": 2, "signers": [%q]}]}`, id, key),
			wantErr: ErrInvalidThreshold,
		},
		"duplicated wallet": {
			genesis: fmt.Sprintf(`{"multisig": [
				{"id": %q, "name": "a", "threshold": 1, "signers": [%q]},
				{"id": %q, "name": "b", "threshold": 1, "signers": [%q]}
			]}`, id, key, id, key),
			wantErr: ErrWalletExists,
		},
		"invalid configuration": {
			genesis: `{"conf": {"multisig": {"bech32_prefix": "", "ticker": "USD"}}}`,
			wantErr: errors.ErrInput,
		},
		"not hex": {
			genesis: `{"multisig": [{"id": "xyz"}]}`,
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts weave.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.genesis), &opts))
			var ini Initializer
			err := ini.FromGenesis(opts, store.MemStore())
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
		})
	}
}
