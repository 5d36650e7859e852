package app

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/iov-one/pkmsig/codec"
	"github.com/iov-one/pkmsig/weave"
	"github.com/iov-one/pkmsig/weavetest"
	"github.com/iov-one/pkmsig/x/multisig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const testChainID = "pkmsig-test"

var genesisTime = time.Date(2021, time.March, 4, 12, 0, 0, 0, time.UTC)

func txBytes(t testing.TB, msg weave.Msg) []byte {
	t.Helper()
	tx, err := NewTx(msg)
	require.NoError(t, err)
	raw, err := tx.Marshal()
	require.NoError(t, err)
	return raw
}

func query(t testing.TB, a BaseApp, path string, data []byte) [][]byte {
	t.Helper()
	res := a.Query(abci.RequestQuery{Path: path, Data: data})
	require.Equal(t, uint32(0), res.Code, res.Log)
	var values ResultSet
	require.NoError(t, values.Unmarshal(res.Value))
	return values.Results
}

func block(a BaseApp, height int64, txs ...[]byte) ([]abci.ResponseDeliverTx, []byte) {
	a.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{
		Height:  height,
		ChainID: testChainID,
		Time:    genesisTime.Add(time.Duration(height) * time.Minute),
	}})
	res := make([]abci.ResponseDeliverTx, len(txs))
	for i, tx := range txs {
		res[i] = a.DeliverTx(tx)
	}
	a.EndBlock(abci.RequestEndBlock{Height: height})
	return res, a.Commit().Data
}

func TestApplication(t *testing.T) {
	kv, err := CommitKVStore("")
	require.NoError(t, err)
	defer kv.Close()
	a := Application(kv, log.NewNopLogger(), false)

	a.InitChain(abci.RequestInitChain{
		Time:          genesisTime,
		ChainId:       testChainID,
		AppStateBytes: []byte(`{"conf": {"multisig": {"bech32_prefix": "tpkm", "ticker": "STX", "decimals": 6}}}`),
	})
	assert.Equal(t, testChainID, a.GetChainID())

	keys := weavetest.SeedKeys("app", 2)
	id := []byte("0123456789abcdef0123456789abcdef")
	create := txBytes(t, &multisig.CreateWalletMsg{
		ID:        id,
		Name:      "app wallet",
		Threshold: 2,
		Signers:   weavetest.PubKeys(keys...),
	})

	// Check must pass before delivery.
	chres := a.CheckTx(create)
	require.Equal(t, uint32(0), chres.Code, chres.Log)

	res, hash1 := block(a, 1, create)
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	assert.Equal(t, id, res[0].Data)
	assert.NotEmpty(t, hash1)

	info := query(t, a, "/wallets/info", id)
	require.Len(t, info, 1)
	var wi multisig.WalletInfo
	require.NoError(t, json.Unmarshal(info[0], &wi))
	assert.Equal(t, uint32(2), wi.Threshold)
	assert.Equal(t, "tpkm1", wi.Address[:5])

	other := []byte("fedcba9876543210fedcba9876543210")
	res, hash2 := block(a, 2,
		txBytes(t, &multisig.DepositMsg{WalletID: other, Amount: 5}),
		txBytes(t, &multisig.CreateWalletMsg{ID: other, Name: "x", Threshold: 0, Signers: weavetest.PubKeys(keys...)}),
		create,
		txBytes(t, &multisig.DepositMsg{WalletID: id, Amount: 100}),
		txBytes(t, &multisig.ProposeTxMsg{WalletID: id, Kind: "TRANSFER", Amount: 60, Recipient: weavetest.SeedKey("to").PublicKey().Address()}),
	)
	assert.Equal(t, uint32(5003), res[0].Code)
	assert.Equal(t, uint32(5009), res[1].Code)
	assert.Equal(t, uint32(5002), res[2].Code)
	require.Equal(t, uint32(0), res[3].Code, res[3].Log)
	assert.Equal(t, codec.EncodeSequence(100), res[3].Data)
	require.Equal(t, uint32(0), res[4].Code, res[4].Log)
	assert.Equal(t, codec.EncodeSequence(1), res[4].Data)
	assert.NotEqual(t, hash1, hash2)

	raw := query(t, a, "/proposals", multisig.ProposalKey(id, 1))
	require.Len(t, raw, 1)
	var p multisig.Proposal
	require.NoError(t, p.Unmarshal(raw[0]))

	approve := func(key int, sig []byte) []byte {
		return txBytes(t, &multisig.ApproveTxMsg{
			WalletID:  id,
			TxID:      1,
			Signer:    keys[key].PublicKey(),
			Signature: sig,
		})
	}
	signBytes, err := multisig.SignBytes(multisig.ActionApprove, testChainID, multisig.Configuration{
		Bech32Prefix: "tpkm", Ticker: "STX", Decimals: 6,
	}, &p)
	require.NoError(t, err)

	res, _ = block(a, 3,
		approve(0, weavetest.MustSign(keys[0], signBytes)),
		txBytes(t, &multisig.ExecuteTxMsg{WalletID: id, TxID: 1}),
		approve(1, weavetest.MustSign(keys[0], signBytes)),
		approve(1, weavetest.MustSign(keys[1], signBytes)),
		txBytes(t, &multisig.ExecuteTxMsg{WalletID: id, TxID: 1}),
		txBytes(t, &multisig.ExecuteTxMsg{WalletID: id, TxID: 1}),
	)
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	assert.Equal(t, uint32(5016), res[1].Code)
	assert.Equal(t, uint32(5014), res[2].Code)
	require.Equal(t, uint32(0), res[3].Code, res[3].Log)
	assert.Equal(t, codec.EncodeSequence(2), res[3].Data)
	require.Equal(t, uint32(0), res[4].Code, res[4].Log)
	assert.Equal(t, uint32(5012), res[5].Code)

	valid := query(t, a, "/proposals/valid", append(append([]byte{}, id...), codec.EncodeSequence(1)...))
	assert.Equal(t, []byte{1}, valid[0])
	valid = query(t, a, "/proposals/valid", append(append([]byte{}, id...), codec.EncodeSequence(2)...))
	assert.Equal(t, []byte{0}, valid[0])

	require.NoError(t, json.Unmarshal(query(t, a, "/wallets/info", id)[0], &wi))
	assert.Equal(t, uint64(40), wi.Balance)
	assert.Equal(t, uint64(1), wi.TxCount)

	now := query(t, a, "/time", nil)
	assert.Equal(t, uint64(genesisTime.Add(3*time.Minute).Unix()), binary.BigEndian.Uint64(now[0]))

	summary := query(t, a, "/summary", []byte(fmt.Sprintf(`{"id": "%x", "tx_id": 1, "kind": "TRANSFER", "amount": 60}`, id)))
	assert.Equal(t, fmt.Sprintf("multisig %x tx #1: TRANSFER 60 (0.000060 STX)", id), string(summary[0]))

	// A restarted application continues from the committed state.
	infoRes := a.Info(abci.RequestInfo{})
	restarted := Application(kv, log.NewNopLogger(), false)
	again := restarted.Info(abci.RequestInfo{})
	assert.Equal(t, int64(3), again.LastBlockHeight)
	assert.Equal(t, infoRes.LastBlockAppHash, again.LastBlockAppHash)
	assert.Equal(t, testChainID, restarted.GetChainID())
	assert.Len(t, query(t, restarted, "/wallets", id), 1)
}

func TestQueryErrors(t *testing.T) {
	kv, err := CommitKVStore("")
	require.NoError(t, err)
	defer kv.Close()
	a := Application(kv, log.NewNopLogger(), false)

	res := a.Query(abci.RequestQuery{Path: "/nothing"})
	assert.Equal(t, uint32(3), res.Code)

	res = a.Query(abci.RequestQuery{Path: "/wallets/signer", Data: []byte("short")})
	assert.Equal(t, uint32(14), res.Code)

	// nothing happened yet
	now := query(t, a, "/time", nil)
	assert.Equal(t, make([]byte, 8), now[0])
}

func TestUndecodableTx(t *testing.T) {
	kv, err := CommitKVStore("")
	require.NoError(t, err)
	defer kv.Close()
	a := Application(kv, log.NewNopLogger(), false)

	assert.Equal(t, uint32(14), a.CheckTx([]byte{0xff}).Code)
	assert.Equal(t, uint32(3), a.DeliverTx(txBytes(t, &weavetest.Msg{RoutePath: "other/path"})).Code)
}

func TestSplitPath(t *testing.T) {
	path, mod := splitPath("/proposals?prefix")
	assert.Equal(t, "/proposals", path)
	assert.Equal(t, "prefix", mod)

	path, mod = splitPath("/time")
	assert.Equal(t, "/time", path)
	assert.Equal(t, "", mod)
}
