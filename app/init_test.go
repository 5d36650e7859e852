package app

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/gconf"
	"github.com/iov-one/pkmsig/store"
	"github.com/iov-one/pkmsig/weave"
	"github.com/iov-one/pkmsig/x/multisig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func TestGenInitOptions(t *testing.T) {
	conf := multisig.Configuration{
		Bech32Prefix: "pkm",
		Ticker:       "EUR",
		Decimals:     2,
		ProposalTTL:  600,
	}
	raw, err := GenInitOptions(conf)
	require.NoError(t, err)

	var opts weave.Options
	require.NoError(t, json.Unmarshal(raw, &opts))

	db := store.MemStore()
	require.NoError(t, Initializers().FromGenesis(opts, db))

	var loaded multisig.Configuration
	require.NoError(t, gconf.Load(db, multisig.ConfigurationName, &loaded))
	assert.Equal(t, conf, loaded)

	conf.Ticker = "x"
	_, err = GenInitOptions(conf)
	assert.True(t, errors.ErrInput.Is(err))
}

func TestGenerateApp(t *testing.T) {
	application, closeApp, err := GenerateApp("", log.NewNopLogger(), false)
	require.NoError(t, err)
	defer closeApp()

	info := application.Info(abci.RequestInfo{})
	assert.Equal(t, weave.Version(), info.Version)
	assert.Equal(t, int64(0), info.LastBlockHeight)
}

func TestExamples(t *testing.T) {
	for _, ex := range Examples() {
		raw, err := ex.Obj.Marshal()
		require.NoError(t, err, ex.Filename)
		assert.NotEmpty(t, raw, ex.Filename)

		if msg, ok := ex.Obj.(weave.Msg); ok {
			assert.NoError(t, msg.Validate(), ex.Filename)
		}
	}
}
