package server

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/pkmsig/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

// setupHome creates a homedir to run inside, and copies the demo
// tendermint genesis there. It was created via `tendermint init`.
func setupHome(t *testing.T) (string, func()) {
	t.Helper()
	rootDir, err := ioutil.TempDir("", "pkmsig-cmd")
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(rootDir, "config"), 0755))

	raw, err := ioutil.ReadFile(filepath.Join("testdata", "genesis.json"))
	require.NoError(t, err)
	require.NoError(t, ioutil.WriteFile(GenesisPath(rootDir), raw, 0644))

	return rootDir, func() {
		os.RemoveAll(rootDir)
	}
}

func readAppState(t *testing.T, home string) (genesisDoc, json.RawMessage) {
	t.Helper()
	raw, err := ioutil.ReadFile(GenesisPath(home))
	require.NoError(t, err)
	var doc genesisDoc
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc, doc[appStateKey]
}

func genOptions(state string) GenOptions {
	return func(args []string) (json.RawMessage, error) {
		return json.RawMessage(state), nil
	}
}

func TestInitCmd(t *testing.T) {
	home, cleanup := setupHome(t)
	defer cleanup()
	logger := log.NewNopLogger()

	err := InitCmd(genOptions(`{"multisig":[]}`), logger, home, false, nil)
	require.NoError(t, err)

	doc, state := readAppState(t, home)
	assert.JSONEq(t, `{"multisig":[]}`, string(state))
	// tendermint fields must survive
	assert.JSONEq(t, `"pkmsig-test"`, string(doc["chain_id"]))
	assert.Contains(t, doc, "validators")

	// a second init must not silently overwrite the state
	err = InitCmd(genOptions(`{"multisig":null}`), logger, home, false, nil)
	require.Error(t, err)
	assert.True(t, errors.ErrState.Is(err))

	err = InitCmd(genOptions(`{"conf":{}}`), logger, home, true, nil)
	require.NoError(t, err)
	_, state = readAppState(t, home)
	assert.JSONEq(t, `{"conf":{}}`, string(state))
}

func TestInitCmdWithoutGenesis(t *testing.T) {
	home, err := ioutil.TempDir("", "pkmsig-cmd")
	require.NoError(t, err)
	defer os.RemoveAll(home)

	err = InitCmd(genOptions(`{}`), log.NewNopLogger(), home, false, nil)
	require.Error(t, err)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestInitCmdGeneratorFailure(t *testing.T) {
	home, cleanup := setupHome(t)
	defer cleanup()

	gen := func(args []string) (json.RawMessage, error) {
		return nil, errors.Wrap(errors.ErrInput, "bad ticker")
	}
	err := InitCmd(gen, log.NewNopLogger(), home, false, []string{"x"})
	require.Error(t, err)
	assert.True(t, errors.ErrInput.Is(err))

	_, state := readAppState(t, home)
	assert.Empty(t, state)
}
