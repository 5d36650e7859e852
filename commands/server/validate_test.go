package server

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weavetest"
	"github.com/iov-one/pkmsig/x/multisig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestValidateGenesis(t *testing.T) {
	home, cleanup := setupHome(t)
	defer cleanup()

	ini := &multisig.Initializer{}

	id := hex.EncodeToString(bytes.Repeat([]byte{0x07}, multisig.WalletIDLength))
	signer := hex.EncodeToString(weavetest.SeedKey("validate").PublicKey())
	validState := fmt.Sprintf(`{
		"conf": {"multisig": {"bech32_prefix": "pkm", "ticker": "STX", "decimals": 6, "proposal_ttl": 0}},
		"multisig": [
			{"id": %q, "name": "Treasury", "threshold": 1, "signers": [%q], "balance": 10}
		]
	}`, id, signer)
	require.NoError(t, InitCmd(genOptions(validState), log.NewNopLogger(), home, false, nil))
	require.NoError(t, ValidateGenesis(ini, []string{GenesisPath(home)}))

	invalidState := fmt.Sprintf(`{
		"conf": {"multisig": {"bech32_prefix": "pkm", "ticker": "STX", "decimals": 6, "proposal_ttl": 0}},
		"multisig": [{"id": %q, "name": "Treasury", "threshold": 2, "signers": [%q]}]
	}`, id, signer)
	badPath := filepath.Join(home, "bad.json")
	writeGenesis(t, badPath, invalidState)
	err := ValidateGenesis(ini, []string{GenesisPath(home), badPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), badPath)
	assert.Equal(t, uint32(5009), errors.ABCICode(err))
}

func TestValidateGenesisUnreadable(t *testing.T) {
	dir, err := ioutil.TempDir("", "pkmsig-validate")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	ini := &multisig.Initializer{}

	err = ValidateGenesis(ini, []string{filepath.Join(dir, "missing.json")})
	assert.True(t, errors.ErrInput.Is(err))

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, ioutil.WriteFile(broken, []byte("{not json"), 0644))
	err = ValidateGenesis(ini, []string{broken})
	assert.True(t, errors.ErrInput.Is(err))
}

func writeGenesis(t *testing.T, path, state string) {
	t.Helper()
	doc := genesisDoc{
		"chain_id":  json.RawMessage(`"pkmsig-test"`),
		appStateKey: json.RawMessage(state),
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, ioutil.WriteFile(path, raw, 0644))
}
