package app

import (
	"encoding/json"
	"path/filepath"

	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/x/multisig"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// GenInitOptions produces the app_state for a fresh chain: the given
// configuration and no wallets.
func GenInitOptions(conf multisig.Configuration) (json.RawMessage, error) {
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration")
	}
	state := map[string]interface{}{
		"conf": map[string]interface{}{
			multisig.ConfigurationName: conf,
		},
		"multisig": []multisig.GenesisWallet{},
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return raw, nil
}

// GenerateApp is used to create a stub for server/start.go command. The
// returned function releases the database.
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, func() error, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "data", Name+".db")
	}

	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return nil, nil, err
	}
	application := Application(kv, logger.With("module", Name), debug)
	return application, kv.Close, nil
}
