package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/store"
	"github.com/iov-one/pkmsig/weave"
	"github.com/iov-one/pkmsig/x/multisig"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is reported by the ABCI Info call.
const Name = "pkmsig"

// Chain returns a chain of decorators, to handle logging, recovery,
// metrics and savepoints. A failed transaction never leaves partial
// changes behind.
func Chain() Decorators {
	return ChainDecorators(
		NewLogging(),
		NewRecovery(),
		NewMetrics(),
		NewSavepoint().OnCheck().OnDeliver(),
	)
}

// Routes returns a router dispatching all wallet messages.
func Routes() *Router {
	r := NewRouter()
	multisig.RegisterRoutes(r)
	return r
}

// Stack wires up the router with the decorator chain. This can be passed
// into BaseApp.
func Stack() weave.Handler {
	return Chain().WithHandler(Routes())
}

// QueryRouter returns a query router, allowing access to "/wallets",
// "/proposals", "/summary" and "/time"
func QueryRouter() weave.QueryRouter {
	r := weave.NewQueryRouter()
	r.RegisterAll(
		RegisterQuery,
		multisig.RegisterQuery,
	)
	return r
}

// Messages returns a registry of all messages the application accepts.
func Messages() *MsgRegistry {
	return NewMsgRegistry(
		&multisig.CreateWalletMsg{},
		&multisig.DepositMsg{},
		&multisig.ProposeTxMsg{},
		&multisig.ApproveTxMsg{},
		&multisig.ExecuteTxMsg{},
		&multisig.CancelTxMsg{},
	)
}

// Initializers returns all genesis initializers of the application.
func Initializers() weave.Initializer {
	return weave.ChainInitializers(&multisig.Initializer{})
}

// Application constructs the ABCI application on top of the given store.
func Application(kv weave.CommitKVStore, logger log.Logger, debug bool) BaseApp {
	s := NewStoreApp(Name, kv, QueryRouter(), context.Background()).
		WithInit(Initializers()).
		WithLogger(logger)
	return NewBaseApp(s, Messages().TxDecoder(), Stack(), debug)
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path. An empty path returns a memory store.
func CommitKVStore(dbPath string) (*store.LevelDBStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return store.NewMemLevelDBStore()
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}
	// Some external calls accidentally add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))
	return store.NewLevelDBStore(path)
}
