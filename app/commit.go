package app

import (
	"encoding/binary"

	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weave"
)

// CommitStore handles loading from a KVCommitStore, maintaining different
// CacheWraps for Deliver and Check, and returning useful state info.
type CommitStore struct {
	committed weave.CommitKVStore
	deliver   weave.KVCacheWrap
	check     weave.KVCacheWrap
}

// NewCommitStore loads the CommitKVStore from disk or panics. It sets up the
// deliver and check caches.
func NewCommitStore(store weave.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(err)
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() (weave.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit will flush deliver to the underlying store and commit it
// to disk. It then regenerates new deliver/check caches
func (cs *CommitStore) Commit() (weave.CommitID, error) {
	// flush deliver to store and discard check
	if err := cs.deliver.Write(); err != nil {
		return weave.CommitID{}, err
	}
	cs.check.Discard()

	// write the store to disk
	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	// set up new caches
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

// CheckStore returns a store implementation that must be used during the
// checking phase.
func (cs *CommitStore) CheckStore() weave.CacheableKVStore {
	return cs.check
}

// DeliverStore returns a store implementation that must be used during the
// delivery phase.
func (cs *CommitStore) DeliverStore() weave.CacheableKVStore {
	return cs.deliver
}

// QueryStore returns a read only view of the last committed state.
func (cs *CommitStore) QueryStore() weave.ReadOnlyKVStore {
	return cs.committed.CacheWrap()
}

//------- storing chainID and block time ---------

// _wv: is a prefix for weave internal data
const (
	chainIDKey   = "_wv:chainID"
	blockTimeKey = "_wv:blockTime"
)

// mustLoadChainID returns the chain id stored if any
// panics on db error
func mustLoadChainID(kv weave.ReadOnlyKVStore) string {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		panic(err)
	}
	return string(v)
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv weave.KVStore, chainID string) error {
	if !weave.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chainId")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chainId")
	}
	return nil
}

// loadBlockTime returns the time of the last block that began, or zero.
func loadBlockTime(kv weave.ReadOnlyKVStore) (weave.UnixTime, error) {
	raw, err := kv.Get([]byte(blockTimeKey))
	if err != nil {
		return 0, errors.Wrap(err, "load block time")
	}
	if len(raw) == 0 {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, errors.Wrap(errors.ErrState, "corrupted block time")
	}
	return weave.UnixTime(binary.BigEndian.Uint64(raw)), nil
}

func saveBlockTime(kv weave.KVStore, t weave.UnixTime) error {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], uint64(t))
	if err := kv.Set([]byte(blockTimeKey), raw[:]); err != nil {
		return errors.Wrap(err, "save block time")
	}
	return nil
}

// RegisterQuery registers the application level queries
//
//	/time  -> last block time in seconds, 8 byte big endian
func RegisterQuery(qr weave.QueryRouter) {
	qr.Register("/time", weave.QueryHandlerFunc(timeQuery))
}

func timeQuery(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if mod != weave.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported mod %q", mod)
	}
	t, err := loadBlockTime(db)
	if err != nil {
		return nil, err
	}
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], uint64(t))
	return []weave.Model{weave.Pair([]byte("time"), raw[:])}, nil
}
