package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/iov-one/pkmsig/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// metaPrefix is reserved for the commit bookkeeping. Application keys
// must not start with it and it is hidden from all iterators.
var metaPrefix = []byte("\x00_wv:")

var (
	versionKey = append(append([]byte(nil), metaPrefix...), "version"...)
	hashKey    = append(append([]byte(nil), metaPrefix...), "hash"...)
)

// LevelDBStore is a CommitKVStore persisted in a goleveldb database.
//
// Writes flushed from a cache wrap are staged in memory and only
// persisted, together with the new version and hash, on Commit.
// Until then Get and all iterators return the last committed state.
type LevelDBStore struct {
	db *leveldb.DB

	mu      sync.Mutex
	staged  *leveldb.Batch
	digest  []byte
	pending int
	id      CommitID
}

var _ CommitKVStore = (*LevelDBStore)(nil)
var _ ReadOnlyKVStore = (*LevelDBStore)(nil)

// NewLevelDBStore opens (or creates) a database in the given directory.
func NewLevelDBStore(dir string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %q: %s", dir, err)
	}
	return newLevelDBStore(db)
}

// NewMemLevelDBStore returns a store backed by the in-memory goleveldb
// storage. Nothing survives closing it.
func NewMemLevelDBStore() (*LevelDBStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return newLevelDBStore(db)
}

func newLevelDBStore(db *leveldb.DB) (*LevelDBStore, error) {
	s := &LevelDBStore{
		db:     db,
		staged: new(leveldb.Batch),
	}
	if err := s.LoadLatestVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database. The store must not be used afterwards.
func (s *LevelDBStore) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Get returns the value at last committed state.
func (s *LevelDBStore) Get(key []byte) ([]byte, error) {
	if bytes.HasPrefix(key, metaPrefix) {
		return nil, errors.Wrap(errors.ErrInput, "reserved key")
	}
	val, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return val, nil
}

// Has returns true if the key exists in the last committed state.
func (s *LevelDBStore) Has(key []byte) (bool, error) {
	if bytes.HasPrefix(key, metaPrefix) {
		return false, nil
	}
	ok, err := s.db.Has(key, nil)
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return ok, nil
}

// Iterator returns all committed entries in [start, end) in ascending order.
func (s *LevelDBStore) Iterator(start, end []byte) (Iterator, error) {
	models, err := s.scan(start, end)
	if err != nil {
		return nil, err
	}
	return NewSliceIterator(models), nil
}

// ReverseIterator returns all committed entries in [start, end) in
// descending order.
func (s *LevelDBStore) ReverseIterator(start, end []byte) (Iterator, error) {
	models, err := s.scan(start, end)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return NewSliceIterator(models), nil
}

func (s *LevelDBStore) scan(start, end []byte) ([]Model, error) {
	it := s.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	defer it.Release()

	var res []Model
	for it.Next() {
		if bytes.HasPrefix(it.Key(), metaPrefix) {
			continue
		}
		// goleveldb reuses the buffers between calls to Next.
		res = append(res, Model{
			Key:   append([]byte(nil), it.Key()...),
			Value: append([]byte(nil), it.Value()...),
		})
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return res, nil
}

// CacheWrap returns a cache on top of the committed state. Writing the
// cache stages its operations for the next Commit.
func (s *LevelDBStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(s, &levelBatch{store: s}, nil)
}

// Commit persists all staged operations and returns the new version.
// The hash chains the previous hash with a digest of every operation
// written since, so equal histories always produce equal hashes.
func (s *LevelDBStore) Commit() (CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := CommitID{Version: s.id.Version + 1, Hash: s.id.Hash}
	if s.pending > 0 {
		h := sha256.New()
		_, _ = h.Write(s.id.Hash)
		_, _ = h.Write(s.digest)
		next.Hash = h.Sum(nil)
	}

	var ver [8]byte
	binary.BigEndian.PutUint64(ver[:], uint64(next.Version))
	s.staged.Put(versionKey, ver[:])
	s.staged.Put(hashKey, next.Hash)
	if err := s.db.Write(s.staged, &opt.WriteOptions{Sync: true}); err != nil {
		return CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}

	s.id = next
	s.staged = new(leveldb.Batch)
	s.digest = nil
	s.pending = 0
	return next, nil
}

// LoadLatestVersion reads the last committed version from disk and
// drops anything staged but not committed.
func (s *LevelDBStore) LoadLatestVersion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id CommitID
	raw, err := s.db.Get(versionKey, nil)
	switch {
	case err == leveldb.ErrNotFound:
		// Fresh database.
	case err != nil:
		return errors.Wrap(errors.ErrDatabase, err.Error())
	case len(raw) != 8:
		return errors.Wrap(errors.ErrDatabase, "corrupted version")
	default:
		id.Version = int64(binary.BigEndian.Uint64(raw))
		hash, err := s.db.Get(hashKey, nil)
		if err != nil && err != leveldb.ErrNotFound {
			return errors.Wrap(errors.ErrDatabase, err.Error())
		}
		if len(hash) > 0 {
			id.Hash = hash
		}
	}

	s.id = id
	s.staged = new(leveldb.Batch)
	s.digest = nil
	s.pending = 0
	return nil
}

// LatestVersion returns the last committed version.
func (s *LevelDBStore) LatestVersion() (CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, nil
}

// stage records ops to be persisted on the next Commit.
func (s *LevelDBStore) stage(ops []Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := sha256.New()
	_, _ = h.Write(s.digest)
	var buf [binary.MaxVarintLen64]byte
	for _, op := range ops {
		if bytes.HasPrefix(op.key, metaPrefix) {
			return errors.Wrap(errors.ErrInput, "reserved key")
		}
		n := binary.PutUvarint(buf[:], uint64(len(op.key)))
		if op.IsSetOp() {
			s.staged.Put(op.key, op.value)
			_, _ = h.Write([]byte{byte(setKind)})
		} else {
			s.staged.Delete(op.key)
			_, _ = h.Write([]byte{byte(delKind)})
		}
		_, _ = h.Write(buf[:n])
		_, _ = h.Write(op.key)
		if op.IsSetOp() {
			n = binary.PutUvarint(buf[:], uint64(len(op.value)))
			_, _ = h.Write(buf[:n])
			_, _ = h.Write(op.value)
		}
	}
	s.digest = h.Sum(nil)
	s.pending += len(ops)
	return nil
}

// levelBatch collects operations from a cache wrap and hands them over
// to the store when written.
type levelBatch struct {
	store *LevelDBStore
	ops   []Op
}

var _ Batch = (*levelBatch)(nil)

func (b *levelBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, SetOp(append([]byte(nil), key...), append([]byte(nil), value...)))
	return nil
}

func (b *levelBatch) Delete(key []byte) error {
	b.ops = append(b.ops, DelOp(append([]byte(nil), key...)))
	return nil
}

func (b *levelBatch) Write() error {
	if len(b.ops) == 0 {
		return nil
	}
	err := b.store.stage(b.ops)
	b.ops = nil
	return err
}
