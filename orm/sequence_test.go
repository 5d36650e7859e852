package orm

import (
	"bytes"
	"testing"

	"github.com/iov-one/pkmsig/store"
	"github.com/iov-one/pkmsig/weavetest/assert"
)

func TestSequence(t *testing.T) {
	db := store.MemStore()
	a := NewSequence("proposal", "a")
	b := NewSequence("proposal", "b")

	latest, err := a.Latest(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), latest)

	first, err := a.NextVal(db)
	assert.Nil(t, err)
	second, err := a.NextVal(db)
	assert.Nil(t, err)
	if bytes.Compare(first, second) >= 0 {
		t.Fatalf("sequence values not increasing: %X >= %X", first, second)
	}

	n, err := a.NextInt(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(3), n)

	// sequences with different names are independent
	n, err = b.NextInt(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), n)

	latest, err = a.Latest(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(3), latest)
}
