package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/pkmsig/codec"
	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/store"
	"github.com/iov-one/pkmsig/weave"
	"github.com/iov-one/pkmsig/weavetest/assert"
)

type testConf struct {
	Name  string `json:"name"`
	Limit uint64 `json:"limit"`
}

func (c *testConf) Marshal() ([]byte, error) {
	return codec.NewWriter().String(1, c.Name).Uint64(2, c.Limit).Result()
}

func (c *testConf) Unmarshal(raw []byte) error {
	*c = testConf{}
	r := codec.NewReader(raw)
	for r.More() {
		field, wire, err := r.Key()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			c.Name, err = r.String(wire)
		case 2:
			c.Limit, err = r.Uint64(wire)
		default:
			err = r.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *testConf) Validate() error {
	if c.Name == "" {
		return errors.Wrap(errors.ErrEmpty, "name")
	}
	return nil
}

func TestSaveLoad(t *testing.T) {
	cases := map[string]struct {
		Conf        testConf
		WantSaveErr *errors.Error
	}{
		"valid": {
			Conf: testConf{Name: "foobar", Limit: 852151421},
		},
		"invalid cannot be saved": {
			Conf:        testConf{Limit: 1},
			WantSaveErr: errors.ErrEmpty,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "test", &tc.Conf); !tc.WantSaveErr.Is(err) {
				t.Fatalf("unexpected save error: %s", err)
			}
			if tc.WantSaveErr != nil {
				return
			}
			var got testConf
			assert.Nil(t, Load(db, "test", &got))
			assert.Equal(t, tc.Conf, got)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	db := store.MemStore()
	var c testConf
	assert.IsErr(t, errors.ErrNotFound, Load(db, "test", &c))
	assert.Panics(t, func() { MustLoad(db, "test", &c) })
}

func TestInitConfig(t *testing.T) {
	cases := map[string]struct {
		Genesis string
		WantErr *errors.Error
		Want    testConf
	}{
		"valid": {
			Genesis: `{"conf": {"test": {"name": "x", "limit": 3}}}`,
			Want:    testConf{Name: "x", Limit: 3},
		},
		"missing package": {
			Genesis: `{"conf": {"other": {"name": "x"}}}`,
			WantErr: errors.ErrNotFound,
		},
		"invalid configuration": {
			Genesis: `{"conf": {"test": {"limit": 3}}}`,
			WantErr: errors.ErrEmpty,
		},
		"malformed": {
			Genesis: `{"conf": {"test": {"limit": "three"}}}`,
			WantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts weave.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.Genesis), &opts))
			db := store.MemStore()
			var conf testConf
			err := InitConfig(db, opts, "test", &conf)
			if !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.WantErr != nil {
				return
			}
			var got testConf
			MustLoad(db, "test", &got)
			assert.Equal(t, tc.Want, got)
		})
	}
}
