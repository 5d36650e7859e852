package orm

import (
	"github.com/iov-one/pkmsig/codec"
	"github.com/iov-one/pkmsig/errors"
)

// Counter is a minimal model used to exercise buckets in tests.
type Counter struct {
	Count int64
}

var _ Model = (*Counter)(nil)

func (c *Counter) Marshal() ([]byte, error) {
	return codec.NewWriter().Int64(1, c.Count).Result()
}

func (c *Counter) Unmarshal(raw []byte) error {
	*c = Counter{}
	r := codec.NewReader(raw)
	for r.More() {
		field, wire, err := r.Key()
		if err != nil {
			return err
		}
		if field == 1 {
			c.Count, err = r.Int64(wire)
		} else {
			err = r.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrModel, "negative count")
	}
	return nil
}
