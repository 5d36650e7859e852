package weavetest

import "github.com/iov-one/pkmsig/weave"

// Decorator counts the calls passing through it and forwards them to the
// next handler, unless CheckErr or DeliverErr is set. A call is counted
// even when it fails.
type Decorator struct {
	CheckErr   error
	DeliverErr error

	checks, delivers int
}

var _ weave.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	d.checks++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	d.delivers++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

// CallCount returns the number of Check and Deliver calls together.
func (d *Decorator) CallCount() int {
	return d.checks + d.delivers
}

// Decorate returns a handler that passes every call through d before
// reaching h.
func Decorate(h weave.Handler, d weave.Decorator) weave.Handler {
	return decorated{next: h, dec: d}
}

type decorated struct {
	next weave.Handler
	dec  weave.Decorator
}

func (d decorated) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	return d.dec.Check(ctx, db, tx, d.next)
}

func (d decorated) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	return d.dec.Deliver(ctx, db, tx, d.next)
}
