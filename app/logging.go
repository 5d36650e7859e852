package app

import (
	"time"

	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weave"
)

// Logging writes one log line for every processed transaction.
type Logging struct{}

var _ weave.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs failures as errors and successes at debug level, the mempool
// sees many more transactions than blocks do.
func (Logging) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var resLog string
	if res != nil {
		resLog = res.Log
	}
	logTx(ctx, start, tx, resLog, err, true)
	return res, err
}

// Deliver logs failures as errors and successes at info level.
func (Logging) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var resLog string
	if res != nil {
		resLog = res.Log
	}
	logTx(ctx, start, tx, resLog, err, false)
	return res, err
}

func logTx(ctx weave.Context, start time.Time, tx weave.Tx, msg string, err error, check bool) {
	logger := weave.GetLogger(ctx).With(
		"msg_path", weave.GetPath(tx),
		"duration_us", time.Since(start)/time.Microsecond)

	// The entry is written even with an empty message, the fields alone
	// are worth having.
	switch {
	case err != nil:
		logger.Error(msg, "code", errors.ABCICode(err), "err", err)
	case check:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
