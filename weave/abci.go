package weave

import (
	"fmt"
	"sort"

	"github.com/iov-one/pkmsig/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// DeliverResult is the outcome of a successfully delivered transaction.
// Failures are always reported through the error return instead.
type DeliverResult struct {
	// Data is a machine-parseable return value, like id of created entity
	Data []byte
	// Log is human-readable informational string
	Log string
	// Tags are indexed by tendermint and allow searching for transactions,
	// for example all transactions touching a given wallet.
	Tags    []common.KVPair
	GasUsed int64
}

// AddTag appends an indexable key value pair to the result.
func (d *DeliverResult) AddTag(key, value string) {
	d.Tags = append(d.Tags, common.KVPair{Key: []byte(key), Value: []byte(value)})
}

func (d *DeliverResult) response() abci.ResponseDeliverTx {
	if d == nil {
		return abci.ResponseDeliverTx{}
	}
	tags := make([]common.KVPair, len(d.Tags))
	copy(tags, d.Tags)
	sort.SliceStable(tags, func(i, j int) bool {
		return string(tags[i].Key) < string(tags[j].Key)
	})
	return abci.ResponseDeliverTx{
		Data:    d.Data,
		Log:     d.Log,
		Tags:    tags,
		GasUsed: d.GasUsed,
	}
}

// CheckResult is the outcome of a transaction that passed CheckTx.
type CheckResult struct {
	Data []byte
	Log  string
	// GasAllocated is the maximum units of work we allow this tx to perform
	GasAllocated int64
}

func (c *CheckResult) response() abci.ResponseCheckTx {
	if c == nil {
		return abci.ResponseCheckTx{}
	}
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// DeliverResponse builds the DeliverTx response, converting err if present.
// Only in debug mode the full error information is returned.
func DeliverResponse(result *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err == nil {
		return result.response()
	}
	code, log := txError("deliver", err, debug)
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

// CheckResponse builds the CheckTx response, converting err if present.
// Only in debug mode the full error information is returned.
func CheckResponse(result *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err == nil {
		return result.response()
	}
	code, log := txError("check", err, debug)
	return abci.ResponseCheckTx{Code: code, Log: log}
}

func txError(phase string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	return code, fmt.Sprintf("cannot %s tx: %s", phase, log)
}
