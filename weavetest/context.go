package weavetest

import (
	"context"
	"time"

	"github.com/iov-one/pkmsig/weave"
)

// ChainID is used by Context for all test blocks.
const ChainID = "test-chain"

// Context returns a context as the application builds it for a block at
// the given height and time.
func Context(height int64, blockTime time.Time) weave.Context {
	ctx := weave.WithHeight(context.Background(), height)
	ctx = weave.WithChainID(ctx, ChainID)
	return weave.WithBlockTime(ctx, blockTime)
}
