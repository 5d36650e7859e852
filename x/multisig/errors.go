package multisig

import (
	"github.com/iov-one/pkmsig/errors"
)

// Error codes are part of the public interface. Never renumber. 5001 is
// reserved.
var (
	ErrWalletExists        = errors.Register(5002, "wallet already exists")
	ErrWalletNotFound      = errors.Register(5003, "wallet not found")
	ErrInvalidSigner       = errors.Register(5004, "invalid signer")
	ErrDuplicateSigner     = errors.Register(5005, "duplicate signer")
	ErrIndexOutOfRange     = errors.Register(5006, "index out of range")
	ErrTxNotFound          = errors.Register(5007, "transaction not found")
	ErrAlreadyApproved     = errors.Register(5008, "already approved")
	ErrInvalidThreshold    = errors.Register(5009, "invalid threshold")
	ErrInvalidAmount       = errors.Register(5010, "invalid amount")
	ErrInsufficientFunds   = errors.Register(5011, "insufficient funds")
	ErrTxExecuted          = errors.Register(5012, "transaction already executed")
	ErrInvalidName         = errors.Register(5013, "invalid name")
	ErrInvalidSignature    = errors.Register(5014, "invalid signature")
	ErrOverflow            = errors.Register(5015, "balance overflow")
	ErrThresholdNotReached = errors.Register(5016, "threshold not reached")
	ErrTxCancelled         = errors.Register(5017, "transaction cancelled")
	ErrExpired             = errors.Register(5018, "transaction expired")
	ErrInvalidKind         = errors.Register(5019, "invalid kind")
)
