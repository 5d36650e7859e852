package errors

import (
	stdlib "errors"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// errWalletLocked is registered once for the whole test binary.
var errWalletLocked = Register(9001, "wallet locked")

func TestCause(t *testing.T) {
	std := stdlib.New("disk full")

	cases := map[string]struct {
		err  error
		root error
	}{
		"registered error is its own cause": {
			err:  ErrNotFound,
			root: ErrNotFound,
		},
		"nested wraps reveal the root": {
			err:  Wrapf(Wrap(errWalletLocked, "approve"), "tx #%d", 3),
			root: errWalletLocked,
		},
		"stdlib error as root": {
			err:  Wrap(std, "cannot commit"),
			root: std,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.root, errors.Cause(tc.err))
		})
	}
}

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		a      *Error
		b      error
		wantIs bool
	}{
		"same instance": {
			a:      ErrNotFound,
			b:      ErrNotFound,
			wantIs: true,
		},
		"different codes": {
			a:      ErrNotFound,
			b:      errWalletLocked,
			wantIs: false,
		},
		"wrapped with this package": {
			a:      errWalletLocked,
			b:      Wrap(errWalletLocked, "deposit"),
			wantIs: true,
		},
		"wrapped with pkg/errors": {
			a:      ErrNotFound,
			b:      errors.Wrap(ErrNotFound, "gone"),
			wantIs: true,
		},
		"wrapped different code": {
			a:      ErrNotFound,
			b:      errors.Wrap(ErrOverflow, "too big"),
			wantIs: false,
		},
		"stdlib error": {
			a:      ErrNotFound,
			b:      fmt.Errorf("stdlib error"),
			wantIs: false,
		},
		"nil matches nil": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
		"nil matches typed nil": {
			a:      nil,
			b:      (*customError)(nil),
			wantIs: true,
		},
		"nil does not match an error": {
			a:      nil,
			b:      ErrNotFound,
			wantIs: false,
		},
		"error does not match nil": {
			a:      ErrNotFound,
			b:      nil,
			wantIs: false,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.wantIs, tc.a.Is(tc.b))
		})
	}
}

type customError struct{}

func (customError) Error() string {
	return "custom error"
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "wrapping <nil>"))
	assert.Nil(t, Wrapf(nil, "wrapping %s", "<nil>"))

	err := Wrapf(errWalletLocked, "wallet %q", "treasury")
	assert.Equal(t, `wallet "treasury": wallet locked`, err.Error())
	assert.Equal(t, uint32(9001), ABCICode(err))

	typed := WithType(ErrInput, &customError{})
	assert.Equal(t, "*errors.customError: invalid input", typed.Error())
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(errWalletLocked.ABCICode(), "again")
	})
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		panic("boom")
	}
	err := run()
	require.Error(t, err)
	assert.True(t, ErrPanic.Is(err))
	assert.Contains(t, err.Error(), "boom")
}
