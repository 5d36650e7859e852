package multisig

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weave"
	"github.com/iov-one/pkmsig/weavetest"
	"github.com/iov-one/pkmsig/weavetest/assert"
)

func TestWalletValidate(t *testing.T) {
	keys := weavetest.PubKeys(weavetest.SeedKeys("model", 3)...)

	cases := map[string]struct {
		wallet  Wallet
		wantErr *errors.Error
	}{
		"valid": {
			wallet: Wallet{ID: walletID(1), Name: "ok", Threshold: 2, Signers: keys, Balance: 3},
		},
		"negative creation time": {
			wallet:  Wallet{ID: walletID(1), Name: "ok", Threshold: 2, Signers: keys, CreatedAt: -1},
			wantErr: errors.ErrState,
		},
		"short id": {
			wallet:  Wallet{ID: []byte("short"), Name: "ok", Threshold: 2, Signers: keys},
			wantErr: errors.ErrInput,
		},
		"name with newline": {
			wallet:  Wallet{ID: walletID(1), Name: "a\nb", Threshold: 2, Signers: keys},
			wantErr: ErrInvalidName,
		},
		"name too long": {
			wallet:  Wallet{ID: walletID(1), Name: strings.Repeat("n", MaxNameLength+1), Threshold: 2, Signers: keys},
			wantErr: ErrInvalidName,
		},
		"duplicated signer": {
			wallet:  Wallet{ID: walletID(1), Name: "ok", Threshold: 2, Signers: [][]byte{keys[0], keys[1], keys[0]}},
			wantErr: ErrDuplicateSigner,
		},
		"threshold reported before anything else": {
			wallet:  Wallet{Threshold: 4, Signers: keys},
			wantErr: ErrInvalidThreshold,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.wallet.Validate()
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestWalletSerialization(t *testing.T) {
	keys := weavetest.PubKeys(weavetest.SeedKeys("serial", 2)...)
	w := Wallet{
		ID:        walletID(7),
		Name:      "serial",
		Threshold: 1,
		Signers:   keys,
		Balance:   1 << 50,
		CreatedAt: 1614859200,
	}
	raw, err := w.Marshal()
	assert.Nil(t, err)

	var got Wallet
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, w, got)
	assert.Equal(t, 0, got.SignerIndex(keys[0]))
	assert.Equal(t, 1, got.SignerIndex(keys[1]))
	assert.Equal(t, -1, got.SignerIndex(walletID(2)))
	assert.Equal(t, WalletCondition(w.ID).Address(), got.Address())
}

func TestProposalValidate(t *testing.T) {
	key := weavetest.SeedKey("approver").PublicKey()
	valid := func() Proposal {
		return Proposal{
			WalletID:  walletID(1),
			TxID:      1,
			Kind:      "TRANSFER",
			Amount:    10,
			Recipient: recipient(),
			Status:    ProposalPending,
			Approvals: [][]byte{key},
		}
	}

	cases := map[string]struct {
		mutate  func(*Proposal)
		wantErr *errors.Error
	}{
		"valid": {
			mutate: func(*Proposal) {},
		},
		"zero tx id": {
			mutate:  func(p *Proposal) { p.TxID = 0 },
			wantErr: errors.ErrModel,
		},
		"kind with digits": {
			mutate:  func(p *Proposal) { p.Kind = "TRANSFER2" },
			wantErr: ErrInvalidKind,
		},
		"missing recipient": {
			mutate:  func(p *Proposal) { p.Recipient = nil },
			wantErr: errors.ErrInput,
		},
		"unknown status": {
			mutate:  func(p *Proposal) { p.Status = 9 },
			wantErr: errors.ErrModel,
		},
		"approved twice": {
			mutate:  func(p *Proposal) { p.Approvals = append(p.Approvals, key) },
			wantErr: ErrAlreadyApproved,
		},
		"memo too long": {
			mutate:  func(p *Proposal) { p.Memo = strings.Repeat("m", MaxMemoLength+1) },
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			p := valid()
			tc.mutate(&p)
			err := p.Validate()
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestProposalIsExpired(t *testing.T) {
	p := Proposal{}
	assert.Equal(t, false, p.IsExpired(weave.UnixTime(1<<40)))

	p.ExpiresAt = 100
	assert.Equal(t, false, p.IsExpired(99))
	assert.Equal(t, true, p.IsExpired(100))
}

func TestProposalStatusJSON(t *testing.T) {
	raw, err := json.Marshal(map[string]ProposalStatus{"a": ProposalExecuted, "b": 0})
	assert.Nil(t, err)
	assert.Equal(t, `{"a":"executed","b":"invalid"}`, string(raw))
}
