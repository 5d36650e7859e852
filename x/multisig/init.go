package multisig

import (
	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/gconf"
	"github.com/iov-one/pkmsig/weave"
)

// GenesisWallet is a wallet definition in the genesis file.
type GenesisWallet struct {
	// ID, Signers are hex encoded.
	ID        hexBytes   `json:"id"`
	Name      string     `json:"name"`
	Threshold uint32     `json:"threshold"`
	Signers   []hexBytes `json:"signers"`
	Balance   uint64     `json:"balance"`
}

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis stores the configuration found under conf.multisig and
// creates all wallets listed under multisig.
func (*Initializer) FromGenesis(opts weave.Options, kv weave.KVStore) error {
	var conf Configuration
	err := gconf.InitConfig(kv, opts, ConfigurationName, &conf)
	if err != nil && !errors.ErrNotFound.Is(err) {
		return errors.Wrap(err, "configuration")
	}

	var wallets []GenesisWallet
	if err := opts.ReadOptions("multisig", &wallets); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot read wallets: %s", err)
	}

	wb := NewWalletBucket()
	sb := NewSignerBucket()
	for i, g := range wallets {
		signers := make([][]byte, len(g.Signers))
		for j, s := range g.Signers {
			signers[j] = s
		}
		w := &Wallet{
			ID:        g.ID,
			Name:      g.Name,
			Threshold: g.Threshold,
			Signers:   signers,
			Balance:   g.Balance,
		}
		if err := w.Validate(); err != nil {
			return errors.Wrapf(err, "wallet #%d", i)
		}
		if ok, err := wb.Has(kv, w.ID); err != nil {
			return err
		} else if ok {
			return errors.Wrapf(ErrWalletExists, "wallet #%d", i)
		}
		if err := wb.Put(kv, w); err != nil {
			return errors.Wrapf(err, "cannot save wallet #%d", i)
		}
		if err := sb.Index(kv, w); err != nil {
			return errors.Wrapf(err, "wallet #%d", i)
		}
	}
	return nil
}
