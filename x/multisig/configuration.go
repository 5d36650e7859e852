package multisig

import (
	"regexp"

	"github.com/iov-one/pkmsig/codec"
	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/gconf"
)

const (
	// ConfigurationName is the gconf key of this extension.
	ConfigurationName = "multisig"

	maxDecimals = 18
)

var (
	isTicker       = regexp.MustCompile(`^[A-Z0-9]{2,8}$`).MatchString
	isBech32Prefix = regexp.MustCompile(`^[a-z]{1,16}$`).MatchString
)

// Configuration is stored in the database and read by the handlers.
type Configuration struct {
	// Bech32Prefix is the human readable part of wallet addresses.
	Bech32Prefix string `json:"bech32_prefix"`
	// Ticker and Decimals describe the currency balances are kept in.
	Ticker   string `json:"ticker"`
	Decimals uint32 `json:"decimals"`
	// ProposalTTL is the number of seconds a proposal can be approved
	// and executed for. Zero disables expiration.
	ProposalTTL int64 `json:"proposal_ttl"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// DefaultConfiguration is used when the genesis does not configure the
// extension.
func DefaultConfiguration() Configuration {
	return Configuration{
		Bech32Prefix: "pkm",
		Ticker:       "STX",
		Decimals:     6,
	}
}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.NewWriter().
		String(1, c.Bech32Prefix).
		String(2, c.Ticker).
		Uint64(3, uint64(c.Decimals)).
		Int64(4, c.ProposalTTL).
		Result()
}

func (c *Configuration) Unmarshal(raw []byte) error {
	*c = Configuration{}
	r := codec.NewReader(raw)
	for r.More() {
		field, wire, err := r.Key()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			c.Bech32Prefix, err = r.String(wire)
		case 2:
			c.Ticker, err = r.String(wire)
		case 3:
			var v uint64
			v, err = r.Uint64(wire)
			c.Decimals = uint32(v)
		case 4:
			c.ProposalTTL, err = r.Int64(wire)
		default:
			err = r.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Configuration) Validate() error {
	if !isBech32Prefix(c.Bech32Prefix) {
		return errors.Wrapf(errors.ErrInput, "invalid bech32 prefix %q", c.Bech32Prefix)
	}
	if !isTicker(c.Ticker) {
		return errors.Wrapf(errors.ErrInput, "invalid ticker %q", c.Ticker)
	}
	if c.Decimals > maxDecimals {
		return errors.Wrapf(errors.ErrInput, "at most %d decimals", maxDecimals)
	}
	if c.ProposalTTL < 0 {
		return errors.Wrap(errors.ErrInput, "negative proposal ttl")
	}
	return nil
}

// loadConfiguration returns the stored configuration, or the default one
// if the genesis did not provide any.
func loadConfiguration(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, ConfigurationName, &conf); {
	case err == nil:
		return conf, nil
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	default:
		return conf, err
	}
}
