package weavetest

import (
	"fmt"

	"github.com/iov-one/pkmsig/crypto"
)

// NewKey returns a random passkey signer.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKey()
}

// SeedKey returns a deterministic passkey signer. The same name always
// produces the same key.
func SeedKey(name string) *crypto.PrivateKey {
	return crypto.PrivKeyFromSeed([]byte(name))
}

// SeedKeys returns n deterministic keys named <prefix>-0 ... <prefix>-(n-1).
func SeedKeys(prefix string, n int) []*crypto.PrivateKey {
	keys := make([]*crypto.PrivateKey, n)
	for i := range keys {
		keys[i] = SeedKey(fmt.Sprintf("%s-%d", prefix, i))
	}
	return keys
}

// PubKeys returns the compressed public keys of all given signers.
func PubKeys(keys ...*crypto.PrivateKey) [][]byte {
	res := make([][]byte, len(keys))
	for i, k := range keys {
		res[i] = k.PublicKey()
	}
	return res
}

// MustSign signs the message or panics.
func MustSign(key *crypto.PrivateKey, message []byte) []byte {
	sig, err := key.Sign(message)
	if err != nil {
		panic(err)
	}
	return sig
}
