package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weave"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

const (
	// ExtensionName is used for the conditions of passkey signers.
	ExtensionName = "sigs"

	// PubKeyLength is the size of a compressed public key.
	PubKeyLength = 33
)

var (
	curve     = elliptic.P256()
	curveN    = curve.Params().N
	halfOrder = new(big.Int).Rsh(curveN, 1)
)

// PublicKey is a compressed secp256r1 public key.
type PublicKey []byte

// ParsePublicKey returns the key if it is a valid compressed point on
// the curve.
func ParsePublicKey(raw []byte) (PublicKey, error) {
	if len(raw) != PubKeyLength {
		return nil, errors.Wrapf(errors.ErrInput, "public key must be %d bytes, got %d", PubKeyLength, len(raw))
	}
	if raw[0] != 0x02 && raw[0] != 0x03 {
		return nil, errors.Wrap(errors.ErrInput, "public key is not compressed")
	}
	if x, _ := elliptic.UnmarshalCompressed(curve, raw); x == nil {
		return nil, errors.Wrap(errors.ErrInput, "public key is not on the curve")
	}
	return PublicKey(append([]byte(nil), raw...)), nil
}

// Verify returns true if sig is a valid low-S DER signature of
// sha256(message) by this key.
func (p PublicKey) Verify(message, sig []byte) bool {
	x, y := elliptic.UnmarshalCompressed(curve, p)
	if x == nil {
		return false
	}
	r, s, err := ParseSignature(sig)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(message)
	return ecdsa.Verify(&ecdsa.PublicKey{Curve: curve, X: x, Y: y}, digest[:], r, s)
}

// Condition encodes the public key into a weave permission.
func (p PublicKey) Condition() weave.Condition {
	return weave.NewCondition(ExtensionName, "p256", p)
}

// Address returns the address of the key condition.
func (p PublicKey) Address() weave.Address {
	return p.Condition().Address()
}

// ParseSignature decodes a DER signature and rejects values outside the
// curve order as well as high-S values.
func ParseSignature(sig []byte) (r, s *big.Int, err error) {
	var inner cryptobyte.String
	input := cryptobyte.String(sig)
	r, s = new(big.Int), new(big.Int)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return nil, nil, errors.Wrap(errors.ErrInput, "malformed DER signature")
	}
	if r.Sign() <= 0 || s.Sign() <= 0 || r.Cmp(curveN) >= 0 || s.Cmp(curveN) >= 0 {
		return nil, nil, errors.Wrap(errors.ErrInput, "signature out of range")
	}
	if s.Cmp(halfOrder) > 0 {
		return nil, nil, errors.Wrap(errors.ErrInput, "high S signature")
	}
	return r, s, nil
}

// MarshalSignature encodes (r, s) as DER, normalizing s to the lower half
// of the curve order.
func MarshalSignature(r, s *big.Int) ([]byte, error) {
	if s.Cmp(halfOrder) > 0 {
		s = new(big.Int).Sub(curveN, s)
	}
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	return b.Bytes()
}

// PrivateKey signs messages on behalf of a passkey signer. Real keys
// never leave the authenticator; this type exists for tooling and tests.
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

// GenPrivKey returns a random new private key.
func GenPrivKey() *PrivateKey {
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{key: key}
}

// PrivKeyFromSeed will deterministically generate a private key from
// a given seed. Use for deterministic keys in test cases.
func PrivKeyFromSeed(seed []byte) *PrivateKey {
	digest := sha256.Sum256(seed)
	d := new(big.Int).SetBytes(digest[:])
	d.Mod(d, new(big.Int).Sub(curveN, big.NewInt(1)))
	d.Add(d, big.NewInt(1))

	key := &ecdsa.PrivateKey{D: d}
	key.PublicKey.Curve = curve
	key.PublicKey.X, key.PublicKey.Y = curve.ScalarBaseMult(d.Bytes())
	return &PrivateKey{key: key}
}

// PublicKey returns the compressed public key.
func (p *PrivateKey) PublicKey() PublicKey {
	return PublicKey(elliptic.MarshalCompressed(curve, p.key.X, p.key.Y))
}

// Sign returns a low-S DER signature of sha256(message).
func (p *PrivateKey) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	r, s, err := ecdsa.Sign(rand.Reader, p.key, digest[:])
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return MarshalSignature(r, s)
}
