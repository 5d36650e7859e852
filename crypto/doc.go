/*
Package crypto implements the secp256r1 (NIST P-256) keys used by
passkey signers.

Public keys travel in their 33 byte compressed form. Signatures are ASN.1
DER encoded (r, s) pairs over the sha256 digest of the message, the
format produced by WebAuthn authenticators. Only low-S signatures are
accepted so that a signature cannot be mutated into a second valid one.
*/
package crypto
