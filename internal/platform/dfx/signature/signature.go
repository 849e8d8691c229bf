package signature

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
)

// Verifier authenticates a raw webhook body against the configured public key.
// The key format determines the scheme; RSAVerifier covers the DFX protocol.
type Verifier interface {
	Verify(payload []byte, signatureB64 string, publicKeyPEM string) bool
}

// RSAVerifier checks RSA-SHA256 signatures as DFX issues them: the provider
// signs the hex-encoded SHA-256 digest string of the raw body, not the body
// itself. Hashing a re-serialized payload would silently break verification,
// so callers must pass the exact bytes received on the wire.
type RSAVerifier struct{}

func NewRSAVerifier() *RSAVerifier { return &RSAVerifier{} }

// Verify fails closed: empty inputs, bad base64, an unparseable key, or a
// non-RSA key all return false. It has no side effects.
func (v *RSAVerifier) Verify(payload []byte, signatureB64 string, publicKeyPEM string) bool {
	if len(payload) == 0 || signatureB64 == "" || publicKeyPEM == "" {
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}

	key := parseRSAPublicKey(publicKeyPEM)
	if key == nil {
		return false
	}

	bodyDigest := sha256.Sum256(payload)
	hexDigest := hex.EncodeToString(bodyDigest[:])
	signedDigest := sha256.Sum256([]byte(hexDigest))

	return rsa.VerifyPKCS1v15(key, crypto.SHA256, signedDigest[:], sig) == nil
}

// parseRSAPublicKey accepts both PKIX ("PUBLIC KEY") and PKCS#1
// ("RSA PUBLIC KEY") PEM blocks.
func parseRSAPublicKey(publicKeyPEM string) *rsa.PublicKey {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil
	}
	if pub, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		if key, ok := pub.(*rsa.PublicKey); ok {
			return key
		}
		return nil
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key
	}
	return nil
}
