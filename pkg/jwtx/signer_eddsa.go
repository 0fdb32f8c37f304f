package jwtx

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSASigner signs access tokens with an Ed25519 key.
type EdDSASigner struct {
	kid string
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// newEdDSASigner parses a PKCS8 PEM Ed25519 key. An empty kid is derived from
// the public key, so the same key file always publishes the same kid.
func newEdDSASigner(kid string, pemKey []byte) (*EdDSASigner, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, errors.New("jwtx: signing key must be a PKCS8 PEM block")
	}
	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("jwtx: signing key is %T, want Ed25519", priv)
	}

	pub := key.Public().(ed25519.PublicKey)
	if kid == "" {
		sum := sha256.Sum256(pub)
		kid = "escritorio-" + base64.RawURLEncoding.EncodeToString(sum[:12])
	}
	return &EdDSASigner{kid: kid, key: key, pub: pub}, nil
}

func (s *EdDSASigner) Alg() string { return jwt.SigningMethodEdDSA.Alg() }
func (s *EdDSASigner) KID() string { return s.kid }

// Sign returns the compact serialisation of claims, with kid in the header.
func (s *EdDSASigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// PublicJWK returns the verification key as published on the JWKS endpoint.
func (s *EdDSASigner) PublicJWK() JWK {
	return NewEd25519JWK(s.kid, "sig", s.Alg(), s.pub)
}

func (s *EdDSASigner) Validate() error {
	if len(s.key) != ed25519.PrivateKeySize || len(s.pub) != ed25519.PublicKeySize {
		return errors.New("jwtx: malformed Ed25519 key")
	}
	return nil
}
