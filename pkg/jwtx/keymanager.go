package jwtx

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/escritorio/pkg/cryptox"
)

// KeyManager bundles the signer, the published key set and a verifier bound
// to the same issuer and audience.
type KeyManager struct {
	Signer   Signer
	Verifier Verifier
	KeySet   *KeySet
}

// KeyManagerOptions configures a KeyManager.
type KeyManagerOptions struct {
	// KeyFile holds the PKCS8 PEM signing key. Empty means an ephemeral key
	// that only lives in memory, so every restart logs everybody out.
	KeyFile  string
	Issuer   string
	Audience []string
}

// NewKeyManager loads or creates the signing key described by opts.
func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: issuer is required")
	}

	var (
		pemKey []byte
		err    error
	)
	if opts.KeyFile == "" {
		pemKey, err = cryptox.GenerateEd25519Key()
	} else {
		pemKey, _, err = cryptox.LoadOrGenerateEd25519Key(opts.KeyFile)
	}
	if err != nil {
		return nil, err
	}

	signer, err := NewSignerEdDSA("", pemKey)
	if err != nil {
		return nil, err
	}
	if err := signer.Validate(); err != nil {
		return nil, err
	}

	keys := NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("jwtx: add signer: %w", err)
	}

	return &KeyManager{
		Signer:   signer,
		Verifier: NewCommonEdDSA(keys, opts.Issuer, opts.Audience),
		KeySet:   keys,
	}, nil
}

// IsReady reports whether a verification key is loaded.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}
