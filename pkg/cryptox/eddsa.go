package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// GenerateEd25519Key returns a new Ed25519 private key as PKCS8 PEM.
func GenerateEd25519Key() ([]byte, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: generate Ed25519 key: %w", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("cryptox: marshal PKCS8 key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// LoadOrGenerateEd25519Key reads a PEM key from path. When the file does not
// exist a key is generated and written with 0600 permissions. The second
// return value reports whether the key was created.
func LoadOrGenerateEd25519Key(path string) ([]byte, bool, error) {
	path = filepath.Clean(path)
	data, err := os.ReadFile(path)
	if err == nil {
		return data, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("cryptox: read signing key: %w", err)
	}

	pemKey, err := GenerateEd25519Key()
	if err != nil {
		return nil, false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, false, fmt.Errorf("cryptox: create key dir: %w", err)
	}
	if err := os.WriteFile(path, pemKey, 0o600); err != nil {
		return nil, false, fmt.Errorf("cryptox: write signing key: %w", err)
	}
	return pemKey, true, nil
}
