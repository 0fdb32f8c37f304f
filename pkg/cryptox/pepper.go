package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Argon2id parameters.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	pepperMu sync.RWMutex
	pepper   string
)

// LoadPepper reads the password pepper from path, creating it with 32 random
// bytes when missing. It must run before any password is hashed.
func LoadPepper(path string) error {
	p, err := loadOrCreateSecretFile(path, keyLength)
	if err != nil {
		return fmt.Errorf("cryptox: pepper: %w", err)
	}
	SetPepper(p)
	return nil
}

// SetPepper installs p directly. Tests use it to avoid touching disk.
func SetPepper(p string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepper = p
}

// Pepper returns the installed pepper.
func Pepper() string {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return pepper
}

func loadOrCreateSecretFile(path string, size int) (string, error) {
	path = filepath.Clean(path)
	data, err := os.ReadFile(path)
	if err == nil {
		return strings.TrimSpace(string(data)), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", err
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	secret := base64.RawURLEncoding.EncodeToString(buf)
	if err := os.WriteFile(path, []byte(secret), 0o600); err != nil {
		return "", err
	}
	return secret, nil
}
