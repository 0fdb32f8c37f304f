package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/escritorio/pkg/cryptox"
	"github.com/aussiebroadwan/escritorio/pkg/jwtx"
)

// Audience is the aud claim of every access token this service issues.
const Audience = "backoffice"

// InitKeys loads the password pepper and the token signing key, creating
// either file on first start. The pepper also keys the sealer that protects
// TOTP seeds, so losing it invalidates passwords and MFA enrolments alike.
func InitKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, *cryptox.Sealer, error) {
	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, nil, err
	}
	sealer, err := cryptox.NewSealer([]byte(cryptox.Pepper()))
	if err != nil {
		return nil, nil, err
	}

	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		KeyFile:  cfg.SigningKeyFile,
		Issuer:   cfg.Issuer,
		Audience: []string{Audience},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize signing key: %w", err)
	}

	if cfg.SigningKeyFile == "" {
		logger.Warn("signing key is ephemeral, tokens will not survive a restart")
	}
	logger.Info("signing key loaded", "kid", km.Signer.KID(), "issuer", cfg.Issuer)
	return km, sealer, nil
}
