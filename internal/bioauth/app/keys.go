package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/bioauth/pkg/jwtx"
)

// InitSessionKeys generates the signing keys for session tokens.
//
// Keys live only in memory: every session issued before a restart becomes
// invalid and clients have to log in again. Use BIOAUTH_NUM_KEYS to change
// how many keys are published in the JWKS.
func InitSessionKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	logger.Info("initializing ephemeral key manager", "num_keys", cfg.NumKeys)

	keyManager, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:  cfg.Issuer,
		NumKeys: cfg.NumKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
	}

	logger.Info("generated ephemeral signing keys",
		"algorithm", "EdDSA",
		"num_keys", keyManager.NumSigners(),
		"issuer", cfg.Issuer,
	)
	logger.Warn("all existing session tokens are now invalid due to key rotation on startup")

	return keyManager, nil
}
