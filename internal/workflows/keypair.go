package workflows

import (
	"context"
	"fmt"

	"github.com/avelline/envault/internal/audit"
	"github.com/avelline/envault/internal/keyring"
	"github.com/avelline/envault/internal/vault"
)

// KeypairOptions configures private key generation.
type KeypairOptions struct {
	// Environment scopes the key name; empty means the default key
	// (ENVAULT_PRIVATE_KEY).
	Environment string

	// KeysPath is the key-store file to write. Defaults to .env.keys in the
	// working directory.
	KeysPath string

	// Force replaces an existing key. Without it, generating over an
	// existing entry is an error, since the old key may still guard values.
	Force bool
}

// KeypairResult contains the outcome of a keypair generation.
type KeypairResult struct {
	// KeyName is the key-store entry that was written.
	KeyName string

	// KeysPath is the key-store file.
	KeysPath string

	// Key is the generated key in its hex wire form.
	Key string
}

// Keypair generates a fresh private key for encrypting individual env-file
// values and stores it in the local key store.
func Keypair(ctx context.Context, opts KeypairOptions) (*KeypairResult, error) {
	keysPath := opts.KeysPath
	if keysPath == "" {
		keysPath = keyring.KeysFileName
	}

	keyName := keyring.PrivateKeyName
	if opts.Environment != "" {
		keyName = keyring.KeyNameForPath(".env." + opts.Environment)
	}

	if !opts.Force {
		if keys, err := keyring.LoadKeysFile(keysPath); err == nil && keys[keyName] != "" {
			return nil, fmt.Errorf("%s already exists in %s, pass force to replace it", keyName, keysPath)
		}
	}

	key, err := vault.GenerateKey()
	if err != nil {
		return nil, err
	}

	encoded := vault.EncodeKey(key)
	if err := keyring.SetKey(keysPath, keyName, encoded); err != nil {
		return nil, fmt.Errorf("writing key store: %w", err)
	}

	entry := audit.NewEntry("keypair")
	entry.Environment = opts.Environment
	audit.Log(entry)

	return &KeypairResult{KeyName: keyName, KeysPath: keysPath, Key: encoded}, nil
}
