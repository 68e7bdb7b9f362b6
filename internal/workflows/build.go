package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avelline/envault/internal/audit"
	kerrors "github.com/avelline/envault/internal/errors"
	"github.com/avelline/envault/internal/keyring"
	"github.com/avelline/envault/internal/vault"
)

// BuildOptions configures building a vault container from plaintext files.
type BuildOptions struct {
	// EnvFiles are the plaintext files to encrypt, concatenated in order.
	// Defaults to [".env"].
	EnvFiles []string

	// Environment tags the container entry, e.g. "production".
	Environment string

	// VaultPath is the container to write. Defaults to .env.vault next to
	// the first env file.
	VaultPath string

	// KeysPath is the key-store file receiving the master secret. Defaults
	// to .env.keys next to the vault.
	KeysPath string

	// DryRun previews the build without writing anything.
	DryRun bool
}

// BuildResult contains the outcome of a build.
type BuildResult struct {
	// VaultPath is the container that was (or would be) written.
	VaultPath string

	// KeysPath is the key-store file holding the master secret.
	KeysPath string

	// Environment is the container entry's environment tag.
	Environment string

	// MasterSecret is the secret that unlocks the new entry. Populated on
	// first build of an environment and reused from the key store afterward.
	MasterSecret string

	// SourceFiles lists the env files that were encrypted.
	SourceFiles []string

	// DryRun indicates whether this was a dry-run (no files modified).
	DryRun bool
}

// Build encrypts plaintext env files into one environment entry of a vault
// container.
//
// The entry's master secret is reused from the key store when the
// environment was built before, so rebuilding doesn't invalidate secrets
// already distributed; otherwise a fresh key is generated and stored.
// Existing container entries for other environments are preserved.
func Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if opts.Environment == "" {
		return nil, fmt.Errorf("build requires an environment tag")
	}

	envFiles := opts.EnvFiles
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	var plaintext strings.Builder
	for _, file := range envFiles {
		data, err := os.ReadFile(file)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrMissingEnvFile, file)
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		plaintext.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			plaintext.WriteByte('\n')
		}
	}

	vaultPath := opts.VaultPath
	if vaultPath == "" {
		vaultPath = filepath.Join(filepath.Dir(envFiles[0]), vault.DefaultVaultFile)
	}
	keysPath := opts.KeysPath
	if keysPath == "" {
		keysPath = filepath.Join(filepath.Dir(vaultPath), keyring.KeysFileName)
	}

	masterSecret, key, err := masterKeyForEnvironment(keysPath, opts.Environment)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		VaultPath:    vaultPath,
		KeysPath:     keysPath,
		Environment:  opts.Environment,
		MasterSecret: masterSecret,
		SourceFiles:  envFiles,
		DryRun:       opts.DryRun,
	}
	if opts.DryRun {
		return result, nil
	}

	ciphertext, err := vault.EncryptValue(plaintext.String(), key)
	if err != nil {
		return nil, err
	}

	entries, err := vault.LoadContainer(vaultPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading existing vault: %w", err)
		}
		entries = make(map[string]string)
	}
	entries[vault.EnvironmentKey(opts.Environment)] = ciphertext

	if err := vault.WriteContainer(vaultPath, entries); err != nil {
		return nil, fmt.Errorf("writing vault: %w", err)
	}
	if err := keyring.SetKey(keysPath, vault.MasterSecretNameForEnvironment(opts.Environment), masterSecret); err != nil {
		return nil, fmt.Errorf("writing key store: %w", err)
	}

	entry := audit.NewEntry("build")
	entry.Environment = opts.Environment
	entry.Sources = envFiles
	audit.Log(entry)

	return result, nil
}

// masterKeyForEnvironment reuses the environment's master secret from the
// key store, or generates a fresh one.
func masterKeyForEnvironment(keysPath, environment string) (string, [32]byte, error) {
	keys, err := keyring.LoadKeysFile(keysPath)
	if err == nil {
		if secret := keys[vault.MasterSecretNameForEnvironment(environment)]; secret != "" {
			parsed, err := vault.ParseMasterSecret(secret)
			if err != nil {
				return "", [32]byte{}, fmt.Errorf("key store entry for %s: %w", environment, err)
			}
			return secret, parsed[0].Key, nil
		}
	}

	key, err := vault.GenerateKey()
	if err != nil {
		return "", [32]byte{}, err
	}
	return vault.FormatMasterSecret(environment, key), key, nil
}
