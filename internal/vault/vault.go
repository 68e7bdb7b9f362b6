package vault

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	kerrors "github.com/avelline/envault/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// DefaultVaultFile is the conventional vault container filename.
	DefaultVaultFile = ".env.vault"

	// ContainerPrefix namespaces per-environment entries inside a vault
	// container, e.g. ENVAULT_PRODUCTION.
	ContainerPrefix = "ENVAULT_"

	// EncryptedValuePrefix marks an individual env-file value as ciphertext.
	EncryptedValuePrefix = "encrypted:"

	// masterSecretPrefix starts every master secret: evk_<environment>_<hex key>.
	masterSecretPrefix = "evk_"

	keySize   = 32
	nonceSize = 24
)

// MasterKey is one decoded rotation entry of a master secret.
type MasterKey struct {
	// Environment is the tag embedded in the secret, e.g. "production".
	Environment string

	// Key is the 256-bit secretbox key.
	Key [keySize]byte
}

// ContainerKey returns the vault container entry name for this key's
// environment, e.g. ENVAULT_PRODUCTION.
func (m MasterKey) ContainerKey() string {
	return EnvironmentKey(m.Environment)
}

// EnvironmentKey returns the container entry name for an environment tag.
func EnvironmentKey(environment string) string {
	return ContainerPrefix + strings.ToUpper(environment)
}

// ParseMasterSecret decodes a master secret string into its rotation keys.
//
// A master secret is one or more comma-separated entries of the form
// evk_<environment>_<64 hex chars>. Order is preserved: during decryption the
// first entry that matches and decrypts wins.
func ParseMasterSecret(secret string) ([]MasterKey, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, kerrors.ErrMissingMasterSecret
	}

	var keys []MasterKey
	for _, part := range strings.Split(trimmed, ",") {
		key, err := parseMasterKey(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func parseMasterKey(entry string) (MasterKey, error) {
	if !strings.HasPrefix(entry, masterSecretPrefix) {
		return MasterKey{}, fmt.Errorf("%w: missing %q prefix", kerrors.ErrInvalidMasterSecret, masterSecretPrefix)
	}

	rest := entry[len(masterSecretPrefix):]

	// The environment tag may itself contain underscores, so the key is
	// everything after the last one.
	sep := strings.LastIndex(rest, "_")
	if sep <= 0 {
		return MasterKey{}, fmt.Errorf("%w: expected evk_<environment>_<key>", kerrors.ErrInvalidMasterSecret)
	}

	environment := rest[:sep]
	keyHex := rest[sep+1:]

	key, err := DecodeKey(keyHex)
	if err != nil {
		return MasterKey{}, fmt.Errorf("%w: %v", kerrors.ErrInvalidMasterSecret, err)
	}

	return MasterKey{Environment: environment, Key: key}, nil
}

// FormatMasterSecret renders a master secret string for an environment and key.
func FormatMasterSecret(environment string, key [keySize]byte) string {
	return masterSecretPrefix + environment + "_" + hex.EncodeToString(key[:])
}

// DecodeKey decodes a 64-hex-character private key into key bytes.
func DecodeKey(keyHex string) ([keySize]byte, error) {
	var key [keySize]byte
	raw, err := hex.DecodeString(strings.TrimSpace(keyHex))
	if err != nil {
		return key, fmt.Errorf("%w: not hex encoded", kerrors.ErrInvalidPrivateKey)
	}
	if len(raw) != keySize {
		return key, fmt.Errorf("%w: expected %d bytes, got %d", kerrors.ErrInvalidPrivateKey, keySize, len(raw))
	}
	copy(key[:], raw)
	return key, nil
}

// GenerateKey returns a fresh random 256-bit key.
func GenerateKey() ([keySize]byte, error) {
	var key [keySize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return key, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}
	return key, nil
}

// EncryptValue seals a plaintext with NaCl secretbox. The random 24-byte
// nonce is prepended to the ciphertext and the result is base64 encoded, so
// encrypting the same plaintext twice produces different output.
func EncryptValue(plaintext string, key [keySize]byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptValue opens a base64-encoded secretbox ciphertext produced by
// EncryptValue.
func DecryptValue(encoded string, key [keySize]byte) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext is not base64", kerrors.ErrDecryptFailed)
	}
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", kerrors.ErrDecryptFailed)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &key)
	if !ok {
		return "", kerrors.ErrDecryptFailed
	}
	return string(plaintext), nil
}

// IsEncryptedValue reports whether an env-file value carries the encrypted
// sentinel prefix.
func IsEncryptedValue(value string) bool {
	return strings.HasPrefix(value, EncryptedValuePrefix)
}

// DecryptEnvValue strips the encrypted sentinel and decrypts the remainder
// with the given key.
func DecryptEnvValue(value string, key [keySize]byte) (string, error) {
	return DecryptValue(strings.TrimPrefix(value, EncryptedValuePrefix), key)
}

// EncryptEnvValue encrypts a plaintext and attaches the encrypted sentinel,
// producing a value suitable for a plaintext env file.
func EncryptEnvValue(plaintext string, key [keySize]byte) (string, error) {
	encoded, err := EncryptValue(plaintext, key)
	if err != nil {
		return "", err
	}
	return EncryptedValuePrefix + encoded, nil
}
