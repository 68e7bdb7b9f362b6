package errors

import "errors"

// Source errors indicate a configuration source could not be read.
var (
	// ErrMissingEnvFile indicates a plaintext env file does not exist at the
	// resolved path.
	ErrMissingEnvFile = errors.New("env file not found")

	// ErrMissingVaultFile indicates the vault file does not exist. This is
	// fatal for the run: a vault-based plan cannot proceed without it.
	ErrMissingVaultFile = errors.New("vault file not found")

	// ErrParseFailed indicates a source's content could not be parsed at all.
	ErrParseFailed = errors.New("failed to parse source")
)

// Vault errors indicate failures while unlocking an encrypted vault.
var (
	// ErrMissingMasterSecret indicates the master secret was blank while a
	// vault source required one. Fatal for the run.
	ErrMissingMasterSecret = errors.New("master secret is missing or blank")

	// ErrInvalidMasterSecret indicates the master secret does not have the
	// evk_<environment>_<key> shape.
	ErrInvalidMasterSecret = errors.New("master secret has invalid format")

	// ErrEnvironmentNotFound indicates the vault container has no entry for
	// the environment named by the master secret.
	ErrEnvironmentNotFound = errors.New("environment not found in vault")
)

// Cryptographic errors indicate failures during encryption or decryption.
var (
	// ErrDecryptFailed indicates a ciphertext could not be decrypted with the
	// provided key.
	ErrDecryptFailed = errors.New("failed to decrypt value")

	// ErrEncryptFailed indicates a plaintext could not be encrypted.
	ErrEncryptFailed = errors.New("failed to encrypt value")

	// ErrInvalidPrivateKey indicates a private key is malformed (not 64 hex
	// characters).
	ErrInvalidPrivateKey = errors.New("invalid private key format")
)

// Key resolution errors indicate a decryption key could not be located.
var (
	// ErrNoKey indicates a key resolver strategy has no key for the given
	// file. Resolver chains treat this as "try the next strategy".
	ErrNoKey = errors.New("no private key available")
)

// Expansion errors indicate failures while expanding resolved values.
var (
	// ErrCommandFailed indicates a command substitution inside a value exited
	// with an error.
	ErrCommandFailed = errors.New("command substitution failed")
)

// Project errors indicate issues with project discovery or configuration.
var (
	// ErrProjectNotFound indicates no project root could be located from the
	// working directory.
	ErrProjectNotFound = errors.New("project root not found")

	// ErrInvalidProjectConfig indicates the project configuration file is
	// malformed.
	ErrInvalidProjectConfig = errors.New("project configuration is invalid")
)
