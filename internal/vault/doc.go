// Package vault implements envault's encrypted-value format.
//
// # Master secrets
//
// A master secret unlocks one environment of a vault container:
//
//	evk_<environment>_<64 hex characters>
//
// The hex part decodes to a 256-bit NaCl secretbox key. During key rotation
// the master secret may be a comma-separated list; decryption tries each
// entry in order and the first one that matches a container entry and
// decrypts successfully wins.
//
// # Vault containers
//
// A vault container (.env.vault) is itself a plaintext KEY=VALUE file. Each
// key is ENVAULT_<ENVIRONMENT> (environment tag uppercased) and each value is
// the encrypted KEY=VALUE document for that environment.
//
// # Ciphertext layout
//
// Values are sealed with NaCl secretbox. A random 24-byte nonce is prepended
// to the ciphertext and the whole thing is base64 encoded, so encryption is
// non-deterministic. Individual values inside plaintext env files use the
// same layout behind an "encrypted:" sentinel prefix.
package vault
