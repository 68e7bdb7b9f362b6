// Package workflows implements envault's operations independent of their
// CLI presentation.
//
// Each workflow takes an Options struct and returns a Result struct, so the
// cmd layer stays a thin shell around formatting and flags:
//
//   - Run resolves sources into a namespace and reports what happened.
//   - Build encrypts plaintext env files into a vault container entry.
//   - Keypair generates a private key for value-level encryption.
package workflows
