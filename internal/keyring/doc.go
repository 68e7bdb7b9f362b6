// Package keyring locates the private keys that unlock encrypted values in
// env files.
//
// Resolution is an explicit ordered list of strategies rather than
// exception-driven fallthrough. Each strategy either produces a key or
// returns ErrNoKey, and a Chain walks them in order:
//
//  1. a lookup hook registered by an embedding application (RegisterExtension)
//  2. the envault-keypair helper binary, if installed on PATH
//  3. the local fallback: the ENVAULT_PRIVATE_KEY[_<ENV>] variable guessed
//     from the file's naming convention, checked in the ambient namespace and
//     then in a sibling .env.keys file
//  4. the user-wide key store under the user's data directory
//
// Any strategy failure falls through silently; only a fully exhausted chain
// reports ErrNoKey to the caller, which treats the file as plaintext.
package keyring
