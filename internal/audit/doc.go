// Package audit provides an append-only log of envault operations.
//
// Entries are JSON Lines in .envault.audit.jsonl at the project root, one
// object per line. Only operation metadata and key names are recorded,
// never secret values, so the log can be committed alongside the vault.
// Audit writes are best-effort: a failed write never fails the operation.
package audit
