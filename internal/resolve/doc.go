// Package resolve is envault's resolution engine.
//
// A run turns an ordered plan of configuration sources (inline KEY=VALUE
// strings, plaintext env files, encrypted vault containers) into a single
// namespace with deterministic precedence, and reports per source what
// happened.
//
// # Plan
//
// BuildPlan normalizes the caller's sources and ambient signals into the
// final ordered list, synthesizing defaults (.env, .env.vault, or one file
// per ambient private-key variable) when the caller supplied nothing that
// covers them. Caller entries are never removed or reordered.
//
// # Run
//
// The Engine processes the plan strictly in order. Each source is parsed
// (and decrypted for vaults and sentinel-marked values), expanded against
// the namespace as it stands, and injected under the overload policy:
// pre-existing keys are protected unless overload is on. A failing source is
// recorded and the run continues; only a missing vault file or a blank
// master secret aborts, because nothing after them could resolve.
//
// # Report
//
// The Report aggregates one ProcessedSource record per source plus the
// cross-source sets: readable strings, readable file paths, and the union of
// injected keys.
package resolve
