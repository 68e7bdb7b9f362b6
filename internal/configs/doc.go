// Package configs manages envault's project discovery and settings.
//
// A project root is the nearest ancestor directory containing .envault.toml,
// .env.vault, .env.keys or .env. The optional .envault.toml settings file
// carries the default environment tag and the audit toggle. User-wide paths
// (the shared key store under the data directory) are resolved at startup
// and are independent of any project.
package configs
