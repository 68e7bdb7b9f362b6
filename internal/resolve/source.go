package resolve

import (
	"github.com/avelline/envault/internal/keyring"
	"github.com/avelline/envault/internal/vault"
)

// DefaultEnvFile is the plan's default plaintext source.
const DefaultEnvFile = ".env"

// SourceType tags the kind of a configuration source.
type SourceType int

const (
	// SourceInline is a literal KEY=VALUE string supplied by the caller.
	SourceInline SourceType = iota

	// SourceFile is a plaintext env file, possibly holding individually
	// encrypted values.
	SourceFile

	// SourceVaultFile is an encrypted vault container.
	SourceVaultFile
)

func (t SourceType) String() string {
	switch t {
	case SourceInline:
		return "inline"
	case SourceFile:
		return "file"
	case SourceVaultFile:
		return "vault"
	default:
		return "unknown"
	}
}

// Source identifies one unit of configuration input. Value is the literal
// string for inline sources and the file path otherwise.
type Source struct {
	Type  SourceType
	Value string
}

// Inline builds a source from a literal KEY=VALUE string.
func Inline(value string) Source { return Source{Type: SourceInline, Value: value} }

// File builds a source from a plaintext env file path.
func File(path string) Source { return Source{Type: SourceFile, Value: path} }

// VaultFile builds a source from a vault container path.
func VaultFile(path string) Source { return Source{Type: SourceVaultFile, Value: path} }

// BuildPlan computes the ordered list of sources a run will process.
//
// callerEnvs are the caller's explicit sources, masterKeyPresent reports
// whether a vault master secret is available, and ambientPrivateKeyNames is a
// snapshot of ambient variable names matching the private-key pattern
// (ENVAULT_PRIVATE_KEY[_<ENV>]). The first matching rule wins:
//
//  1. no caller sources, private key names present: one file source per key
//     name, mapped to its conventional path (.env, .env.<environment>)
//  2. no caller sources, master secret present: the default vault file
//  3. no caller sources: the default env file
//  4. caller already has a vault source and the master secret is present:
//     caller sources unchanged
//  5. caller already has a file source and no master secret: caller sources
//     unchanged
//  6. otherwise: the appropriate default is prepended to the caller sources
//
// Caller-supplied entries are never removed or reordered. Prepending matters:
// earlier sources are processed first, so under overload the caller's own
// sources override the synthesized default.
func BuildPlan(callerEnvs []Source, masterKeyPresent bool, ambientPrivateKeyNames []string) []Source {
	if len(callerEnvs) == 0 {
		if len(ambientPrivateKeyNames) > 0 {
			plan := make([]Source, 0, len(ambientPrivateKeyNames))
			for _, name := range ambientPrivateKeyNames {
				plan = append(plan, File(keyring.PathForKeyName(name)))
			}
			return plan
		}
		if masterKeyPresent {
			return []Source{VaultFile(vault.DefaultVaultFile)}
		}
		return []Source{File(DefaultEnvFile)}
	}

	if masterKeyPresent && containsType(callerEnvs, SourceVaultFile) {
		return callerEnvs
	}
	if !masterKeyPresent && containsType(callerEnvs, SourceFile) {
		return callerEnvs
	}

	defaultSource := File(DefaultEnvFile)
	if masterKeyPresent {
		defaultSource = VaultFile(vault.DefaultVaultFile)
	}

	plan := make([]Source, 0, len(callerEnvs)+1)
	plan = append(plan, defaultSource)
	plan = append(plan, callerEnvs...)
	return plan
}

func containsType(sources []Source, t SourceType) bool {
	for _, s := range sources {
		if s.Type == t {
			return true
		}
	}
	return false
}
