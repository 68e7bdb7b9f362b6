package vault

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/avelline/envault/internal/parser"
)

// MasterSecretName is the ambient variable a run reads its master secret
// from. Per-environment secrets stored in .env.keys append the uppercased
// environment tag, e.g. ENVAULT_KEY_PRODUCTION.
const MasterSecretName = "ENVAULT_KEY"

// MasterSecretNameForEnvironment returns the .env.keys entry name holding an
// environment's master secret.
func MasterSecretNameForEnvironment(environment string) string {
	return MasterSecretName + "_" + strings.ToUpper(environment)
}

// EncodeKey renders key bytes in their 64-hex-character wire form.
func EncodeKey(key [keySize]byte) string {
	return fmt.Sprintf("%x", key[:])
}

// LoadContainer reads a vault container file into its raw entries
// (ENVAULT_<ENVIRONMENT> to ciphertext).
func LoadContainer(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text, err := parser.DecodeText(data)
	if err != nil {
		return nil, err
	}

	entries, _ := parser.Parse(text)
	return entries, nil
}

// WriteContainer writes a vault container file with its entries sorted, so
// rebuilds produce stable diffs.
func WriteContainer(path string, entries map[string]string) error {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("#/ envault vault file, safe to commit\n")
	b.WriteString("#/ rebuild with `envault build`, decrypt with your master secret\n")
	for _, name := range names {
		b.WriteString(name)
		b.WriteString("=\"")
		b.WriteString(entries[name])
		b.WriteString("\"\n")
	}

	// #nosec G306 -- the container holds ciphertext only and is meant to be committed.
	return os.WriteFile(path, []byte(b.String()), 0644)
}
