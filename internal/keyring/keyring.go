package keyring

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/avelline/envault/internal/configs"
	kerrors "github.com/avelline/envault/internal/errors"
	"github.com/avelline/envault/internal/parser"
)

const (
	// PrivateKeyName is the ambient variable holding the default private key.
	// Environment-specific keys append the uppercased environment tag, e.g.
	// ENVAULT_PRIVATE_KEY_PRODUCTION.
	PrivateKeyName = "ENVAULT_PRIVATE_KEY"

	// KeysFileName is the conventional local key-store file, kept next to the
	// env files it unlocks and never committed.
	KeysFileName = ".env.keys"

	// helperBinary is the external keypair helper consulted before the local
	// fallback. Its trimmed stdout is the key.
	helperBinary = "envault-keypair"
)

var (
	privateKeyPattern = regexp.MustCompile(`^ENVAULT_PRIVATE_KEY(?:_([A-Za-z0-9_]+))?$`)
	tagSanitizer      = regexp.MustCompile(`[^A-Z0-9]+`)
)

// MatchPrivateKeyName reports whether an ambient variable name is a private
// key name, and if so which environment tag it carries ("" for the default).
func MatchPrivateKeyName(name string) (string, bool) {
	m := privateKeyPattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// KeyNameForPath derives the private key variable name that guards an env
// file: .env maps to ENVAULT_PRIVATE_KEY, .env.production maps to
// ENVAULT_PRIVATE_KEY_PRODUCTION.
func KeyNameForPath(envFilePath string) string {
	base := filepath.Base(envFilePath)
	suffix := strings.TrimPrefix(base, ".env")
	suffix = strings.TrimPrefix(suffix, ".")
	if suffix == "" {
		return PrivateKeyName
	}
	return PrivateKeyName + "_" + sanitizeTag(suffix)
}

// PathForKeyName is the inverse mapping, used when synthesizing default
// sources from ambient key names.
func PathForKeyName(keyName string) string {
	environment, ok := MatchPrivateKeyName(keyName)
	if !ok || environment == "" {
		return ".env"
	}
	return ".env." + environment
}

// sanitizeTag uppercases an environment tag and squashes anything that can't
// appear in a variable name.
func sanitizeTag(tag string) string {
	return tagSanitizer.ReplaceAllString(strings.ToUpper(tag), "_")
}

// LookupFunc is an extension hook that resolves the private key for an env
// file path. Returning kerrors.ErrNoKey defers to the next strategy.
type LookupFunc func(envFilePath string) (string, error)

// Resolver is one strategy for locating the private key of an env file.
// Resolve returns the key as a 64-hex-character string, or kerrors.ErrNoKey
// when this strategy has nothing for the path.
type Resolver interface {
	Name() string
	Resolve(envFilePath string) (string, error)
}

// ExtensionResolver consults a process-registered lookup hook, letting
// embedding applications supply keys from their own stores.
type ExtensionResolver struct {
	Lookup LookupFunc
}

func (r ExtensionResolver) Name() string { return "extension" }

func (r ExtensionResolver) Resolve(envFilePath string) (string, error) {
	if r.Lookup == nil {
		return "", kerrors.ErrNoKey
	}
	return r.Lookup(envFilePath)
}

// HelperResolver shells out to the envault-keypair helper binary, if one is
// installed on PATH.
type HelperResolver struct{}

func (r HelperResolver) Name() string { return "helper" }

func (r HelperResolver) Resolve(envFilePath string) (string, error) {
	bin, err := exec.LookPath(helperBinary)
	if err != nil {
		return "", kerrors.ErrNoKey
	}

	out, err := exec.Command(bin, envFilePath).Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s failed: %v", kerrors.ErrNoKey, helperBinary, err)
	}

	key := strings.TrimSpace(string(out))
	if key == "" {
		return "", kerrors.ErrNoKey
	}
	return key, nil
}

// LocalResolver guesses the key name from the env file's naming convention
// and looks it up in the ambient namespace, then in a sibling .env.keys file.
type LocalResolver struct {
	// Ambient is the caller's environment snapshot.
	Ambient map[string]string
}

func (r LocalResolver) Name() string { return "local" }

func (r LocalResolver) Resolve(envFilePath string) (string, error) {
	keyName := KeyNameForPath(envFilePath)

	if key := strings.TrimSpace(r.Ambient[keyName]); key != "" {
		return key, nil
	}

	keysPath := filepath.Join(filepath.Dir(envFilePath), KeysFileName)
	keys, err := LoadKeysFile(keysPath)
	if err != nil {
		return "", kerrors.ErrNoKey
	}
	if key := strings.TrimSpace(keys[keyName]); key != "" {
		return key, nil
	}

	return "", kerrors.ErrNoKey
}

// UserResolver checks the user-wide key store, for private keys shared
// across a user's projects. The store uses the same env format as .env.keys.
type UserResolver struct {
	KeysPath string
}

func (r UserResolver) Name() string { return "user" }

func (r UserResolver) Resolve(envFilePath string) (string, error) {
	if r.KeysPath == "" {
		return "", kerrors.ErrNoKey
	}
	keys, err := LoadKeysFile(r.KeysPath)
	if err != nil {
		return "", kerrors.ErrNoKey
	}
	if key := strings.TrimSpace(keys[KeyNameForPath(envFilePath)]); key != "" {
		return key, nil
	}
	return "", kerrors.ErrNoKey
}

// Chain evaluates resolver strategies in order. The first strategy returning
// a key wins; every failure, whatever its cause, falls through to the next.
type Chain struct {
	resolvers []Resolver
}

// NewChain builds the default strategy order: registered extension hook,
// external helper binary, local fallback, user-wide key store.
func NewChain(ambient map[string]string) *Chain {
	return &Chain{resolvers: []Resolver{
		ExtensionResolver{Lookup: extensionLookup},
		HelperResolver{},
		LocalResolver{Ambient: ambient},
		UserResolver{KeysPath: configs.UserEnvaultSettings.UserKeysPath},
	}}
}

// NewChainWith builds a chain from an explicit resolver list, for tests and
// embedding applications.
func NewChainWith(resolvers ...Resolver) *Chain {
	return &Chain{resolvers: resolvers}
}

// Resolve walks the chain and returns the first key found, or
// kerrors.ErrNoKey when every strategy came up empty.
func (c *Chain) Resolve(envFilePath string) (string, error) {
	for _, r := range c.resolvers {
		key, err := r.Resolve(envFilePath)
		if err != nil {
			continue
		}
		if strings.TrimSpace(key) != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w for %s", kerrors.ErrNoKey, envFilePath)
}

var extensionLookup LookupFunc

// RegisterExtension installs a process-wide extension lookup hook consulted
// before any other strategy. Passing nil removes it.
func RegisterExtension(fn LookupFunc) {
	extensionLookup = fn
}

// LoadKeysFile reads a .env.keys file into a map. A missing file is an error;
// callers in the resolver chain treat any failure as "no key here".
func LoadKeysFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values, _ := parser.Parse(string(data))
	return values, nil
}

// SetKey writes or replaces one entry in a .env.keys file, creating the file
// with a header comment when it doesn't exist yet. Entries are kept sorted.
func SetKey(path, name, value string) error {
	keys, err := LoadKeysFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading keys file: %w", err)
		}
		keys = make(map[string]string)
	}
	keys[name] = value
	return saveKeysFile(path, keys)
}

func saveKeysFile(path string, keys map[string]string) error {
	var b strings.Builder
	b.WriteString("#/ envault private keys, DO NOT COMMIT\n")
	b.WriteString("#/ add this file to your .gitignore\n")

	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b.WriteString(name)
		b.WriteString("=\"")
		b.WriteString(keys[name])
		b.WriteString("\"\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0600)
}
