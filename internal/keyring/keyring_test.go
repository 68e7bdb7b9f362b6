package keyring

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kerrors "github.com/avelline/envault/internal/errors"
)

const testKeyHex = "aabbccddeeff00112233445566778899aabbccddeeff00112233445566778899"

// writeTestFile is a helper to write test files.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func TestMatchPrivateKeyName(t *testing.T) {
	cases := []struct {
		name        string
		environment string
		ok          bool
	}{
		{"ENVAULT_PRIVATE_KEY", "", true},
		{"ENVAULT_PRIVATE_KEY_PRODUCTION", "production", true},
		{"ENVAULT_PRIVATE_KEY_STAGING_EU", "staging_eu", true},
		{"ENVAULT_KEY", "", false},
		{"PATH", "", false},
		{"MY_ENVAULT_PRIVATE_KEY", "", false},
	}

	for _, tc := range cases {
		environment, ok := MatchPrivateKeyName(tc.name)
		if ok != tc.ok {
			t.Errorf("%s: expected ok=%t, got %t", tc.name, tc.ok, ok)
			continue
		}
		if environment != tc.environment {
			t.Errorf("%s: expected environment %q, got %q", tc.name, tc.environment, environment)
		}
	}
}

func TestKeyNameForPath(t *testing.T) {
	cases := map[string]string{
		".env":                     "ENVAULT_PRIVATE_KEY",
		"/app/.env":                "ENVAULT_PRIVATE_KEY",
		".env.production":          "ENVAULT_PRIVATE_KEY_PRODUCTION",
		"config/.env.staging-eu":   "ENVAULT_PRIVATE_KEY_STAGING_EU",
		"/srv/app/.env.local":      "ENVAULT_PRIVATE_KEY_LOCAL",
		"/srv/app/.env.staging_eu": "ENVAULT_PRIVATE_KEY_STAGING_EU",
	}

	for path, expected := range cases {
		if got := KeyNameForPath(path); got != expected {
			t.Errorf("%s: expected %s, got %s", path, expected, got)
		}
	}
}

func TestPathForKeyName(t *testing.T) {
	if got := PathForKeyName("ENVAULT_PRIVATE_KEY"); got != ".env" {
		t.Errorf("Expected .env, got: %s", got)
	}
	if got := PathForKeyName("ENVAULT_PRIVATE_KEY_PRODUCTION"); got != ".env.production" {
		t.Errorf("Expected .env.production, got: %s", got)
	}
}

func TestLocalResolver_AmbientWins(t *testing.T) {
	r := LocalResolver{Ambient: map[string]string{"ENVAULT_PRIVATE_KEY_PRODUCTION": testKeyHex}}

	key, err := r.Resolve("/srv/app/.env.production")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if key != testKeyHex {
		t.Errorf("Expected ambient key, got: %q", key)
	}
}

func TestLocalResolver_KeysFileFallback(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-keyring-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	keysPath := filepath.Join(tmpDir, KeysFileName)
	writeTestFile(t, keysPath, "ENVAULT_PRIVATE_KEY=\""+testKeyHex+"\"\n")

	r := LocalResolver{Ambient: map[string]string{}}
	key, err := r.Resolve(filepath.Join(tmpDir, ".env"))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if key != testKeyHex {
		t.Errorf("Expected keys-file key, got: %q", key)
	}
}

func TestLocalResolver_NoKey(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-keyring-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	r := LocalResolver{Ambient: map[string]string{}}
	if _, err := r.Resolve(filepath.Join(tmpDir, ".env")); !errors.Is(err, kerrors.ErrNoKey) {
		t.Errorf("Expected ErrNoKey, got: %v", err)
	}
}

func TestUserResolver(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-keyring-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	keysPath := filepath.Join(tmpDir, "keys")
	writeTestFile(t, keysPath, "ENVAULT_PRIVATE_KEY_PRODUCTION=\""+testKeyHex+"\"\n")

	r := UserResolver{KeysPath: keysPath}
	key, err := r.Resolve("/srv/app/.env.production")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if key != testKeyHex {
		t.Errorf("Expected user store key, got: %q", key)
	}

	if _, err := r.Resolve("/srv/app/.env.staging"); !errors.Is(err, kerrors.ErrNoKey) {
		t.Errorf("Expected ErrNoKey for unknown environment, got: %v", err)
	}

	empty := UserResolver{}
	if _, err := empty.Resolve(".env"); !errors.Is(err, kerrors.ErrNoKey) {
		t.Errorf("Expected ErrNoKey with no store path, got: %v", err)
	}
}

type stubResolver struct {
	key string
	err error
}

func (s stubResolver) Name() string { return "stub" }

func (s stubResolver) Resolve(string) (string, error) { return s.key, s.err }

func TestChain_FirstSuccessWins(t *testing.T) {
	chain := NewChainWith(
		stubResolver{err: kerrors.ErrNoKey},
		stubResolver{key: "first"},
		stubResolver{key: "second"},
	)

	key, err := chain.Resolve(".env")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if key != "first" {
		t.Errorf("Expected first, got: %q", key)
	}
}

func TestChain_AnyFailureFallsThrough(t *testing.T) {
	chain := NewChainWith(
		stubResolver{err: errors.New("broken strategy")},
		stubResolver{key: "recovered"},
	)

	key, err := chain.Resolve(".env")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if key != "recovered" {
		t.Errorf("Expected recovered, got: %q", key)
	}
}

func TestChain_Exhausted(t *testing.T) {
	chain := NewChainWith(stubResolver{err: kerrors.ErrNoKey})

	if _, err := chain.Resolve(".env"); !errors.Is(err, kerrors.ErrNoKey) {
		t.Errorf("Expected ErrNoKey, got: %v", err)
	}
}

func TestExtensionResolver(t *testing.T) {
	r := ExtensionResolver{}
	if _, err := r.Resolve(".env"); !errors.Is(err, kerrors.ErrNoKey) {
		t.Errorf("Expected ErrNoKey with no hook, got: %v", err)
	}

	r = ExtensionResolver{Lookup: func(path string) (string, error) {
		if strings.HasSuffix(path, ".env.production") {
			return testKeyHex, nil
		}
		return "", kerrors.ErrNoKey
	}}

	key, err := r.Resolve(".env.production")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if key != testKeyHex {
		t.Errorf("Expected hook key, got: %q", key)
	}
}

func TestSetKey_CreatesAndUpdates(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "envault-keyring-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	keysPath := filepath.Join(tmpDir, KeysFileName)

	if err := SetKey(keysPath, "ENVAULT_PRIVATE_KEY", testKeyHex); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := SetKey(keysPath, "ENVAULT_KEY_PRODUCTION", "evk_production_"+testKeyHex); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	keys, err := LoadKeysFile(keysPath)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if keys["ENVAULT_PRIVATE_KEY"] != testKeyHex {
		t.Errorf("Expected private key to survive rewrite, got: %q", keys["ENVAULT_PRIVATE_KEY"])
	}
	if keys["ENVAULT_KEY_PRODUCTION"] != "evk_production_"+testKeyHex {
		t.Errorf("Expected master secret entry, got: %q", keys["ENVAULT_KEY_PRODUCTION"])
	}

	data, err := os.ReadFile(keysPath)
	if err != nil {
		t.Fatalf("Failed to read keys file: %v", err)
	}
	if !strings.Contains(string(data), "DO NOT COMMIT") {
		t.Error("Expected header comment in keys file")
	}
}
