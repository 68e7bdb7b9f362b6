package workflows

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avelline/envault/internal/keyring"
	"github.com/avelline/envault/internal/vault"
)

func TestBuild_CreatesVaultAndKeyStore(t *testing.T) {
	dir := tempDir(t)
	envPath := filepath.Join(dir, ".env")
	writeTestFile(t, envPath, "API_KEY=secret-value\n")

	result, err := Build(context.Background(), BuildOptions{
		EnvFiles:    []string{envPath},
		Environment: "production",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if result.VaultPath != filepath.Join(dir, vault.DefaultVaultFile) {
		t.Errorf("Expected vault next to env file, got: %s", result.VaultPath)
	}
	if _, err := os.Stat(result.VaultPath); err != nil {
		t.Errorf("Expected vault file to exist: %v", err)
	}
	if _, err := os.Stat(result.KeysPath); err != nil {
		t.Errorf("Expected key store to exist: %v", err)
	}

	keys, err := keyring.LoadKeysFile(result.KeysPath)
	if err != nil {
		t.Fatalf("Failed to load key store: %v", err)
	}
	if keys[vault.MasterSecretNameForEnvironment("production")] != result.MasterSecret {
		t.Errorf("Expected master secret in key store, got: %v", keys)
	}

	data, err := os.ReadFile(result.VaultPath)
	if err != nil {
		t.Fatalf("Failed to read vault: %v", err)
	}
	if strings.Contains(string(data), "secret-value") {
		t.Error("Vault file contains plaintext secret")
	}
}

func TestBuild_ReusesMasterSecret(t *testing.T) {
	dir := tempDir(t)
	envPath := filepath.Join(dir, ".env")
	writeTestFile(t, envPath, "FIRST=1\n")

	first, err := Build(context.Background(), BuildOptions{
		EnvFiles:    []string{envPath},
		Environment: "production",
	})
	if err != nil {
		t.Fatalf("First build failed: %v", err)
	}

	writeTestFile(t, envPath, "SECOND=2\n")
	second, err := Build(context.Background(), BuildOptions{
		EnvFiles:    []string{envPath},
		Environment: "production",
	})
	if err != nil {
		t.Fatalf("Second build failed: %v", err)
	}

	if first.MasterSecret != second.MasterSecret {
		t.Error("Expected rebuild to reuse the environment's master secret")
	}
}

func TestBuild_PreservesOtherEnvironments(t *testing.T) {
	dir := tempDir(t)
	envPath := filepath.Join(dir, ".env")
	writeTestFile(t, envPath, "SHARED=yes\n")

	prod, err := Build(context.Background(), BuildOptions{
		EnvFiles:    []string{envPath},
		Environment: "production",
	})
	if err != nil {
		t.Fatalf("Production build failed: %v", err)
	}
	if _, err := Build(context.Background(), BuildOptions{
		EnvFiles:    []string{envPath},
		Environment: "staging",
	}); err != nil {
		t.Fatalf("Staging build failed: %v", err)
	}

	entries, err := vault.LoadContainer(prod.VaultPath)
	if err != nil {
		t.Fatalf("Failed to load container: %v", err)
	}
	if entries[vault.EnvironmentKey("production")] == "" || entries[vault.EnvironmentKey("staging")] == "" {
		t.Errorf("Expected both environment entries, got: %v", entries)
	}
}

func TestBuild_DryRunWritesNothing(t *testing.T) {
	dir := tempDir(t)
	envPath := filepath.Join(dir, ".env")
	writeTestFile(t, envPath, "A=1\n")

	result, err := Build(context.Background(), BuildOptions{
		EnvFiles:    []string{envPath},
		Environment: "production",
		DryRun:      true,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !result.DryRun {
		t.Error("Expected dry-run result")
	}
	if _, err := os.Stat(result.VaultPath); !os.IsNotExist(err) {
		t.Error("Dry run should not write the vault file")
	}
	if _, err := os.Stat(result.KeysPath); !os.IsNotExist(err) {
		t.Error("Dry run should not write the key store")
	}
}

func TestBuild_MissingEnvFile(t *testing.T) {
	dir := tempDir(t)

	_, err := Build(context.Background(), BuildOptions{
		EnvFiles:    []string{filepath.Join(dir, ".env")},
		Environment: "production",
	})
	if err == nil {
		t.Fatal("Expected an error for a missing env file")
	}
}

func TestKeypair_GeneratesAndStoresKey(t *testing.T) {
	dir := tempDir(t)
	keysPath := filepath.Join(dir, keyring.KeysFileName)

	result, err := Keypair(context.Background(), KeypairOptions{
		Environment: "production",
		KeysPath:    keysPath,
	})
	if err != nil {
		t.Fatalf("Keypair failed: %v", err)
	}

	if result.KeyName != "ENVAULT_PRIVATE_KEY_PRODUCTION" {
		t.Errorf("Expected environment-scoped key name, got: %s", result.KeyName)
	}
	if _, err := vault.DecodeKey(result.Key); err != nil {
		t.Errorf("Expected a decodable key, got: %v", err)
	}

	keys, err := keyring.LoadKeysFile(keysPath)
	if err != nil {
		t.Fatalf("Failed to load key store: %v", err)
	}
	if keys[result.KeyName] != result.Key {
		t.Errorf("Expected key in key store, got: %v", keys)
	}
}

func TestKeypair_RefusesOverwriteWithoutForce(t *testing.T) {
	dir := tempDir(t)
	keysPath := filepath.Join(dir, keyring.KeysFileName)

	first, err := Keypair(context.Background(), KeypairOptions{KeysPath: keysPath})
	if err != nil {
		t.Fatalf("First keypair failed: %v", err)
	}

	if _, err := Keypair(context.Background(), KeypairOptions{KeysPath: keysPath}); err == nil {
		t.Fatal("Expected an error when regenerating without force")
	}

	second, err := Keypair(context.Background(), KeypairOptions{KeysPath: keysPath, Force: true})
	if err != nil {
		t.Fatalf("Forced keypair failed: %v", err)
	}
	if first.Key == second.Key {
		t.Error("Expected force to generate a fresh key")
	}
}
