package workflows

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	kerrors "github.com/avelline/envault/internal/errors"
	"github.com/avelline/envault/internal/resolve"
)

// writeTestFile is a helper to write test files.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "envault-workflows-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestRun_FileSource(t *testing.T) {
	dir := tempDir(t)
	envPath := filepath.Join(dir, ".env")
	writeTestFile(t, envPath, "HELLO=world\n")

	result, err := Run(context.Background(), RunOptions{
		Sources: []resolve.Source{resolve.File(envPath)},
		Environ: []string{"PATH=/usr/bin"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Env["HELLO"] != "world" {
		t.Errorf("Expected HELLO=world, got: %v", result.Env)
	}
	if result.Env["PATH"] != "/usr/bin" {
		t.Errorf("Expected ambient variables preserved, got: %v", result.Env)
	}
	if !result.Report.UniqueInjectedKeys["HELLO"] {
		t.Errorf("Expected HELLO injected, got: %v", result.Report.UniqueInjectedKeys)
	}
}

func TestRun_AmbientValueProtected(t *testing.T) {
	result, err := Run(context.Background(), RunOptions{
		Sources: []resolve.Source{resolve.Inline("HELLO=two")},
		Environ: []string{"HELLO=original"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Env["HELLO"] != "original" {
		t.Errorf("Expected ambient value retained, got: %q", result.Env["HELLO"])
	}
	// The plan prepends the default env file ahead of the inline source.
	inline := result.Report.Sources[len(result.Report.Sources)-1]
	if inline.PreExisted["HELLO"] != "original" {
		t.Errorf("Expected preExisted record, got: %v", inline.PreExisted)
	}
}

func TestRun_OverloadReplacesAmbient(t *testing.T) {
	result, err := Run(context.Background(), RunOptions{
		Sources:  []resolve.Source{resolve.Inline("HELLO=two")},
		Overload: true,
		Environ:  []string{"HELLO=original"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Env["HELLO"] != "two" {
		t.Errorf("Expected overload to win, got: %q", result.Env["HELLO"])
	}
}

func TestRun_MasterSecretFromAmbient(t *testing.T) {
	dir := tempDir(t)
	envPath := filepath.Join(dir, ".env")
	writeTestFile(t, envPath, "SECRET=from-env\n")

	build, err := Build(context.Background(), BuildOptions{
		EnvFiles:    []string{envPath},
		Environment: "production",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	result, err := Run(context.Background(), RunOptions{
		Sources: []resolve.Source{resolve.VaultFile(build.VaultPath)},
		Environ: []string{"ENVAULT_KEY=" + build.MasterSecret},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Env["SECRET"] != "from-env" {
		t.Errorf("Expected vault round trip, got: %v", result.Env)
	}
}

func TestRun_DefaultPlanUsesVaultWhenKeyPresent(t *testing.T) {
	result, err := Run(context.Background(), RunOptions{
		Environ: []string{"ENVAULT_KEY=evk_production_0000000000000000000000000000000000000000000000000000000000000000"},
	})
	if result != nil || err == nil {
		t.Fatal("Expected a fatal error for the missing default vault file")
	}
	if !errors.Is(err, kerrors.ErrMissingVaultFile) {
		t.Errorf("Expected ErrMissingVaultFile, got: %v", err)
	}
}

func TestRunResult_EnvironSorted(t *testing.T) {
	result := &RunResult{Env: map[string]string{"B": "2", "A": "1"}}

	environ := result.Environ()
	if len(environ) != 2 || environ[0] != "A=1" || environ[1] != "B=2" {
		t.Errorf("Expected sorted pairs, got: %v", environ)
	}
}

func TestAmbientPrivateKeyNames(t *testing.T) {
	names := ambientPrivateKeyNames(map[string]string{
		"ENVAULT_PRIVATE_KEY_PRODUCTION": "abc",
		"ENVAULT_PRIVATE_KEY":            "def",
		"ENVAULT_PRIVATE_KEY_EMPTY":      "   ",
		"PATH":                           "/usr/bin",
	})

	expected := []string{"ENVAULT_PRIVATE_KEY", "ENVAULT_PRIVATE_KEY_PRODUCTION"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %v, got: %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Expected %v, got: %v", expected, names)
		}
	}
}
