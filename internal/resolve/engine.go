package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/avelline/envault/internal/errors"
	"github.com/avelline/envault/internal/expand"
	"github.com/avelline/envault/internal/keyring"
	logger "github.com/avelline/envault/internal/logging"
	"github.com/avelline/envault/internal/parser"
	"github.com/avelline/envault/internal/vault"
)

// Engine drives one resolution run over a source plan.
//
// The run is strictly sequential: sources are processed in plan order, and
// the target namespace as it stands after each source is the ambient
// namespace for the next one's pre-existence checks and expansion context.
// That ordering carries the overload semantics, so nothing here may be made
// concurrent.
type Engine struct {
	// Plan is the ordered source list, usually from BuildPlan.
	Plan []Source

	// Overload permits later sources to overwrite keys set by earlier ones or
	// already present in the target namespace.
	Overload bool

	// MasterSecret unlocks vault sources. May be a comma-separated rotation
	// list.
	MasterSecret string

	// Target is the namespace injected values land in. The engine owns it for
	// the duration of Run and mutates it only through Inject.
	Target map[string]string

	// Keys resolves private keys for encrypted values in file sources.
	Keys *keyring.Chain

	// Log receives per-source diagnostics.
	Log logger.Logger
}

// Run processes the plan once and returns the aggregated report.
//
// A failing source is recorded on its own record and never stops the run.
// The two exceptions are the vault preflight conditions, a blank master
// secret or a missing vault file while the plan contains a vault source,
// which make the whole run pointless and are returned immediately, before
// any source is processed.
func (e *Engine) Run() (*Report, error) {
	if e.Target == nil {
		e.Target = make(map[string]string)
	}
	if e.Keys == nil {
		e.Keys = keyring.NewChain(e.Target)
	}

	if err := e.preflightVaults(); err != nil {
		return nil, err
	}

	report := newReport()
	for _, src := range e.Plan {
		report.Sources = append(report.Sources, e.processSource(src, report))
	}
	return report, nil
}

// preflightVaults verifies every vault source can possibly be opened. Without
// the container or its master secret, no source in a vault-based plan can be
// resolved meaningfully.
func (e *Engine) preflightVaults() error {
	for _, src := range e.Plan {
		if src.Type != SourceVaultFile {
			continue
		}
		if _, err := vault.ParseMasterSecret(e.MasterSecret); err != nil {
			if errors.Is(err, kerrors.ErrMissingMasterSecret) {
				return fmt.Errorf("%w: a vault source requires one", kerrors.ErrMissingMasterSecret)
			}
			// Malformed secrets fail during the source's own handling.
			continue
		}
		if _, err := os.Stat(src.Value); os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", kerrors.ErrMissingVaultFile, src.Value)
		}
	}
	return nil
}

// processSource handles one source end to end: parse (and decrypt), expand
// against the current namespace, inject, account.
func (e *Engine) processSource(src Source, report *Report) ProcessedSource {
	rec := ProcessedSource{Type: src.Type, ID: src.Value}

	var raw map[string]string
	var err error

	switch src.Type {
	case SourceInline:
		raw, rec.Warnings = parser.Parse(src.Value)
	case SourceFile:
		raw, rec.Warnings, rec.ID, err = e.readEnvFile(src.Value)
	case SourceVaultFile:
		raw, rec.Warnings, rec.ID, err = e.readVaultFile(src.Value)
	}

	if err != nil {
		e.Log.Debugf("source %s (%s) failed: %v", rec.ID, src.Type, err)
		rec.Err = err
		return rec
	}
	rec.Parsed = raw

	resolved, expandWarnings, err := expand.Expand(raw, e.Target)
	rec.Warnings = append(rec.Warnings, expandWarnings...)
	if err != nil {
		e.Log.Debugf("source %s (%s) failed expanding: %v", rec.ID, src.Type, err)
		rec.Err = err
		return rec
	}

	rec.Injected, rec.PreExisted = Inject(e.Target, resolved, e.Overload, e.Target)

	for key := range rec.Injected {
		report.UniqueInjectedKeys[key] = true
	}
	if src.Type == SourceInline {
		report.ReadableStrings[src.Value] = true
	} else {
		report.ReadableFilepaths[rec.ID] = true
	}

	e.Log.Debugf("source %s (%s): %d injected, %d pre-existing", rec.ID, src.Type, len(rec.Injected), len(rec.PreExisted))
	return rec
}

// readEnvFile loads and parses a plaintext env file, decrypting any values
// carrying the encrypted sentinel when a private key can be resolved for the
// path.
func (e *Engine) readEnvFile(path string) (map[string]string, []string, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	data, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return nil, nil, abs, fmt.Errorf("%w: %s", kerrors.ErrMissingEnvFile, abs)
	}
	if err != nil {
		return nil, nil, abs, fmt.Errorf("reading %s: %w", abs, err)
	}

	text, err := parser.DecodeText(data)
	if err != nil {
		return nil, nil, abs, err
	}

	raw, warnings := parser.Parse(text)

	if !anyEncrypted(raw) {
		return raw, warnings, abs, nil
	}

	keyHex, err := e.Keys.Resolve(abs)
	if err != nil {
		// No key anywhere in the chain: pass the ciphertext through untouched
		// rather than failing the source.
		warnings = append(warnings, fmt.Sprintf("%s holds encrypted values but no private key was found", abs))
		return raw, warnings, abs, nil
	}

	key, err := vault.DecodeKey(keyHex)
	if err != nil {
		return nil, warnings, abs, err
	}

	for name, value := range raw {
		if !vault.IsEncryptedValue(value) {
			continue
		}
		plaintext, err := vault.DecryptEnvValue(value, key)
		if err != nil {
			return nil, warnings, abs, fmt.Errorf("decrypting %s in %s: %w", name, abs, err)
		}
		raw[name] = plaintext
	}

	return raw, warnings, abs, nil
}

// readVaultFile opens a vault container with the master secret's rotation
// keys. The first key that both matches a container entry and decrypts wins;
// when every key fails only the last attempt's error is reported.
func (e *Engine) readVaultFile(path string) (map[string]string, []string, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	keys, err := vault.ParseMasterSecret(e.MasterSecret)
	if err != nil {
		return nil, nil, abs, err
	}

	data, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return nil, nil, abs, fmt.Errorf("%w: %s", kerrors.ErrMissingVaultFile, abs)
	}
	if err != nil {
		return nil, nil, abs, fmt.Errorf("reading %s: %w", abs, err)
	}

	text, err := parser.DecodeText(data)
	if err != nil {
		return nil, nil, abs, err
	}

	container, warnings := parser.Parse(text)

	var lastErr error
	for _, mk := range keys {
		entry, ok := container[mk.ContainerKey()]
		if !ok {
			lastErr = fmt.Errorf("%w: no %s entry in %s", kerrors.ErrEnvironmentNotFound, mk.ContainerKey(), abs)
			continue
		}

		plaintext, err := vault.DecryptValue(entry, mk.Key)
		if err != nil {
			lastErr = fmt.Errorf("unlocking %s in %s: %w", mk.ContainerKey(), abs, err)
			continue
		}

		raw, parseWarnings := parser.Parse(plaintext)
		return raw, append(warnings, parseWarnings...), abs, nil
	}

	return nil, warnings, abs, lastErr
}

func anyEncrypted(values map[string]string) bool {
	for _, value := range values {
		if vault.IsEncryptedValue(value) {
			return true
		}
	}
	return false
}
