package workflows

import (
	"context"
	"sort"
	"strings"

	"github.com/avelline/envault/internal/audit"
	"github.com/avelline/envault/internal/configs"
	"github.com/avelline/envault/internal/keyring"
	logger "github.com/avelline/envault/internal/logging"
	"github.com/avelline/envault/internal/resolve"
	"github.com/avelline/envault/internal/vault"
)

// RunOptions configures a resolution run.
type RunOptions struct {
	// Sources are the caller's explicit sources, in order. May be empty; the
	// plan builder then synthesizes defaults.
	Sources []resolve.Source

	// Overload permits later sources to overwrite earlier values and values
	// already present in the environment.
	Overload bool

	// MasterSecret unlocks vault sources. When empty, the ambient
	// ENVAULT_KEY variable is consulted.
	MasterSecret string

	// Environ is the ambient namespace as KEY=VALUE pairs. When nil the
	// caller should pass os.Environ(); tests pass a fixture.
	Environ []string

	// Logger receives per-source diagnostics.
	Logger logger.Logger
}

// RunResult contains the outcome of a resolution run.
type RunResult struct {
	// Report is the per-source account of the run.
	Report *resolve.Report

	// Env is the fully resolved namespace: the ambient variables plus
	// everything the run injected.
	Env map[string]string
}

// Environ renders the resolved namespace as sorted KEY=VALUE pairs, ready
// for exec.
func (r *RunResult) Environ() []string {
	pairs := make([]string, 0, len(r.Env))
	for key, value := range r.Env {
		pairs = append(pairs, key+"="+value)
	}
	sort.Strings(pairs)
	return pairs
}

// Run resolves the configured sources into a single namespace.
//
// It snapshots the ambient environment, scans it for private-key-shaped
// variable names, builds the source plan, and drives the resolution engine
// over it. Per-source failures end up on the report; only the vault
// preflight conditions (missing vault file, blank master secret) are
// returned as errors.
func Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	ambient := environToMap(opts.Environ)

	masterSecret := opts.MasterSecret
	if strings.TrimSpace(masterSecret) == "" {
		masterSecret = ambient[vault.MasterSecretName]
	}

	target := make(map[string]string, len(ambient))
	for key, value := range ambient {
		target[key] = value
	}

	engine := &resolve.Engine{
		Plan:         resolve.BuildPlan(opts.Sources, strings.TrimSpace(masterSecret) != "", ambientPrivateKeyNames(ambient)),
		Overload:     opts.Overload,
		MasterSecret: masterSecret,
		Target:       target,
		Keys:         keyring.NewChain(ambient),
		Log:          opts.Logger,
	}

	report, err := engine.Run()
	if err != nil {
		return nil, err
	}

	logRunAudit(report, opts.Overload)

	return &RunResult{Report: report, Env: target}, nil
}

// ambientPrivateKeyNames returns the sorted ambient variable names matching
// the private-key pattern. Sorting keeps synthesized default plans
// deterministic.
func ambientPrivateKeyNames(ambient map[string]string) []string {
	var names []string
	for name, value := range ambient {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if _, ok := keyring.MatchPrivateKeyName(name); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func environToMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, pair := range environ {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		m[key] = value
	}
	return m
}

// logRunAudit records the run when the project has auditing enabled.
func logRunAudit(report *resolve.Report, overload bool) {
	cfg, err := configs.LoadProjectConfig()
	if err != nil || !cfg.Audit.Enabled {
		return
	}

	entry := audit.NewEntry("run")
	entry.Overload = overload
	entry.InjectedKeys = report.InjectedKeys()
	entry.SourceErrors = len(report.SourceErrors())
	for _, src := range report.Sources {
		// Inline source text can contain values, so only its kind is logged.
		if src.Type == resolve.SourceInline {
			entry.Sources = append(entry.Sources, "inline")
			continue
		}
		entry.Sources = append(entry.Sources, src.Type.String()+":"+src.ID)
	}
	audit.Log(entry)
}
