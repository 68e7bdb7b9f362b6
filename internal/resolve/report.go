package resolve

import "sort"

// ProcessedSource records what happened to one source during a run. Records
// are appended to the report as each source finishes and never mutated
// afterward.
type ProcessedSource struct {
	// Type is the source's kind.
	Type SourceType

	// ID identifies the source: the inline string, or the absolute file path.
	ID string

	// Parsed is the raw key-value mapping before injection. Nil when the
	// source failed.
	Parsed map[string]string

	// Warnings are non-fatal notices, in the order they occurred.
	Warnings []string

	// Injected holds the keys this source newly wrote to the namespace.
	Injected map[string]string

	// PreExisted holds keys that were already present and, with overload off,
	// kept their existing value (recorded here).
	PreExisted map[string]string

	// Err is set iff this source failed. A per-source error never aborts the
	// run.
	Err error
}

// Report is the aggregated outcome of one resolution run.
type Report struct {
	// Sources holds one record per processed source, in plan order.
	Sources []ProcessedSource

	// ReadableStrings is the set of inline strings that were read successfully.
	ReadableStrings map[string]bool

	// ReadableFilepaths is the set of file paths that were read successfully.
	ReadableFilepaths map[string]bool

	// UniqueInjectedKeys is the union of every source's injected keys. A key
	// injected by one source and merely pre-existing for a later one counts
	// once.
	UniqueInjectedKeys map[string]bool
}

func newReport() *Report {
	return &Report{
		ReadableStrings:    make(map[string]bool),
		ReadableFilepaths:  make(map[string]bool),
		UniqueInjectedKeys: make(map[string]bool),
	}
}

// InjectedKeys returns the unique injected keys in sorted order.
func (r *Report) InjectedKeys() []string {
	keys := make([]string, 0, len(r.UniqueInjectedKeys))
	for key := range r.UniqueInjectedKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SourceErrors returns the recorded per-source errors, in plan order.
func (r *Report) SourceErrors() []error {
	var errs []error
	for _, src := range r.Sources {
		if src.Err != nil {
			errs = append(errs, src.Err)
		}
	}
	return errs
}

// Warnings returns every source's warnings, in plan order.
func (r *Report) Warnings() []string {
	var warnings []string
	for _, src := range r.Sources {
		warnings = append(warnings, src.Warnings...)
	}
	return warnings
}
