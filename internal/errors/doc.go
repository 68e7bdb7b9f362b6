// Package errors defines sentinel errors for envault operations.
//
// Every error kind a caller may want to branch on is a distinct sentinel.
// Callers match with errors.Is, never by message text:
//
//	report, err := engine.Run()
//	if errors.Is(err, kerrors.ErrMissingVaultFile) {
//	    // vault-based plan cannot proceed
//	}
//
// Lower layers wrap sentinels with context:
//
//	fmt.Errorf("%w: %s", kerrors.ErrMissingEnvFile, path)
//
// Two severities exist by convention. ErrMissingVaultFile and
// ErrMissingMasterSecret abort a resolution run. Everything else is recorded
// on the failing source's record and the run continues.
package errors
