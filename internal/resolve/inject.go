package resolve

// Inject applies a resolved mapping onto the target namespace.
//
// A key is written to target and reported as injected when it is absent from
// the ambient namespace, or present while overload is true. A key that is
// present while overload is false leaves target untouched and is reported
// under preExisted with its existing ambient value. Inject has no failure
// modes and no side effect beyond mutating target.
//
// This protects the caller's already-configured environment from being
// clobbered by file defaults, while overload opts in to intentional layering.
func Inject(target, resolved map[string]string, overload bool, ambient map[string]string) (injected, preExisted map[string]string) {
	injected = make(map[string]string)
	preExisted = make(map[string]string)

	for key, value := range resolved {
		existing, present := ambient[key]
		if present && !overload {
			preExisted[key] = existing
			continue
		}
		target[key] = value
		injected[key] = value
	}

	return injected, preExisted
}
