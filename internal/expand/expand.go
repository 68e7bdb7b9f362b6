package expand

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"

	kerrors "github.com/avelline/envault/internal/errors"
)

var commandPattern = regexp.MustCompile(`\$\(([^()]+)\)`)

// Expand resolves variable references and command substitutions inside every
// value of raw.
//
// Variable references (${VAR}, ${VAR:-default}, $VAR) are looked up first
// among the raw mapping's own keys, then in the ambient namespace, so a
// value may reference a sibling key from the same source or a variable
// injected by an earlier source in the same run. An unset variable without a
// default expands to the empty string and produces a warning.
//
// Command substitutions ($(cmd)) run after variable expansion via the shell;
// their trimmed output replaces the reference. A failing command aborts the
// whole expansion, which the engine records as the source's error.
func Expand(raw map[string]string, ambient map[string]string) (map[string]string, []string, error) {
	resolved := make(map[string]string, len(raw))
	var warnings []string

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, warn := expandVariables(raw[key], resolved, raw, ambient)
		warnings = append(warnings, warn...)

		value, err := substituteCommands(value)
		if err != nil {
			return nil, warnings, fmt.Errorf("expanding %s: %w", key, err)
		}

		resolved[key] = value
	}

	return resolved, warnings, nil
}

// expandVariables handles ${VAR}, ${VAR:-default} and $VAR syntax.
func expandVariables(value string, resolved, raw, ambient map[string]string) (string, []string) {
	var warnings []string

	expanded := os.Expand(value, func(ref string) string {
		name, fallback, hasFallback := strings.Cut(ref, ":-")

		if v, ok := lookup(name, resolved, raw, ambient); ok {
			return v
		}
		if hasFallback {
			return fallback
		}

		warnings = append(warnings, fmt.Sprintf("variable %q is not set, expanding to empty string", name))
		return ""
	})

	return expanded, warnings
}

// lookup resolves a reference against, in order: values already expanded for
// this source, the source's own raw values, the ambient namespace.
func lookup(name string, resolved, raw, ambient map[string]string) (string, bool) {
	if v, ok := resolved[name]; ok {
		return v, true
	}
	if v, ok := raw[name]; ok {
		return v, true
	}
	if v, ok := ambient[name]; ok {
		return v, true
	}
	return "", false
}

// substituteCommands replaces every $(cmd) with the command's trimmed output.
func substituteCommands(value string) (string, error) {
	matches := commandPattern.FindAllStringSubmatchIndex(value, -1)
	if len(matches) == 0 {
		return value, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(value[last:m[0]])

		command := value[m[2]:m[3]]
		out, err := runCommand(command)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", kerrors.ErrCommandFailed, command, err)
		}
		b.WriteString(out)

		last = m[1]
	}
	b.WriteString(value[last:])

	return b.String(), nil
}

func runCommand(command string) (string, error) {
	out, err := exec.Command("sh", "-c", command).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\n"), nil
}
