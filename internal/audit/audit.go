package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/avelline/envault/internal/configs"
	"github.com/google/uuid"
)

// Entry represents a single audit log entry. Only key names are recorded,
// never values. The log must stay safe to commit.
type Entry struct {
	Timestamp string `json:"ts"`  // RFC3339 with microseconds.
	RunID     string `json:"run"` // Random per-run identifier.
	Operation string `json:"op"`  // Operation name (run, build, keypair).

	// Optional fields depending on operation.
	Sources      []string `json:"sources,omitempty"`       // Source identifiers, in plan order.
	InjectedKeys []string `json:"injected,omitempty"`      // Key names injected this run.
	Overload     bool     `json:"overload,omitempty"`      // Whether overwrite mode was on.
	Environment  string   `json:"environment,omitempty"`   // For build/keypair.
	SourceErrors int      `json:"source_errors,omitempty"` // Count of failed sources.
}

// NewEntry starts an entry for an operation with a fresh run ID.
func NewEntry(op string) Entry {
	return Entry{
		RunID:     uuid.NewString(),
		Operation: op,
	}
}

// Log appends an entry to the audit log. Logging failures are swallowed:
// an operation should not fail just because its audit record couldn't be
// written.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	logPath := LogPath()
	if logPath == "" {
		// Project not initialized, skip logging.
		return
	}

	// #nosec G306 -- the audit log holds key names only, no values.
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the path to the audit log file, or "" when no project is
// initialized.
func LogPath() string {
	projectPath := configs.ProjectEnvaultSettings.ProjectPath
	if projectPath == "" {
		return ""
	}
	return filepath.Join(projectPath, ".envault.audit.jsonl")
}

// ReadEntries reads all entries from the audit log. Returns an empty slice
// if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries. Malformed lines
// are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Skip malformed entries.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
