// Package config - envfile.go implements the .env file codec.
//
// The .env file is consumed verbatim by docker compose variable
// substitution, so the codec is deliberately conservative: unrelated
// lines, comments and the original key order are preserved byte-for-byte
// across an upsert. Only the values of updated keys change; new keys are
// appended at the end of the file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
)

// EnvFile represents a parsed compose environment file.
//
// The file is kept as an ordered list of raw lines plus an index of which
// line defines which key. This makes upserts order-preserving and keeps
// comments intact, which matters because operators hand-edit this file.
type EnvFile struct {
	// path is the file location on disk.
	path string

	// lines holds every line of the file, verbatim, without trailing
	// newlines. Comment and blank lines are kept as-is.
	lines []string

	// index maps a key to the position of its defining line in lines.
	// For duplicate keys the last definition wins, matching compose
	// semantics.
	index map[string]int
}

// LoadEnvFile reads and parses an environment file.
//
// A missing file is not an error: it yields an empty EnvFile that will
// create the file on Save. Parse errors cannot occur - lines that are not
// KEY=VALUE assignments are carried through untouched.
//
// Parameters:
//   - path: Environment file location
//
// Returns:
//   - Parsed EnvFile ready for Get/Set/Save
//   - Error if the file exists but cannot be read
func LoadEnvFile(path string) (*EnvFile, error) {
	f := &EnvFile{
		path:  path,
		index: make(map[string]int),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Environment file %s does not exist yet", path)
			return f, nil
		}
		return nil, fmt.Errorf("failed to read environment file %s: %w", path, err)
	}

	content := strings.TrimSuffix(string(data), "\n")
	if content != "" {
		f.lines = strings.Split(content, "\n")
	}

	for i, line := range f.lines {
		key := parseEnvKey(line)
		if key != "" {
			f.index[key] = i
		}
	}

	logger.Debug("Loaded %d line(s), %d key(s) from %s", len(f.lines), len(f.index), path)
	return f, nil
}

// parseEnvKey extracts the key from a KEY=VALUE line.
//
// Returns an empty string for comments, blank lines and lines without an
// assignment. Leading whitespace before the key is tolerated; an empty
// key before '=' is not a definition.
func parseEnvKey(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return ""
	}

	eq := strings.Index(trimmed, "=")
	if eq <= 0 {
		return ""
	}

	return strings.TrimSpace(trimmed[:eq])
}

// Get returns the value of a key.
//
// Parameters:
//   - key: Environment variable name
//
// Returns:
//   - The value (with surrounding whitespace trimmed) and true if present
//   - Empty string and false if the key is not defined
func (f *EnvFile) Get(key string) (string, bool) {
	i, ok := f.index[key]
	if !ok {
		return "", false
	}

	line := strings.TrimSpace(f.lines[i])
	eq := strings.Index(line, "=")
	if eq < 0 {
		return "", false
	}
	return strings.TrimSpace(line[eq+1:]), true
}

// Set upserts a KEY=VALUE assignment.
//
// An existing definition is rewritten in place, preserving its position
// in the file. A new key is appended as the last line. The value is
// written unquoted; compose reads values literally.
//
// Parameters:
//   - key: Environment variable name
//   - value: Value to assign
func (f *EnvFile) Set(key, value string) {
	line := fmt.Sprintf("%s=%s", key, value)

	if i, ok := f.index[key]; ok {
		if f.lines[i] != line {
			logger.Debug("Updating %s in %s", key, f.path)
			f.lines[i] = line
		}
		return
	}

	logger.Debug("Adding %s to %s", key, f.path)
	f.lines = append(f.lines, line)
	f.index[key] = len(f.lines) - 1
}

// SetDefault sets a key only if it is not already defined.
//
// Used for values the operator may have customized (TOOLROOT, compiler
// flags): setup seeds them once and never overwrites them afterwards.
func (f *EnvFile) SetDefault(key, value string) {
	if _, ok := f.index[key]; ok {
		return
	}
	f.Set(key, value)
}

// Keys returns all defined keys in file order.
//
// Duplicate definitions are reported once, at the position of their first
// occurrence.
func (f *EnvFile) Keys() []string {
	keys := make([]string, 0, len(f.index))
	seen := make(map[string]bool, len(f.index))
	for _, line := range f.lines {
		key := parseEnvKey(line)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

// Save writes the file back to disk.
//
// The file always ends with a single trailing newline. Permissions are
// 0644: the file carries no secrets, only build parameters.
//
// Returns:
//   - nil on success
//   - Error if the write fails
func (f *EnvFile) Save() error {
	var sb strings.Builder
	for _, line := range f.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(f.path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write environment file %s: %w", f.path, err)
	}

	logger.Debug("Wrote %d line(s) to %s", len(f.lines), f.path)
	return nil
}

// Path returns the file location this EnvFile was loaded from.
func (f *EnvFile) Path() string {
	return f.path
}
