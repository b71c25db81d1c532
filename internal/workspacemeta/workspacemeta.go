// Package workspacemeta parses the small key:value metadata file that may sit
// beside a conversation's event log.
//
// The format is deliberately not general YAML: only the first colon on a
// line splits key from value, so a value containing further colons (a
// Windows path, a summary sentence with a time-of-day in it) survives
// intact. A real YAML decoder would apply quoting and type-coercion rules
// this format was never meant to have, and would fail the whole document on
// a single malformed line instead of tolerating unknown keys — see
// DESIGN.md for why no third-party library is used here.
package workspacemeta

import (
	"os"
	"regexp"
	"strings"
)

// keyPattern matches the key portion of a line: ASCII letters, digits, and
// underscore, per §4.3.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Meta holds the three keys §4.3/§6 recognize. All fields are optional;
// absence is represented by the empty string.
type Meta struct {
	Repository       string
	WorkingDirectory string
	Summary          string
}

// IsZero reports whether every field is absent.
func (m Meta) IsZero() bool {
	return m.Repository == "" && m.WorkingDirectory == "" && m.Summary == ""
}

// Parse decodes workspace.yaml-style text into a Meta. Unknown keys are
// ignored. Lines that don't match `key:value` are ignored rather than
// erroring, matching the LogParser's tolerance of malformed input.
func Parse(data []byte) Meta {
	var m Meta
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		if !keyPattern.MatchString(key) {
			continue
		}
		value := strings.TrimSpace(line[idx+1:])

		switch key {
		case "repository":
			m.Repository = value
		case "cwd":
			m.WorkingDirectory = value
		case "summary":
			m.Summary = value
		}
	}
	return m
}

// ParseFile parses the metadata file at path. A missing file is not an
// error: it yields (nil, nil), per §4.3 "Missing file → absent record".
func ParseFile(path string) (*Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	m := Parse(data)
	return &m, nil
}

// ProjectName derives a display name per §4.3: repository, else the last
// path component of working-directory, else "Unknown".
func ProjectName(m *Meta) string {
	if m == nil {
		return "Unknown"
	}
	if m.Repository != "" {
		return m.Repository
	}
	if m.WorkingDirectory != "" {
		return lastPathComponent(m.WorkingDirectory)
	}
	return "Unknown"
}

func lastPathComponent(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "Unknown"
	}
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		if idx == len(p)-1 {
			return "Unknown"
		}
		return p[idx+1:]
	}
	return p
}
