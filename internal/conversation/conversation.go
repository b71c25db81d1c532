// Package conversation discovers conversation artifacts on disk and turns
// each into a scored Conversation value: the scan procedure shared by
// AttentionWatcher, split out because it is independently testable and is
// the natural home for the sub-agent liveness heuristic in SPEC_FULL.md.
package conversation

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nrobbins/attnwatch/internal/logparser"
	"github.com/nrobbins/attnwatch/internal/statusanalyzer"
	"github.com/nrobbins/attnwatch/internal/workspacemeta"
)

// StorageKind distinguishes the two layouts §3/§6 describe.
type StorageKind string

const (
	StorageFolder StorageKind = "folder"
	StorageFlat   StorageKind = "flat"
)

const (
	eventsFileName = "events.jsonl"
	metaFileName   = "workspace.yaml"
	subagentsDir   = "subagents"
)

// Conversation is a value synthesized fresh on every scan pass — it carries
// no identity across restarts (§3 Lifecycle).
type Conversation struct {
	ID           string
	StorageKind  StorageKind
	EventCount   int
	LastModified time.Time
	Metadata     *workspacemeta.Meta
	Status       statusanalyzer.Status
}

// Scan enumerates root's immediate children and returns one Conversation per
// discovered log, sorted by LastModified descending (§4.5 Scan procedure).
// A parse error on an individual entry skips that entry; it is never fatal
// to the scan as a whole.
func Scan(root string) ([]Conversation, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var out []Conversation
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		if e.IsDir() {
			conv, ok := scanFolder(filepath.Join(root, name), name)
			if ok {
				out = append(out, conv)
			}
			continue
		}

		if strings.HasSuffix(name, ".jsonl") {
			conv, ok := scanFlat(filepath.Join(root, name), strings.TrimSuffix(name, ".jsonl"))
			if ok {
				out = append(out, conv)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastModified.After(out[j].LastModified)
	})
	return out, nil
}

func scanFolder(dir, id string) (Conversation, bool) {
	logPath := filepath.Join(dir, eventsFileName)
	info, err := os.Stat(logPath)
	if err != nil {
		return Conversation{}, false
	}

	events, err := logparser.ParseFile(logPath)
	if err != nil {
		return Conversation{}, false
	}

	var meta *workspacemeta.Meta
	if m, err := workspacemeta.ParseFile(filepath.Join(dir, metaFileName)); err == nil {
		meta = m
	}

	lastModified := info.ModTime()
	if t, ok := latestSubAgentModTime(filepath.Join(dir, subagentsDir)); ok && t.After(lastModified) {
		lastModified = t
	}

	return Conversation{
		ID:           id,
		StorageKind:  StorageFolder,
		EventCount:   len(events),
		LastModified: lastModified,
		Metadata:     meta,
		Status:       statusanalyzer.Analyze(events),
	}, true
}

func scanFlat(path, id string) (Conversation, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return Conversation{}, false
	}

	events, err := logparser.ParseFile(path)
	if err != nil {
		return Conversation{}, false
	}

	return Conversation{
		ID:           id,
		StorageKind:  StorageFlat,
		EventCount:   len(events),
		LastModified: info.ModTime(),
		Status:       statusanalyzer.Analyze(events),
	}, true
}

// latestSubAgentModTime returns the most recent mtime among .jsonl files in
// dir, folding a sub-agent's liveness into the parent conversation's
// last-modified timestamp (SPEC_FULL.md supplemented feature 1). It never
// affects Status, which stays a pure function of the parent's own Events.
func latestSubAgentModTime(dir string) (time.Time, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}, false
	}

	var latest time.Time
	found := false
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !found || info.ModTime().After(latest) {
			latest = info.ModTime()
			found = true
		}
	}
	return latest, found
}
