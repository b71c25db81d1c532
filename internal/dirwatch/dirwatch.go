// Package dirwatch implements a recursive directory change observer that
// combines a kernel-notification push source with a periodic poll source,
// the way the teacher's claudecode and opencode adapters watch a session
// directory, generalized here to a full recursive subtree and a dedicated
// snapshot-diff routine.
package dirwatch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Sentinel start errors, per the error taxonomy.
var (
	ErrRootNotADirectory = errors.New("dirwatch: root is not a directory")
	ErrCannotOpenRoot    = errors.New("dirwatch: cannot open root for notifications")
)

// ChangeKind classifies one detected filesystem change.
type ChangeKind string

const (
	Created  ChangeKind = "created"
	Modified ChangeKind = "modified"
	Deleted  ChangeKind = "deleted"
	// Renamed is reserved for a future identity-preserving diff; the
	// current diff never emits it. A rename surfaces as (Deleted, Created).
	Renamed ChangeKind = "renamed"
)

// ChangeRecord is one observed change.
type ChangeRecord struct {
	AbsolutePath string
	Kind         ChangeKind
	DetectedAt   time.Time
}

// entry is one FileSnapshot value: a relative path's recorded state.
type entry struct {
	ModTime time.Time
	Size    int64
	IsDir   bool
}

// snapshot maps a path relative to the observed root to its entry.
type snapshot map[string]entry

const (
	defaultPollInterval     = time.Second
	defaultDebounceInterval = 150 * time.Millisecond
)

// Observer watches root recursively and notifies onChange whenever a scan
// (triggered by either source) detects at least one change. Callers pull
// the accumulated, deduplicated changes via Drain.
type Observer struct {
	pollInterval     time.Duration
	debounceInterval time.Duration

	mu       sync.Mutex
	root     string
	prev     snapshot
	pending  map[string]ChangeRecord
	onChange func()
	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	active   bool
}

// New constructs an Observer with default poll and debounce intervals.
func New() *Observer {
	return &Observer{
		pollInterval:     defaultPollInterval,
		debounceInterval: defaultDebounceInterval,
	}
}

// SetPollInterval overrides the default ~1s poll tick. Must be called before
// Start.
func (o *Observer) SetPollInterval(d time.Duration) {
	if d > 0 {
		o.pollInterval = d
	}
}

// Start begins observing root. onChange is invoked (never concurrently with
// itself) whenever a scan pass finds at least one change; the caller then
// calls Drain to retrieve and reset the accumulated records.
func (o *Observer) Start(root string, onChange func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active {
		return nil
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return ErrRootNotADirectory
	}

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return ErrCannotOpenRoot
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrCannotOpenRoot
	}
	if err := fsw.Add(resolved); err != nil {
		fsw.Close()
		return ErrCannotOpenRoot
	}
	addSubdirs(fsw, resolved)

	o.root = resolved
	o.fsw = fsw
	o.onChange = onChange
	o.stopCh = make(chan struct{})
	o.doneCh = make(chan struct{})
	o.pending = make(map[string]ChangeRecord)
	o.prev, _ = takeSnapshot(resolved)
	o.active = true

	go o.run()
	return nil
}

// Stop is idempotent and safe to call from any context. It cancels the poll
// loop, the push source, and any in-flight debounce timer. A subscriber
// callback already in flight is allowed to complete; no further callbacks
// occur once Stop returns.
func (o *Observer) Stop() {
	o.mu.Lock()
	if !o.active {
		o.mu.Unlock()
		return
	}
	o.active = false
	stopCh := o.stopCh
	fsw := o.fsw
	doneCh := o.doneCh
	o.mu.Unlock()

	close(stopCh)
	fsw.Close()
	<-doneCh
}

// Drain returns all ChangeRecords accumulated since the last Drain and
// resets the internal buffer.
func (o *Observer) Drain() []ChangeRecord {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]ChangeRecord, 0, len(o.pending))
	for _, c := range o.pending {
		out = append(out, c)
	}
	o.pending = make(map[string]ChangeRecord)
	return out
}

func (o *Observer) run() {
	defer close(o.doneCh)

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	// The debounce timer only signals this loop, so every tick runs on this
	// goroutine and onChange is never invoked concurrently with itself.
	debounced := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-o.stopCh:
			return

		case ev, ok := <-o.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					o.fsw.Add(ev.Name)
				}
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(o.debounceInterval, func() {
				select {
				case debounced <- struct{}{}:
				default:
				}
			})

		case <-debounced:
			o.tick()

		case _, ok := <-o.fsw.Errors:
			if !ok {
				return
			}
			// cannot-enumerate is non-fatal; the next tick retries.

		case <-ticker.C:
			o.tick()
		}
	}
}

// tick takes a fresh snapshot and diffs it against the previous one,
// recording any changes and invoking onChange at most once for this pass.
func (o *Observer) tick() {
	o.mu.Lock()
	if !o.active {
		o.mu.Unlock()
		return
	}
	root := o.root
	o.mu.Unlock()

	next, err := takeSnapshot(root)
	if err != nil {
		// cannot-enumerate: swallow, next tick retries.
		return
	}

	now := time.Now()

	o.mu.Lock()
	if !o.active {
		o.mu.Unlock()
		return
	}
	changes := diffSnapshots(root, o.prev, next, now)
	o.prev = next
	for _, c := range changes {
		o.pending[c.AbsolutePath] = c
	}
	cb := o.onChange
	o.mu.Unlock()

	if len(changes) > 0 && cb != nil {
		cb()
	}
}

// takeSnapshot performs a full recursive enumeration of root, collecting
// (mtime, size, is-directory) per entry keyed by path relative to root. The
// root itself (empty relative path) is skipped.
func takeSnapshot(root string) (snapshot, error) {
	snap := make(snapshot)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		snap[rel] = entry{
			ModTime: info.ModTime(),
			Size:    info.Size(),
			IsDir:   d.IsDir(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// diffSnapshots implements §4.1's diff rule, attaching detectedAt and the
// resolved absolute path to every emitted record.
func diffSnapshots(root string, old, next snapshot, detectedAt time.Time) []ChangeRecord {
	var out []ChangeRecord

	for rel, ne := range next {
		oe, existed := old[rel]
		switch {
		case !existed:
			out = append(out, ChangeRecord{AbsolutePath: filepath.Join(root, rel), Kind: Created, DetectedAt: detectedAt})
		case oe.ModTime != ne.ModTime || oe.Size != ne.Size:
			out = append(out, ChangeRecord{AbsolutePath: filepath.Join(root, rel), Kind: Modified, DetectedAt: detectedAt})
		}
	}
	for rel := range old {
		if _, stillThere := next[rel]; !stillThere {
			out = append(out, ChangeRecord{AbsolutePath: filepath.Join(root, rel), Kind: Deleted, DetectedAt: detectedAt})
		}
	}
	return out
}

// addSubdirs walks root and registers every subdirectory with fsw so writes
// inside folder-kind conversations (and their subagents/ directory) surface
// as push-source events, not just poll-source ones.
func addSubdirs(fsw *fsnotify.Watcher, root string) {
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == root {
			return nil
		}
		fsw.Add(path)
		return nil
	})
}
