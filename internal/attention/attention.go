// Package attention implements the AttentionWatcher: the orchestrator that
// turns raw directory change notifications into debounced, watermark
// filtered attention-list deliveries to a subscriber.
package attention

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nrobbins/attnwatch/internal/conversation"
	"github.com/nrobbins/attnwatch/internal/dirwatch"
)

// DefaultDebounceInterval is the scan-coalescing delay applied after each
// observed change (§4.5 Debouncing).
const DefaultDebounceInterval = 500 * time.Millisecond

// Subscriber receives the current set of attention-required conversations on
// every coalesced scan. Invocations for a given Watcher are totally ordered
// and serial (§5).
type Subscriber func(conversations []conversation.Conversation)

// Watcher is the AttentionWatcher orchestrator. The zero value is not ready
// for use; construct with New.
type Watcher struct {
	debounceInterval time.Duration
	logger           *slog.Logger
	observer         *dirwatch.Observer

	mu          sync.Mutex
	root        string
	startedAt   time.Time
	active      bool
	subscriber  Subscriber
	debounceTmr *time.Timer
	wasInList   map[string]bool // id set delivered attention-required last dispatch

	dispatchMu sync.Mutex // held for a whole dispatch so subscriber calls never overlap
}

// Option configures a Watcher at construction time.
type Option func(*Watcher)

// WithDebounceInterval overrides the default 500ms debounce.
func WithDebounceInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceInterval = d
		}
	}
}

// WithPollInterval overrides the Observer's poll tick (default ~1s).
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.observer.SetPollInterval(d)
		}
	}
}

// WithLogger attaches a structured logger; nil disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
		}
		w.logger = logger
	}
}

// New constructs a Watcher.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		debounceInterval: DefaultDebounceInterval,
		observer:         dirwatch.New(),
		logger:           slog.New(slog.NewTextHandler(noopWriter{}, nil)),
		wasInList:        make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins observing root and dispatching to subscriber. It fails with
// the Observer's start errors; otherwise it records a start-time watermark
// so conversations already stale at launch never surface.
func (w *Watcher) Start(root string, subscriber Subscriber) error {
	w.mu.Lock()
	if w.active {
		w.mu.Unlock()
		return nil
	}
	w.root = root
	w.subscriber = subscriber
	w.startedAt = time.Now()
	w.active = true
	w.wasInList = make(map[string]bool)
	w.mu.Unlock()

	err := w.observer.Start(root, w.onObserverChange)
	if err != nil {
		w.mu.Lock()
		w.active = false
		w.mu.Unlock()
		return err
	}

	// An initial scan establishes the baseline attention list immediately,
	// rather than waiting for the first change notification.
	w.scheduleScan()
	return nil
}

// Stop is idempotent. It cancels the Observer, any pending debounced scan,
// and clears the start-time watermark. A subscriber callback already in
// flight is allowed to complete.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return
	}
	w.active = false
	w.startedAt = time.Time{}
	if w.debounceTmr != nil {
		w.debounceTmr.Stop()
		w.debounceTmr = nil
	}
	w.mu.Unlock()

	w.observer.Stop()
}

// IsActive reports whether the Watcher is currently observing.
func (w *Watcher) IsActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// CurrentAttentionList performs a synchronous scan and returns the
// attention-required conversations, filtered by the start-time watermark.
func (w *Watcher) CurrentAttentionList() []conversation.Conversation {
	w.mu.Lock()
	root := w.root
	startedAt := w.startedAt
	active := w.active
	w.mu.Unlock()

	if !active {
		return nil
	}
	return w.scan(root, startedAt)
}

// onObserverChange is invoked by the Observer (never concurrently with
// itself) whenever a scan pass detects at least one change.
func (w *Watcher) onObserverChange() {
	w.observer.Drain() // the specific changes don't matter; only that >=1 occurred
	w.scheduleScan()
}

// scheduleScan implements the debounce: cancel any pending timer and start a
// new one. If further changes arrive before it fires, the timer restarts.
func (w *Watcher) scheduleScan() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.active {
		return
	}
	if w.debounceTmr != nil {
		w.debounceTmr.Stop()
	}
	w.debounceTmr = time.AfterFunc(w.debounceInterval, w.dispatch)
}

// dispatch runs one coalesced scan pass and invokes the subscriber. Exactly
// one subscriber invocation occurs per coalesced burst (§4.5).
func (w *Watcher) dispatch() {
	w.dispatchMu.Lock()
	defer w.dispatchMu.Unlock()

	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return
	}
	root := w.root
	startedAt := w.startedAt
	subscriber := w.subscriber
	w.mu.Unlock()

	scanID := uuid.New().String()
	attentionList := w.scan(root, startedAt)

	w.mu.Lock()
	nowInList := make(map[string]bool, len(attentionList))
	transitioned := false
	for _, c := range attentionList {
		nowInList[c.ID] = true
		if !w.wasInList[c.ID] {
			transitioned = true
		}
	}
	for id := range w.wasInList {
		if !nowInList[id] {
			transitioned = true // a transition out of attention
		}
	}
	w.wasInList = nowInList
	w.mu.Unlock()

	w.logger.Debug("scan pass complete", "scan-id", scanID, "attention-count", len(attentionList), "transitioned", transitioned)

	if subscriber != nil {
		subscriber(attentionList)
	}
}

// scan implements the §4.5 Scan procedure plus the start-time watermark and
// attention-code filter.
func (w *Watcher) scan(root string, startedAt time.Time) []conversation.Conversation {
	convs, err := conversation.Scan(root)
	if err != nil {
		w.logger.Warn("scan failed", "root", root, "err", err)
		return nil
	}

	out := make([]conversation.Conversation, 0, len(convs))
	for _, c := range convs {
		if !c.Status.Code.AttentionRequired() {
			continue
		}
		if c.LastModified.Before(startedAt) {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastModified.After(out[j].LastModified)
	})
	return out
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
