package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mfenderov/ko-docsearch/pkg/models"
)

// ErrNotReady is returned for queries issued before an index was loaded.
var ErrNotReady = errors.New("search index not ready")

// DefaultDebounce is the quiet period SetQuery waits for before searching.
const DefaultDebounce = 300 * time.Millisecond

// LoadFunc retrieves the document set, typically from an artifact.
type LoadFunc func(ctx context.Context) ([]models.SearchDocument, error)

// State is a snapshot of a Session.
type State struct {
	Loading     bool
	Ready       bool
	Query       string
	Results     []models.SearchResult
	Suggestions []string
	Stats       Stats
	// Err is the load error if the last load failed, else the error of the
	// last query.
	Err error
}

// SessionOptions configures a Session. Zero values use the defaults.
type SessionOptions struct {
	Debounce     time.Duration
	Limit        int
	SuggestLimit int
	// OnChange receives a snapshot after every state transition. It is
	// called without the session lock held and may call back into the
	// session. Calls never overlap, a snapshot superseded before delivery
	// is skipped, and the last call carries the newest state.
	OnChange func(State)
}

// Session owns an Index and the query lifecycle around it: loading,
// debounced re-querying and error recovery. All methods are safe for
// concurrent use.
type Session struct {
	opts SessionOptions

	mu       sync.Mutex
	index    *Index
	state    State
	loadErr  error
	queryErr error
	timer    *time.Timer
	gen      uint64
	seq      uint64
	closed   bool

	// notifyMu orders OnChange deliveries. notified is the newest snapshot
	// accepted for delivery; pending holds it while a delivery is running.
	notifyMu   sync.Mutex
	notified   uint64
	pending    *State
	delivering bool

	// run executes one query; replaced in tests.
	run func(ix *Index, query string, limit, suggestLimit int) ([]models.SearchResult, []string)
}

// NewSession returns an empty session. Call Load before querying.
func NewSession(opts SessionOptions) *Session {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.SuggestLimit <= 0 {
		opts.SuggestLimit = DefaultSuggestLimit
	}
	return &Session{opts: opts, run: runQuery}
}

func runQuery(ix *Index, query string, limit, suggestLimit int) ([]models.SearchResult, []string) {
	return ix.Search(query, limit), ix.Suggest(query, suggestLimit)
}

// Load fetches documents with load and replaces the index wholesale. On
// failure the session has no index until the next successful Load; there is
// no automatic retry. A pending query is re-run against the new index.
func (s *Session) Load(ctx context.Context, load LoadFunc) error {
	s.mu.Lock()
	s.state.Loading = true
	s.loadErr = nil
	seq, snap := s.publishLocked()
	s.mu.Unlock()
	s.notify(seq, snap)

	ix, err := s.build(ctx, load)

	s.mu.Lock()
	s.state.Loading = false
	s.index = ix
	s.loadErr = err
	if err != nil {
		s.clearLocked()
	}
	query := s.state.Query
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	seq, snap = s.publishLocked()
	s.mu.Unlock()
	s.notify(seq, snap)

	if err != nil {
		slog.Error("search index unavailable", "error", err)
		return err
	}
	slog.Info("search index loaded",
		"documents", snap.Stats.TotalDocuments,
		"titles", snap.Stats.UniqueTitles)
	if strings.TrimSpace(query) != "" {
		s.execute(gen, query)
	}
	return nil
}

func (s *Session) build(ctx context.Context, load LoadFunc) (*Index, error) {
	docs, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load search documents: %w", err)
	}
	ix, err := Build(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to build search index: %w", err)
	}
	return ix, nil
}

// SetQuery records the query and searches once no newer query has arrived
// for the debounce period. A query superseded before it completes never
// applies its results. An empty query clears results at once.
func (s *Session) SetQuery(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Query = query
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if strings.TrimSpace(query) == "" {
		s.clearLocked()
		seq, snap := s.publishLocked()
		s.mu.Unlock()
		s.notify(seq, snap)
		return
	}
	s.timer = time.AfterFunc(s.opts.Debounce, func() { s.execute(gen, query) })
	s.mu.Unlock()
}

// Query searches immediately, cancelling any pending debounced query, and
// returns the resulting state.
func (s *Session) Query(query string) (State, error) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state.Query = query
	s.gen++
	gen := s.gen
	ready := s.index != nil
	s.mu.Unlock()

	if !ready {
		s.mu.Lock()
		s.clearLocked()
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrNotReady
	}
	s.execute(gen, query)

	snap := s.State()
	return snap, snap.Err
}

// execute runs query for generation gen and applies the outcome unless a
// newer query or load has started meanwhile.
func (s *Session) execute(gen uint64, query string) {
	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	ix := s.index
	s.mu.Unlock()

	var (
		results     []models.SearchResult
		suggestions []string
		err         error
	)
	if ix == nil {
		err = ErrNotReady
	} else if strings.TrimSpace(query) != "" {
		results, suggestions, err = s.safeRun(ix, query)
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.state.Results = results
	s.state.Suggestions = suggestions
	s.queryErr = err
	seq, snap := s.publishLocked()
	s.mu.Unlock()
	s.notify(seq, snap)
}

// safeRun contains a failing query so it cannot take the session down.
func (s *Session) safeRun(ix *Index, query string) (results []models.SearchResult, suggestions []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("search query failed", "query", query, "panic", r)
			results, suggestions = nil, nil
			err = fmt.Errorf("search failed for %q: %v", query, r)
		}
	}()
	results, suggestions = s.run(ix, query, s.opts.Limit, s.opts.SuggestLimit)
	return results, suggestions, nil
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Index returns the loaded index.
func (s *Session) Index() (*Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil, ErrNotReady
	}
	return s.index, nil
}

// Close cancels any pending query. Later SetQuery calls are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) clearLocked() {
	s.state.Results = nil
	s.state.Suggestions = nil
	s.queryErr = nil
}

func (s *Session) snapshotLocked() State {
	st := s.state
	st.Ready = s.index != nil
	st.Stats = Stats{}
	if s.index != nil {
		st.Stats = s.index.Stats()
	}
	st.Err = s.loadErr
	if st.Err == nil {
		st.Err = s.queryErr
	}
	return st
}

// publishLocked numbers a snapshot for delivery to OnChange.
func (s *Session) publishLocked() (uint64, State) {
	s.seq++
	return s.seq, s.snapshotLocked()
}

// notify hands st to OnChange unless a newer snapshot was already accepted.
// Deliveries never overlap: a snapshot arriving while OnChange runs, even
// from inside it, replaces any older pending one and is delivered by the
// running loop once OnChange returns. The last snapshot delivered is
// therefore always the newest state.
func (s *Session) notify(seq uint64, st State) {
	if s.opts.OnChange == nil {
		return
	}
	s.notifyMu.Lock()
	if seq <= s.notified {
		s.notifyMu.Unlock()
		return
	}
	s.notified = seq
	s.pending = &st
	if s.delivering {
		s.notifyMu.Unlock()
		return
	}
	s.delivering = true
	for s.pending != nil {
		next := *s.pending
		s.pending = nil
		s.notifyMu.Unlock()
		s.deliver(next)
		s.notifyMu.Lock()
	}
	s.delivering = false
	s.notifyMu.Unlock()
}

// deliver calls OnChange. A panicking callback ends the delivery loop so
// later snapshots are not stuck behind it.
func (s *Session) deliver(st State) {
	ok := false
	defer func() {
		if !ok {
			s.notifyMu.Lock()
			s.delivering = false
			s.pending = nil
			s.notifyMu.Unlock()
		}
	}()
	s.opts.OnChange(st)
	ok = true
}
