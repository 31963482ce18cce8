// Package session keeps one compositor per visitor in a bounded LRU cache.
package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cristianadrielbraun/badgeoverlay/internal/asset"
	"github.com/cristianadrielbraun/badgeoverlay/internal/interaction"
	"github.com/cristianadrielbraun/badgeoverlay/internal/surface"
)

// Session is one visitor's canvas, controller and pointer capture. Callers
// hold Lock for the duration of each event so the controller only ever sees
// one event at a time.
type Session struct {
	sync.Mutex
	ID         string
	Surface    *surface.Surface
	Controller *interaction.Controller
	Capture    *Capture
}

// Capture tracks which pointers the page should keep captured.
type Capture struct {
	held map[int]bool
}

// SetPointerCapture records that the page should capture pointerID.
func (c *Capture) SetPointerCapture(pointerID int) error {
	if c.held == nil {
		c.held = make(map[int]bool)
	}
	c.held[pointerID] = true
	return nil
}

// ReleasePointerCapture forgets pointerID. It fails when pointerID was not
// captured, which the controller treats as harmless.
func (c *Capture) ReleasePointerCapture(pointerID int) error {
	if !c.held[pointerID] {
		return fmt.Errorf("pointer %d not captured", pointerID)
	}
	delete(c.held, pointerID)
	return nil
}

// Holds reports whether pointerID is captured.
func (c *Capture) Holds(pointerID int) bool { return c.held[pointerID] }

// Store is a bounded set of sessions; the least recently used is evicted.
type Store struct {
	mu        sync.Mutex
	cache     *lru.Cache[string, *Session]
	overlay   *asset.Pending
	opts      interaction.Options
	maxPixels int64
	logger    *slog.Logger
}

// NewStore returns a store holding at most size sessions, all sharing overlay.
// Each session's backing store is capped at maxPixels.
func NewStore(size int, maxPixels int64, overlay *asset.Pending, opts interaction.Options, logger *slog.Logger) (*Store, error) {
	st := &Store{overlay: overlay, opts: opts, maxPixels: maxPixels, logger: logger}
	cache, err := lru.NewWithEvict[string, *Session](size, func(id string, _ *Session) {
		logger.Debug("session evicted", "session", id)
	})
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	st.cache = cache
	return st, nil
}

// Get returns the session for id.
func (st *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	return st.cache.Get(id)
}

// GetOrCreate returns the session for id, creating a new one under a fresh
// id when it is unknown. created reports whether that happened.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.Get(id); ok {
		return s, false
	}
	s = st.newSession(uuid.NewString())
	st.cache.Add(s.ID, s)
	return s, true
}

// Len returns the number of live sessions.
func (st *Store) Len() int { return st.cache.Len() }

func (st *Store) newSession(id string) *Session {
	surf := surface.New(st.overlay, st.maxPixels)
	capture := &Capture{}
	return &Session{
		ID:         id,
		Surface:    surf,
		Capture:    capture,
		Controller: interaction.New(st.opts, surf, capture, st.logger.With("session", id)),
	}
}
