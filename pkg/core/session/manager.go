// Package session tracks per-conversation reconciliation state: which
// files a user has uploaded so far, the pending run, and the deferred
// rating prompt that follows a completed run.
package session

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileKind distinguishes the two inputs a session collects.
type FileKind string

const (
	FileVendor FileKind = "vendor"
	FileSOA    FileKind = "soa"
)

// ClassifyFilename guesses which input an uploaded file is from its name.
// Returns an error when the name hints at neither side.
func ClassifyFilename(name string) (FileKind, error) {
	lower := strings.ToLower(filepath.Base(name))
	switch {
	case strings.Contains(lower, "vendor") || strings.Contains(lower, "ledger"):
		return FileVendor, nil
	case strings.Contains(lower, "soa") || strings.Contains(lower, "statement"):
		return FileSOA, nil
	}
	return "", fmt.Errorf("cannot tell vendor ledger from SOA by filename %q; include 'vendor' or 'soa' in the name", name)
}

// Session is the state of one user's reconciliation in one channel. The
// identity fields are immutable; all mutable state is accessed through the
// session's methods, which hold its lock, so concurrent uploads for the
// same conversation stay consistent.
type Session struct {
	ID        string
	UserID    string
	ChannelID string
	CreatedAt time.Time

	mu           sync.Mutex
	updatedAt    time.Time
	vendorPath   string
	soaPath      string
	userComments string
	usageID      int64
	ratingTimer  *time.Timer
}

// SetFile records an uploaded input. A second upload of the same kind
// replaces the first.
func (s *Session) SetFile(kind FileKind, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case FileVendor:
		s.vendorPath = path
	case FileSOA:
		s.soaPath = path
	}
	s.updatedAt = time.Now()
}

// SetComments stores operator guidance to forward to the extractor.
func (s *Session) SetComments(comments string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userComments = comments
	s.updatedAt = time.Now()
}

// Ready reports whether both inputs have arrived.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vendorPath != "" && s.soaPath != ""
}

// TakeFiles atomically claims the collected inputs for a run. When both
// sides are present it returns them with the stored comments and clears
// them, so of several concurrent uploads exactly one caller starts the run.
// ok is false while either side is still missing.
func (s *Session) TakeFiles() (vendorPath, soaPath, comments string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vendorPath == "" || s.soaPath == "" {
		return "", "", "", false
	}
	vendorPath, soaPath, comments = s.vendorPath, s.soaPath, s.userComments
	s.vendorPath, s.soaPath, s.userComments = "", "", ""
	s.updatedAt = time.Now()
	return vendorPath, soaPath, comments, true
}

// SetUsageID links the session to its most recent usage-log record.
func (s *Session) SetUsageID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usageID = id
}

// UsageID returns the usage-log record of the most recent run, 0 if none.
func (s *Session) UsageID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usageID
}

// ScheduleRatingPrompt arranges for fn to run after delay, typically to ask
// the user how the run went. A newer schedule or a CancelRating call
// replaces or stops the pending one, so at most one prompt fires.
func (s *Session) ScheduleRatingPrompt(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ratingTimer != nil {
		s.ratingTimer.Stop()
	}
	s.ratingTimer = time.AfterFunc(delay, fn)
}

// CancelRating stops the pending rating prompt, e.g. because the user
// already rated or started a new run.
func (s *Session) CancelRating() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ratingTimer != nil {
		s.ratingTimer.Stop()
		s.ratingTimer = nil
	}
}

// Reset clears the collected inputs so the session can host another run.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendorPath = ""
	s.soaPath = ""
	s.userComments = ""
	s.usageID = 0
	if s.ratingTimer != nil {
		s.ratingTimer.Stop()
		s.ratingTimer = nil
	}
	s.updatedAt = time.Now()
}

func (s *Session) lastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Manager owns all live sessions. Sessions are keyed by user and channel
// so concurrent conversations never share state.
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewManager() *Manager {
	m := &Manager{sessions: make(map[string]*Session)}
	go m.cleanup()
	return m
}

func sessionKey(userID, channelID string) string {
	return userID + "/" + channelID
}

// GetOrCreate returns the session for the user/channel pair, creating it
// on first contact.
func (m *Manager) GetOrCreate(userID, channelID string) *Session {
	key := sessionKey(userID, channelID)

	m.mu.RLock()
	s, ok := m.sessions[key]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s
	}
	now := time.Now()
	s = &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		ChannelID: channelID,
		CreatedAt: now,
		updatedAt: now,
	}
	m.sessions[key] = s
	return s
}

// Get returns an existing session without creating one.
func (m *Manager) Get(userID, channelID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionKey(userID, channelID)]
	return s, ok
}

// cleanup drops sessions idle for more than 24 hours.
func (m *Manager) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	for range ticker.C {
		m.mu.Lock()
		for key, s := range m.sessions {
			if time.Since(s.lastActive()) > 24*time.Hour {
				s.CancelRating()
				delete(m.sessions, key)
			}
		}
		m.mu.Unlock()
	}
}
