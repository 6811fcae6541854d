// Package session tracks per-conversation state: dialogue history, the
// selected analysis framework, and the live deep-dive job.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/salescope/salescope/pkg/analysis"
	"github.com/salescope/salescope/pkg/llm"
)

// Session is one conversation's state. A session holds at most one deep-dive
// job; starting a new one replaces it.
type Session struct {
	mu sync.Mutex

	history   []llm.Message
	framework string
	job       *analysis.Job
}

// History returns a copy of the dialogue history.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

// SetHistory replaces the dialogue history.
func (s *Session) SetHistory(history []llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = history
}

// Framework returns the session's analysis framework name.
func (s *Session) Framework() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.framework
}

// SetFramework selects the analysis framework for subsequent questions.
func (s *Session) SetFramework(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.framework = name
}

// Job returns the live deep-dive job, or nil.
func (s *Session) Job() *analysis.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job
}

// StartJob installs a new job, replacing any previous one.
func (s *Session) StartJob(job *analysis.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job = job
}

// Clear drops the history and the job. The framework selection survives.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.job = nil
}

// Config holds Manager settings.
type Config struct {
	Logger *slog.Logger
	TTL    time.Duration
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	return nil
}

// Manager hands out sessions by id, expiring idle ones after the TTL.
type Manager struct {
	cfg   Config
	cache *ttlcache.Cache[string, *Session]
}

func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *Session](cfg.TTL),
	)
	go cache.Start()
	return &Manager{cfg: cfg, cache: cache}, nil
}

// Get returns the session for id, creating it on first use. Each access
// refreshes the TTL.
func (m *Manager) Get(id string) *Session {
	if item := m.cache.Get(id); item != nil {
		return item.Value()
	}
	m.cfg.Logger.Debug("session: created", "id", id)
	sess := &Session{}
	m.cache.Set(id, sess, ttlcache.DefaultTTL)
	return sess
}

// Delete removes the session for id.
func (m *Manager) Delete(id string) {
	m.cache.Delete(id)
}

// Stop halts TTL expiry. Call on shutdown.
func (m *Manager) Stop() {
	m.cache.Stop()
}
