// Package connectivity tracks whether the academy backend is reachable.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultProbeInterval период проверки доступности backend
const DefaultProbeInterval = 15 * time.Second

// probeTimeout ограничивает одну проверку
const probeTimeout = 5 * time.Second

// Checker reports the current connectivity state.
// The value is read at decision time and may change right after the call.
type Checker interface {
	IsOnline() bool
}

// Watcher is a Checker that also reports online/offline transitions
type Watcher interface {
	Checker
	// Subscribe registers fn for transitions and returns a function that removes it
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// Prober checks that the backend answers. api.Client implements it.
type Prober interface {
	Ping(ctx context.Context) error
}

var (
	_ Watcher = (*Monitor)(nil)
	_ Watcher = (*Static)(nil)
)

// subscribers список обработчиков переходов, общий для Monitor и Static
type subscribers struct {
	fns    map[int]func(bool)
	nextID int
	mu     sync.Mutex
}

func (s *subscribers) add(fn func(bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fns == nil {
		s.fns = make(map[int]func(bool))
	}
	id := s.nextID
	s.nextID++
	s.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.fns, id)
			s.mu.Unlock()
		})
	}
}

// emit вызывает обработчики вне блокировки, чтобы они могли отписаться
func (s *subscribers) emit(online bool) {
	s.mu.Lock()
	fns := make([]func(bool), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}

// Monitor periodically probes the backend and keeps the last known state.
// Until the first probe the backend is assumed reachable; a failed direct
// call falls back to the queue anyway.
type Monitor struct {
	prober   Prober
	logger   *slog.Logger
	subs     subscribers
	interval time.Duration
	mu       sync.RWMutex
	online   bool
}

// NewMonitor creates a Monitor. A non-positive interval means DefaultProbeInterval.
func NewMonitor(prober Prober, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}

	return &Monitor{
		prober:   prober,
		interval: interval,
		logger:   logger,
		online:   true,
	}
}

// IsOnline returns the last known state
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Subscribe registers fn for online/offline transitions
func (m *Monitor) Subscribe(fn func(online bool)) func() {
	return m.subs.add(fn)
}

// Check probes the backend once, updates the state and notifies subscribers
// if the state changed. Returns the new state.
func (m *Monitor) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := m.prober.Ping(probeCtx)
	cancel()

	online := err == nil

	m.mu.Lock()
	changed := m.online != online
	m.online = online
	m.mu.Unlock()

	if changed {
		if online {
			m.logger.Info("Backend is reachable again")
		} else {
			m.logger.Warn("Backend is unreachable, switching to offline mode", "error", err)
		}
		m.subs.emit(online)
	}

	return online
}

// Run probes the backend every interval until ctx is done
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Static is a Watcher whose state is set explicitly
type Static struct {
	subs   subscribers
	mu     sync.RWMutex
	online bool
}

// NewStatic creates a Static watcher with the initial state
func NewStatic(online bool) *Static {
	return &Static{online: online}
}

// IsOnline returns the current state
func (s *Static) IsOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// Set changes the state and notifies subscribers on a transition
func (s *Static) Set(online bool) {
	s.mu.Lock()
	changed := s.online != online
	s.online = online
	s.mu.Unlock()

	if changed {
		s.subs.emit(online)
	}
}

// Subscribe registers fn for online/offline transitions
func (s *Static) Subscribe(fn func(online bool)) func() {
	return s.subs.add(fn)
}
