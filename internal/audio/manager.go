// Package audio owns the single shared playback resource. At most one
// handle is ever active; both session types must go through the manager's
// Play/Stop/Toggle contract rather than creating handles themselves.
package audio

import (
	"context"
	"sync"

	"github.com/luwen/lingoflash/internal/errors"
	"github.com/luwen/lingoflash/internal/logger"
)

// Resolver turns a source key (a word spelling, or an absolute narration
// URL) into a playable URL. Resolution may be slow; the manager exposes a
// resolving flag for the duration and discards late results.
type Resolver interface {
	Resolve(ctx context.Context, sourceKey string) (string, error)
}

// Player starts and stops actual playback of a resolved URL. Play returns
// once playback has started; Stop releases whatever is playing.
type Player interface {
	Play(ctx context.Context, url string) error
	Stop()
}

// Manager enforces the exclusive-handle invariant. Every accepted Play
// bumps a generation counter; a resolution that finishes under an older
// generation is discarded, so a superseded source never starts playing.
type Manager struct {
	resolver Resolver
	player   Player
	log      *logger.Logger
	notify   func(sourceKey string, err error)

	mu        sync.Mutex
	current   string
	playing   bool
	resolving bool
	gen       uint64
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithFailureNotice registers a callback invoked once per failed play
// attempt. Playback is usually fire-and-forget, so this is the single
// user-visible surface for audio failures.
func WithFailureNotice(fn func(sourceKey string, err error)) ManagerOption {
	return func(m *Manager) { m.notify = fn }
}

func NewManager(resolver Resolver, player Player, opts ...ManagerOption) *Manager {
	m := &Manager{
		resolver: resolver,
		player:   player,
		log:      logger.Default().WithPrefix("audio"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Play resolves and plays the given source key. Playing the key that is
// already active (or already resolving) is a no-op; any other active
// handle is stopped and released first. A resolution or playback failure
// leaves the manager released, never stuck resolving.
func (m *Manager) Play(ctx context.Context, sourceKey string) error {
	m.mu.Lock()
	if m.current == sourceKey && (m.playing || m.resolving) {
		m.mu.Unlock()
		return nil
	}
	if m.playing {
		m.player.Stop()
		m.playing = false
	}
	m.gen++
	gen := m.gen
	m.current = sourceKey
	m.resolving = true
	m.mu.Unlock()

	m.log.Debug("resolving source: %q", sourceKey)
	url, err := m.resolver.Resolve(ctx, sourceKey)

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		m.log.Debug("discarding stale resolution for %q", sourceKey)
		return nil
	}
	if err != nil {
		m.releaseLocked()
		m.mu.Unlock()
		m.log.Warn("resolution failed for %q: %v", sourceKey, err)
		m.noticeFailure(sourceKey, err)
		return errors.NewAudioError(sourceKey, err)
	}

	if err := m.player.Play(ctx, url); err != nil {
		m.releaseLocked()
		m.mu.Unlock()
		m.log.Warn("playback failed for %q: %v", sourceKey, err)
		m.noticeFailure(sourceKey, err)
		return errors.NewAudioError(sourceKey, err)
	}
	m.resolving = false
	m.playing = true
	m.mu.Unlock()

	m.log.Debug("playing %q", sourceKey)
	return nil
}

// Stop releases the active handle and clears all flags. Safe to call on
// teardown regardless of state.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	if m.playing {
		m.player.Stop()
	}
	m.releaseLocked()
}

// Toggle stops the key if it is currently playing, otherwise plays it.
func (m *Manager) Toggle(ctx context.Context, sourceKey string) error {
	m.mu.Lock()
	active := m.playing && m.current == sourceKey
	m.mu.Unlock()

	if active {
		m.Stop()
		return nil
	}
	return m.Play(ctx, sourceKey)
}

func (m *Manager) noticeFailure(sourceKey string, err error) {
	if m.notify != nil {
		m.notify(sourceKey, err)
	}
}

func (m *Manager) releaseLocked() {
	m.playing = false
	m.resolving = false
	m.current = ""
}

// Playing reports whether a handle is actively playing.
func (m *Manager) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Resolving reports whether a source is being resolved; callers disable
// duplicate triggers while this is set.
func (m *Manager) Resolving() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolving
}

// Current returns the active source key, or "" when released.
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
