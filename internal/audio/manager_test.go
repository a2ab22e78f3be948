package audio_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luwen/lingoflash/internal/audio"
	apperrors "github.com/luwen/lingoflash/internal/errors"
)

// fakeResolver resolves keys to "url:<key>", optionally blocking per key
// until released.
type fakeResolver struct {
	mu     sync.Mutex
	blocks map[string]chan struct{}
	errs   map[string]error
	calls  []string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		blocks: map[string]chan struct{}{},
		errs:   map[string]error{},
	}
}

func (r *fakeResolver) blockKey(key string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan struct{})
	r.blocks[key] = ch
	return ch
}

func (r *fakeResolver) Resolve(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, key)
	block := r.blocks[key]
	err := r.errs[key]
	r.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return "", err
	}
	return "url:" + key, nil
}

func (r *fakeResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// fakePlayer records play/stop calls.
type fakePlayer struct {
	mu      sync.Mutex
	playing []string
	stops   int
	playErr error
}

func (p *fakePlayer) Play(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playErr != nil {
		return p.playErr
	}
	p.playing = append(p.playing, url)
	return nil
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func (p *fakePlayer) played() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.playing))
	copy(out, p.playing)
	return out
}

func TestManager_PlayResolvesAndStarts(t *testing.T) {
	resolver := newFakeResolver()
	player := &fakePlayer{}
	m := audio.NewManager(resolver, player)

	require.NoError(t, m.Play(context.Background(), "apple"))

	assert.True(t, m.Playing())
	assert.False(t, m.Resolving())
	assert.Equal(t, "apple", m.Current())
	assert.Equal(t, []string{"url:apple"}, player.played())
}

func TestManager_SameKeyIsIdempotent(t *testing.T) {
	resolver := newFakeResolver()
	player := &fakePlayer{}
	m := audio.NewManager(resolver, player)

	require.NoError(t, m.Play(context.Background(), "apple"))
	require.NoError(t, m.Play(context.Background(), "apple"))

	assert.Equal(t, 1, resolver.callCount(), "replaying the active key must not restart")
	assert.Equal(t, []string{"url:apple"}, player.played())
}

func TestManager_LateResolutionIsDiscarded(t *testing.T) {
	resolver := newFakeResolver()
	player := &fakePlayer{}
	m := audio.NewManager(resolver, player)

	appleBlock := resolver.blockKey("apple")

	done := make(chan error, 1)
	go func() { done <- m.Play(context.Background(), "apple") }()
	require.Eventually(t, func() bool { return m.Resolving() }, time.Second, time.Millisecond)

	// A newer source supersedes the in-flight one.
	require.NoError(t, m.Play(context.Background(), "banana"))
	close(appleBlock)
	require.NoError(t, <-done)

	assert.Equal(t, "banana", m.Current(), "exactly one handle, for the newest source")
	assert.True(t, m.Playing())
	assert.Equal(t, []string{"url:banana"}, player.played(), "the stale resolution must never start playback")
}

func TestManager_PlayStopsPreviousHandle(t *testing.T) {
	resolver := newFakeResolver()
	player := &fakePlayer{}
	m := audio.NewManager(resolver, player)

	require.NoError(t, m.Play(context.Background(), "apple"))
	require.NoError(t, m.Play(context.Background(), "banana"))

	assert.Equal(t, []string{"url:apple", "url:banana"}, player.played())
	assert.Equal(t, 1, stops(player), "the first handle is released before the second starts")
	assert.Equal(t, "banana", m.Current())
}

func TestManager_StopReleasesEverything(t *testing.T) {
	resolver := newFakeResolver()
	player := &fakePlayer{}
	m := audio.NewManager(resolver, player)

	require.NoError(t, m.Play(context.Background(), "apple"))
	m.Stop()

	assert.False(t, m.Playing())
	assert.False(t, m.Resolving())
	assert.Equal(t, "", m.Current())
	assert.Equal(t, 1, stops(player))

	// Stop on a released manager is safe.
	m.Stop()
	assert.Equal(t, 1, stops(player))
}

func TestManager_ResolutionFailureReleases(t *testing.T) {
	resolver := newFakeResolver()
	resolver.errs["apple"] = errors.New("lookup failed")
	player := &fakePlayer{}
	m := audio.NewManager(resolver, player)

	err := m.Play(context.Background(), "apple")
	require.Error(t, err)
	assert.True(t, apperrors.IsAudioError(err))

	// A failure terminates the resolving phase; nothing dangles.
	assert.False(t, m.Resolving())
	assert.False(t, m.Playing())
	assert.Equal(t, "", m.Current())
	assert.Empty(t, player.played())
}

func TestManager_PlaybackFailureReleases(t *testing.T) {
	resolver := newFakeResolver()
	player := &fakePlayer{playErr: errors.New("no output device")}
	m := audio.NewManager(resolver, player)

	err := m.Play(context.Background(), "apple")
	require.Error(t, err)
	assert.True(t, apperrors.IsAudioError(err))
	assert.False(t, m.Playing())
	assert.False(t, m.Resolving())
}

func TestManager_FailureNoticeFiresOncePerAttempt(t *testing.T) {
	resolver := newFakeResolver()
	resolver.errs["apple"] = errors.New("lookup failed")
	player := &fakePlayer{playErr: errors.New("no output device")}

	var notices []string
	m := audio.NewManager(resolver, player, audio.WithFailureNotice(func(sourceKey string, err error) {
		notices = append(notices, sourceKey)
	}))

	// One notice for the resolution failure, one for the playback failure.
	require.Error(t, m.Play(context.Background(), "apple"))
	require.Error(t, m.Play(context.Background(), "banana"))
	assert.Equal(t, []string{"apple", "banana"}, notices)

	// A successful play stays silent.
	player.mu.Lock()
	player.playErr = nil
	player.mu.Unlock()
	require.NoError(t, m.Play(context.Background(), "cherry"))
	assert.Equal(t, []string{"apple", "banana"}, notices)
}

func TestManager_ToggleStopsActiveKey(t *testing.T) {
	resolver := newFakeResolver()
	player := &fakePlayer{}
	m := audio.NewManager(resolver, player)

	require.NoError(t, m.Toggle(context.Background(), "apple"))
	assert.True(t, m.Playing())

	require.NoError(t, m.Toggle(context.Background(), "apple"))
	assert.False(t, m.Playing())
	assert.Equal(t, 1, stops(player))

	require.NoError(t, m.Toggle(context.Background(), "apple"))
	assert.True(t, m.Playing())
}

func stops(p *fakePlayer) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stops
}

func TestDictResolver_WordAndURL(t *testing.T) {
	r := audio.NewDictResolver("")

	url, err := r.Resolve(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, "https://dict.youdao.com/dictvoice?audio=apple&type=1", url)

	url, err = r.Resolve(context.Background(), "ice cream")
	require.NoError(t, err)
	assert.Equal(t, "https://dict.youdao.com/dictvoice?audio=ice+cream&type=1", url)

	// Narration URLs pass through untouched.
	url, err = r.Resolve(context.Background(), "https://cdn.example.com/narration/7.mp3")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/narration/7.mp3", url)

	_, err = r.Resolve(context.Background(), "   ")
	assert.Error(t, err)
}
