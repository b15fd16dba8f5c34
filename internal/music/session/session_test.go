package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	mu         sync.Mutex
	played     []Track
	volumes    []int
	stopped    int
	paused     bool
	connected  bool
	playErr    error
	volumeErr  error
	disconnect int

	onStop func()
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{connected: true}
}

func (h *fakeHandle) Play(_ context.Context, t Track) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.playErr != nil {
		return h.playErr
	}
	h.played = append(h.played, t)
	return nil
}

func (h *fakeHandle) Pause(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = true
	return nil
}

func (h *fakeHandle) Resume(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = false
	return nil
}

func (h *fakeHandle) Stop(context.Context) error {
	h.mu.Lock()
	h.stopped++
	cb := h.onStop
	h.mu.Unlock()
	// The node reports the stop asynchronously.
	if cb != nil {
		go cb()
	}
	return nil
}

func (h *fakeHandle) SetVolume(_ context.Context, v int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.volumeErr != nil {
		return h.volumeErr
	}
	h.volumes = append(h.volumes, v)
	return nil
}

func (h *fakeHandle) Disconnect(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnect++
	h.connected = false
	return nil
}

func (h *fakeHandle) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

func (h *fakeHandle) playedTitles() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.played))
	for i, t := range h.played {
		out[i] = t.Title
	}
	return out
}

func (h *fakeHandle) lastVolume() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.volumes) == 0 {
		return -1
	}
	return h.volumes[len(h.volumes)-1]
}

type fakeGateway struct {
	handle  *fakeHandle
	joinErr error
	joins   int
}

func (g *fakeGateway) Join(_ context.Context, _, _ string) (VoiceHandle, error) {
	g.joins++
	if g.joinErr != nil {
		return nil, g.joinErr
	}
	return g.handle, nil
}

type fakeResolver struct {
	tracks map[string][]Track
	err    error
}

func (r *fakeResolver) Resolve(_ context.Context, query string) ([]Track, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.tracks[query], nil
}

type fakeSettings struct {
	mu       sync.Mutex
	alwaysOn bool
	volume   int
	loop     string
}

func (s *fakeSettings) AlwaysOn(string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alwaysOn
}

func (s *fakeSettings) setAlwaysOn(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alwaysOn = v
}

func (s *fakeSettings) DefaultVolume(string) int { return s.volume }
func (s *fakeSettings) DefaultLoop(string) string {
	return s.loop
}

type fakeNotifier struct {
	mu         sync.Mutex
	nowPlaying []string
	idle       int
	restored   []int
}

func (n *fakeNotifier) NowPlaying(_, _ string, t Track, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nowPlaying = append(n.nowPlaying, t.Title)
}

func (n *fakeNotifier) IdleDisconnect(_, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.idle++
}

func (n *fakeNotifier) VolumeRestored(_, _ string, v int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.restored = append(n.restored, v)
}

func (n *fakeNotifier) idleCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.idle
}

func (n *fakeNotifier) restoredVolumes() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]int, len(n.restored))
	copy(out, n.restored)
	return out
}

type fixture struct {
	mgr      *Manager
	handle   *fakeHandle
	gateway  *fakeGateway
	resolver *fakeResolver
	settings *fakeSettings
	notify   *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		handle:   newFakeHandle(),
		settings: &fakeSettings{},
		notify:   &fakeNotifier{},
		resolver: &fakeResolver{tracks: map[string][]Track{
			"one":   {{Title: "One"}},
			"two":   {{Title: "Two"}},
			"three": {{Title: "Three"}},
			"album": {{Title: "A"}, {Title: "B"}, {Title: "C"}},
		}},
	}
	f.gateway = &fakeGateway{handle: f.handle}
	f.mgr = NewManager(f.gateway, f.resolver, f.settings, f.notify, 100)
	return f
}

func (f *fixture) session(t *testing.T) *Session {
	t.Helper()
	s, err := f.mgr.CreateOrGet(context.Background(), "g1", "vc1", "tc1")
	require.NoError(t, err)
	return s
}

func TestCreateOrGetRequiresVoiceChannel(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.CreateOrGet(context.Background(), "g1", "", "tc1")
	assert.ErrorIs(t, err, ErrNotInVoice)
	assert.Equal(t, 0, f.mgr.ActiveSessions())
}

func TestCreateOrGetJoinFailure(t *testing.T) {
	f := newFixture(t)
	f.gateway.joinErr = errors.New("voice gateway timeout")

	_, err := f.mgr.CreateOrGet(context.Background(), "g1", "vc1", "tc1")

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, 0, f.mgr.ActiveSessions())
}

func TestCreateOrGetReusesExistingSession(t *testing.T) {
	f := newFixture(t)
	s1 := f.session(t)
	s2, err := f.mgr.CreateOrGet(context.Background(), "g1", "vc-other", "tc2")
	require.NoError(t, err)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, f.gateway.joins)
	assert.Equal(t, "tc2", s2.TextChannel())
}

func TestEnqueueStartsPlaybackWhenIdle(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)

	added, err := s.Enqueue(context.Background(), "one", "alice", "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "One", cur.Title)
	assert.Equal(t, "alice", cur.Requester)
	assert.Empty(t, s.Queue())
}

func TestEnqueuePreservesOrder(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)

	_, err := s.Enqueue(context.Background(), "album", "alice", "u1")
	require.NoError(t, err)
	_, err = s.Enqueue(context.Background(), "two", "bob", "u2")
	require.NoError(t, err)

	cur, _ := s.Current()
	assert.Equal(t, "A", cur.Title)

	var titles []string
	for _, tr := range s.Queue() {
		titles = append(titles, tr.Title)
	}
	assert.Equal(t, []string{"B", "C", "Two"}, titles)
}

func TestEnqueueResolveFailureLeavesQueueUntouched(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	_, err := s.Enqueue(context.Background(), "one", "alice", "u1")
	require.NoError(t, err)

	f.resolver.err = errors.New("upstream 503")
	_, err = s.Enqueue(context.Background(), "two", "bob", "u2")
	require.Error(t, err)

	cur, _ := s.Current()
	assert.Equal(t, "One", cur.Title)
	assert.Empty(t, s.Queue())
}

func TestEnqueueNoResults(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	_, err := s.Enqueue(context.Background(), "missing", "alice", "u1")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestTrackEndedAdvancesQueue(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	_, err := s.Enqueue(context.Background(), "album", "alice", "u1")
	require.NoError(t, err)

	s.TrackEnded(EndFinished)
	cur, _ := s.Current()
	assert.Equal(t, "B", cur.Title)

	s.TrackEnded(EndFinished)
	cur, _ = s.Current()
	assert.Equal(t, "C", cur.Title)

	assert.Equal(t, []string{"A", "B", "C"}, f.handle.playedTitles())
}

func TestLoopTrackReplaysSameTrack(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	_, err := s.Enqueue(context.Background(), "album", "alice", "u1")
	require.NoError(t, err)
	s.SetLoop(LoopTrack)

	s.TrackEnded(EndFinished)
	s.TrackEnded(EndFinished)

	cur, _ := s.Current()
	assert.Equal(t, "A", cur.Title)
	assert.Equal(t, []string{"A", "A", "A"}, f.handle.playedTitles())
	assert.Len(t, s.Queue(), 2)
}

func TestLoopTrackDoesNotReplayFailedTrack(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	_, err := s.Enqueue(context.Background(), "album", "alice", "u1")
	require.NoError(t, err)
	s.SetLoop(LoopTrack)

	s.TrackEnded(EndFailed)

	cur, _ := s.Current()
	assert.Equal(t, "B", cur.Title)
}

func TestLoopQueueCyclesInOrder(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	_, err := s.Enqueue(context.Background(), "album", "alice", "u1")
	require.NoError(t, err)
	s.SetLoop(LoopQueue)

	for i := 0; i < 6; i++ {
		s.TrackEnded(EndFinished)
	}

	// A,B,C started, then the cycle repeats from the tail.
	assert.Equal(t, []string{"A", "B", "C", "A", "B", "C", "A"}, f.handle.playedTitles())
}

func TestSkipStopsCurrentTrack(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	f.handle.onStop = func() { s.TrackEnded(EndStopped) }

	_, err := s.Enqueue(context.Background(), "album", "alice", "u1")
	require.NoError(t, err)

	require.NoError(t, s.Skip(context.Background()))
	require.Eventually(t, func() bool {
		cur, ok := s.Current()
		return ok && cur.Title == "B"
	}, time.Second, 5*time.Millisecond)
}

func TestSkipWithNothingPlaying(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	assert.ErrorIs(t, s.Skip(context.Background()), ErrNothingPlaying)
}

func TestPauseResume(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	_, err := s.Enqueue(context.Background(), "one", "alice", "u1")
	require.NoError(t, err)

	require.NoError(t, s.Pause(context.Background()))
	assert.True(t, s.Paused())
	require.NoError(t, s.Resume(context.Background()))
	assert.False(t, s.Paused())
}

func TestStopIsIdempotent(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	_, err := s.Enqueue(context.Background(), "album", "alice", "u1")
	require.NoError(t, err)

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	assert.True(t, s.Destroyed())
	assert.Equal(t, 1, f.handle.disconnect)
	assert.Equal(t, 0, f.mgr.ActiveSessions())
}

func TestStopIgnoresAlwaysOn(t *testing.T) {
	f := newFixture(t)
	f.settings.setAlwaysOn(true)
	s := f.session(t)

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, s.Destroyed())
	assert.Equal(t, 1, f.handle.disconnect)
}

func TestSetVolumeClamps(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)

	assert.Equal(t, 0, s.SetVolume(context.Background(), -50))
	assert.Equal(t, MaxVolume, s.SetVolume(context.Background(), 5000))
	assert.Equal(t, 250, s.SetVolume(context.Background(), 250))
	assert.Equal(t, 250, s.Volume())
}

func TestSetVolumeKeepsValueOnNodeRejection(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	f.handle.volumeErr = errors.New("node unavailable")

	assert.Equal(t, 300, s.SetVolume(context.Background(), 300))
	assert.Equal(t, 300, s.Volume())
}

func TestBlastRestoresPreBlastVolume(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	s.SetVolume(context.Background(), 80)

	d := s.Blast(context.Background(), 20*time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, d)
	assert.Equal(t, BlastVolume, s.Volume())

	require.Eventually(t, func() bool {
		return s.Volume() == 80
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{80}, f.notify.restoredVolumes())
}

func TestBlastRestoreOverridesManualChange(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	s.SetVolume(context.Background(), 80)

	s.Blast(context.Background(), 30*time.Millisecond)
	s.SetVolume(context.Background(), 55)

	require.Eventually(t, func() bool {
		return s.Volume() == 80
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 80, f.handle.lastVolume())
}

func TestBlastCapsDuration(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	assert.Equal(t, BlastMaxDuration, s.Blast(context.Background(), time.Hour))
	assert.Equal(t, BlastDefaultDuration, s.Blast(context.Background(), 0))
}

func TestIdleDisconnectFiresAfterQueueDrains(t *testing.T) {
	f := newFixture(t)
	f.mgr.idleTimeout = 20 * time.Millisecond
	s := f.session(t)

	_, err := s.Enqueue(context.Background(), "one", "alice", "u1")
	require.NoError(t, err)
	s.TrackEnded(EndFinished)
	assert.True(t, s.IdleArmed())

	require.Eventually(t, s.Destroyed, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, f.notify.idleCount())
	assert.Equal(t, 0, f.mgr.ActiveSessions())
}

func TestIdleTimerCancelledByNewTrack(t *testing.T) {
	f := newFixture(t)
	f.mgr.idleTimeout = 40 * time.Millisecond
	s := f.session(t)

	_, err := s.Enqueue(context.Background(), "one", "alice", "u1")
	require.NoError(t, err)
	s.TrackEnded(EndFinished)
	require.True(t, s.IdleArmed())

	_, err = s.Enqueue(context.Background(), "two", "bob", "u2")
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)
	assert.False(t, s.Destroyed())
	assert.Equal(t, 0, f.notify.idleCount())
}

func TestIdleTimerRespectsAlwaysOnFlip(t *testing.T) {
	f := newFixture(t)
	f.mgr.idleTimeout = 30 * time.Millisecond
	s := f.session(t)

	_, err := s.Enqueue(context.Background(), "one", "alice", "u1")
	require.NoError(t, err)
	s.TrackEnded(EndFinished)
	require.True(t, s.IdleArmed())

	// 24/7 enabled while the timer is pending: fire-time re-validation
	// must keep the session alive.
	f.settings.setAlwaysOn(true)

	time.Sleep(60 * time.Millisecond)
	assert.False(t, s.Destroyed())
	assert.Equal(t, 0, f.notify.idleCount())
}

func TestAlwaysOnSkipsIdleTimerEntirely(t *testing.T) {
	f := newFixture(t)
	f.settings.setAlwaysOn(true)
	f.mgr.idleTimeout = 20 * time.Millisecond
	s := f.session(t)

	_, err := s.Enqueue(context.Background(), "one", "alice", "u1")
	require.NoError(t, err)
	s.TrackEnded(EndFinished)

	assert.False(t, s.IdleArmed())
}

func TestUnplayableTrackIsSkipped(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	f.handle.playErr = errors.New("decode failure")

	_, err := s.Enqueue(context.Background(), "album", "alice", "u1")
	require.NoError(t, err)

	// Every start attempt failed, so the queue drained and the idle timer
	// armed with nothing playing.
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Empty(t, s.Queue())
	assert.True(t, s.IdleArmed())
}

func TestShuffleKeepsAllTracks(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	_, err := s.Enqueue(context.Background(), "album", "alice", "u1")
	require.NoError(t, err)

	before := s.Queue()
	s.Shuffle()
	after := s.Queue()

	assert.ElementsMatch(t, before, after)
}

func TestClearQueueKeepsCurrentTrack(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	_, err := s.Enqueue(context.Background(), "album", "alice", "u1")
	require.NoError(t, err)

	s.ClearQueue()

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "A", cur.Title)
	assert.Empty(t, s.Queue())
}

func TestManagerGetUnknownGuild(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.Get("nope")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManagerHandleTrackEndUnknownGuild(t *testing.T) {
	f := newFixture(t)
	// Must not panic.
	f.mgr.HandleTrackEnd("nope", EndFinished)
}

func TestManagerShutdownStopsAllSessions(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	other, err := f.mgr.CreateOrGet(context.Background(), "g2", "vc2", "tc2")
	require.NoError(t, err)

	f.mgr.Shutdown(context.Background())

	assert.True(t, s.Destroyed())
	assert.True(t, other.Destroyed())
	assert.Equal(t, 0, f.mgr.ActiveSessions())
}

func TestSessionOpsAfterDestroy(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	require.NoError(t, s.Stop(context.Background()))

	_, err := s.Enqueue(context.Background(), "one", "alice", "u1")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, s.Skip(context.Background()), ErrNoSession)
	assert.ErrorIs(t, s.Pause(context.Background()), ErrNoSession)
}
