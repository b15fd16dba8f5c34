package session

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"
)

const (
	// MaxVolume is the upper bound the audio node accepts. Values above 100
	// are the deliberate "overdrive" range used by the gated blast mode.
	MaxVolume = 1000

	// BlastVolume is the fixed amplification target of the blast window.
	BlastVolume = 400
	// BlastDefaultDuration applies when the requester gives no duration.
	BlastDefaultDuration = 8 * time.Second
	// BlastMaxDuration is the hard cap on a blast window.
	BlastMaxDuration = 30 * time.Second
)

// Session is the live playback state machine for one guild. All mutating
// operations are serialized by the session mutex; the audio node's track-end
// callbacks and user commands may otherwise race on queue and current.
type Session struct {
	GuildID string

	mgr *Manager

	mu            sync.Mutex
	voice         VoiceHandle
	queue         []Track
	current       *Track
	loopMode      LoopMode
	volume        int
	prevVolume    int
	paused        bool
	textChannelID string
	destroyed     bool

	idle  timerSlot
	blast timerSlot
}

// Enqueue resolves query and appends the results to the queue, stamped with
// the requester. If nothing is playing, playback starts with the first
// resolved track. Returns the number of tracks added.
//
// A resolution failure leaves the queue untouched.
func (s *Session) Enqueue(ctx context.Context, query, requester, requesterID string) (int, error) {
	tracks, err := s.mgr.resolver.Resolve(ctx, query)
	if err != nil {
		return 0, err
	}
	if len(tracks) == 0 {
		return 0, ErrNoResults
	}

	for i := range tracks {
		tracks[i].Requester = requester
		tracks[i].RequesterID = requesterID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return 0, ErrNoSession
	}

	s.queue = append(s.queue, tracks...)
	log.Printf("[Session %s] Added %d track(s) to queue | QueueLen=%d", s.GuildID, len(tracks), len(s.queue))

	if s.current == nil {
		s.playNextLocked(ctx, nil, "")
	}
	return len(tracks), nil
}

// playNextLocked advances playback. It is invoked after an enqueue on an idle
// session or from the track-ended callback; the caller holds the session lock.
// finished is the track that just ended, nil when starting from idle.
func (s *Session) playNextLocked(ctx context.Context, finished *Track, reason EndReason) {
	s.idle.Cancel()

	if finished != nil && reason != EndFailed {
		switch s.loopMode {
		case LoopTrack:
			s.startTrackLocked(ctx, *finished)
			return
		case LoopQueue:
			s.queue = append(s.queue, *finished)
		}
	}

	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		if s.startTrackLocked(ctx, next) {
			return
		}
		log.Printf("[Session %s] Skipping unplayable track %q", s.GuildID, next.Title)
	}

	// Nothing left to play.
	s.current = nil
	s.paused = false
	if !s.mgr.settings.AlwaysOn(s.GuildID) {
		log.Printf("[Session %s] Queue drained, arming idle timer (%s)", s.GuildID, s.mgr.idleTimeout)
		s.idle.Arm(s.mgr.idleTimeout, s.idleFired)
	}
}

// startTrackLocked instructs the audio node to stream t and posts the
// now-playing notice. Reports whether playback started.
func (s *Session) startTrackLocked(ctx context.Context, t Track) bool {
	if err := s.voice.Play(ctx, t); err != nil {
		log.Printf("[Session %s] Failed to start track %q: %v", s.GuildID, t.Title, err)
		return false
	}
	track := t
	s.current = &track
	s.paused = false
	log.Printf("[Session %s] Now playing %q | QueueLen=%d", s.GuildID, t.Title, len(s.queue))
	s.mgr.notify.NowPlaying(s.GuildID, s.textChannelID, track, len(s.queue))
	return true
}

// TrackEnded is the audio node's completion callback, delivered exactly once
// per completed or skipped track. The node serializes callbacks per
// connection; the session mutex guards against overlap with user commands.
func (s *Session) TrackEnded(reason EndReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	finished := s.current
	s.current = nil
	s.playNextLocked(context.Background(), finished, reason)
}

// idleFired runs when the idle timer elapses. The timer may be stale (a track
// was enqueued after arming, or the 24/7 flag flipped), so every condition is
// re-validated before disconnecting.
func (s *Session) idleFired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || s.current != nil || len(s.queue) > 0 {
		return
	}
	if s.mgr.settings.AlwaysOn(s.GuildID) {
		return
	}
	log.Printf("[Session %s] Idle for %s, disconnecting", s.GuildID, s.mgr.idleTimeout)
	channelID := s.textChannelID
	s.teardownLocked(context.Background())
	s.mgr.notify.IdleDisconnect(s.GuildID, channelID)
}

// Skip stops the current track; the node reports the stop as a completion,
// which advances the queue through the usual track-ended path.
func (s *Session) Skip(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrNoSession
	}
	if s.current == nil {
		return ErrNothingPlaying
	}
	return s.voice.Stop(ctx)
}

// Pause pauses playback.
func (s *Session) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrNoSession
	}
	if s.current == nil {
		return ErrNothingPlaying
	}
	if err := s.voice.Pause(ctx); err != nil {
		return err
	}
	s.paused = true
	return nil
}

// Resume resumes paused playback.
func (s *Session) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrNoSession
	}
	if s.current == nil {
		return ErrNothingPlaying
	}
	if err := s.voice.Resume(ctx); err != nil {
		return err
	}
	s.paused = false
	return nil
}

// Paused reports whether playback is currently paused.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Stop clears the queue, disconnects and tears the session down, regardless
// of the 24/7 flag. Calling Stop on an already-destroyed session is a no-op.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	s.teardownLocked(ctx)
	return nil
}

// teardownLocked releases everything the session owns and removes it from the
// manager. Safe to call once; destroyed guards re-entry.
func (s *Session) teardownLocked(ctx context.Context) {
	s.idle.Cancel()
	s.blast.Cancel()
	s.queue = nil
	s.current = nil
	s.paused = false
	s.destroyed = true
	if s.voice != nil {
		if err := s.voice.Disconnect(ctx); err != nil {
			log.Printf("[Session %s] Disconnect failed: %v", s.GuildID, err)
		}
	}
	s.mgr.remove(s.GuildID)
}

// SetVolume clamps v into [0, MaxVolume], forwards it to the audio node and
// records the attempted value. A node-side rejection is logged and otherwise
// ignored: volume is cosmetic and the stored value reflects what was asked
// for, not necessarily what was applied.
func (s *Session) SetVolume(ctx context.Context, v int) int {
	v = clampVolume(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
	if s.destroyed {
		return v
	}
	if err := s.voice.SetVolume(ctx, v); err != nil {
		log.Printf("[Session %s] Node rejected volume %d: %v", s.GuildID, v, err)
	}
	return v
}

// Volume returns the last attempted volume.
func (s *Session) Volume() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Blast temporarily amplifies the volume to BlastVolume for d, then restores
// the volume that was set when the window opened. The restoration is
// unconditional: a manual volume change during the window is overwritten when
// the timer fires (last-writer-wins, matching the confirmed product
// behavior). The window is capped at BlastMaxDuration.
func (s *Session) Blast(ctx context.Context, d time.Duration) time.Duration {
	if d <= 0 {
		d = BlastDefaultDuration
	}
	if d > BlastMaxDuration {
		d = BlastMaxDuration
	}

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return 0
	}
	s.prevVolume = s.volume
	s.volume = BlastVolume
	if err := s.voice.SetVolume(ctx, BlastVolume); err != nil {
		log.Printf("[Session %s] Node rejected blast volume: %v", s.GuildID, err)
	}
	s.mu.Unlock()

	s.blast.Arm(d, s.blastElapsed)
	return d
}

// blastElapsed restores the pre-blast volume after the window closes.
func (s *Session) blastElapsed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.volume = s.prevVolume
	if err := s.voice.SetVolume(context.Background(), s.volume); err != nil {
		log.Printf("[Session %s] Failed to restore volume: %v", s.GuildID, err)
	}
	s.mgr.notify.VolumeRestored(s.GuildID, s.textChannelID, s.volume)
}

// SetLoop changes the loop mode.
func (s *Session) SetLoop(m LoopMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loopMode = m
}

// Loop returns the current loop mode.
func (s *Session) Loop() LoopMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loopMode
}

// Shuffle randomizes the order of the queued tracks.
func (s *Session) Shuffle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	rand.Shuffle(len(s.queue), func(i, j int) {
		s.queue[i], s.queue[j] = s.queue[j], s.queue[i]
	})
}

// ClearQueue drops all queued tracks without touching the current one.
func (s *Session) ClearQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = nil
}

// Queue returns a snapshot of the queued tracks.
func (s *Session) Queue() []Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Track, len(s.queue))
	copy(out, s.queue)
	return out
}

// Current returns a copy of the currently streaming track, if any.
func (s *Session) Current() (Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Track{}, false
	}
	return *s.current, true
}

// SetTextChannel updates where status messages are posted.
func (s *Session) SetTextChannel(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textChannelID = channelID
}

// TextChannel returns the current text target.
func (s *Session) TextChannel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textChannelID
}

// Destroyed reports whether the session has been torn down.
func (s *Session) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// IdleArmed reports whether the idle-disconnect timer is pending.
func (s *Session) IdleArmed() bool {
	return s.idle.Armed()
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxVolume {
		return MaxVolume
	}
	return v
}
