package session

import (
	"context"
	"log"
	"sync"
	"time"
)

// IdleTimeout is how long a session with nothing to play stays connected
// before disconnecting, unless the guild runs in 24/7 mode.
const IdleTimeout = 2 * time.Minute

// Manager owns one Session per guild and the shared collaborators they use.
type Manager struct {
	gateway  VoiceGateway
	resolver TrackResolver
	settings Settings
	notify   Notifier

	idleTimeout   time.Duration
	defaultVolume int

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager wires the playback collaborators together. defaultVolume is the
// fallback starting volume for guilds without a stored preference.
func NewManager(gateway VoiceGateway, resolver TrackResolver, settings Settings, notify Notifier, defaultVolume int) *Manager {
	return &Manager{
		gateway:       gateway,
		resolver:      resolver,
		settings:      settings,
		notify:        notify,
		idleTimeout:   IdleTimeout,
		defaultVolume: clampVolume(defaultVolume),
		sessions:      make(map[string]*Session),
	}
}

// CreateOrGet returns the guild's session, creating one by joining
// voiceChannelID if none exists. An empty voiceChannelID on creation means
// the invoking user is not in a voice channel. A gateway join failure is
// returned as a *GatewayError and no session is retained.
func (m *Manager) CreateOrGet(ctx context.Context, guildID, voiceChannelID, textChannelID string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[guildID]; ok {
		m.mu.Unlock()
		s.SetTextChannel(textChannelID)
		return s, nil
	}
	m.mu.Unlock()

	if voiceChannelID == "" {
		return nil, ErrNotInVoice
	}

	voice, err := m.gateway.Join(ctx, guildID, voiceChannelID)
	if err != nil {
		return nil, &GatewayError{Err: err}
	}

	s := &Session{
		GuildID:       guildID,
		mgr:           m,
		voice:         voice,
		textChannelID: textChannelID,
	}

	vol := m.settings.DefaultVolume(guildID)
	if vol <= 0 {
		vol = m.defaultVolume
	}
	s.volume = clampVolume(vol)
	if mode, err := ParseLoopMode(m.settings.DefaultLoop(guildID)); err == nil {
		s.loopMode = mode
	}
	if err := voice.SetVolume(ctx, s.volume); err != nil {
		log.Printf("[Session %s] Initial volume %d rejected: %v", guildID, s.volume, err)
	}

	m.mu.Lock()
	// A concurrent create may have won the race while we were joining.
	if existing, ok := m.sessions[guildID]; ok {
		m.mu.Unlock()
		if err := voice.Disconnect(ctx); err != nil {
			log.Printf("[Session %s] Duplicate join disconnect failed: %v", guildID, err)
		}
		existing.SetTextChannel(textChannelID)
		return existing, nil
	}
	m.sessions[guildID] = s
	m.mu.Unlock()

	log.Printf("[Session %s] Created | Volume=%d Loop=%s", guildID, s.volume, s.loopMode)
	return s, nil
}

// Get returns the guild's session or ErrNoSession.
func (m *Manager) Get(guildID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[guildID]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// HandleTrackEnd routes a completion event from the audio node to the guild's
// session. Events for guilds without a session are dropped.
func (m *Manager) HandleTrackEnd(guildID string, reason EndReason) {
	s, err := m.Get(guildID)
	if err != nil {
		return
	}
	s.TrackEnded(reason)
}

// ActiveSessions returns the number of live sessions.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown stops every session, disconnecting from all voice channels.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.Unlock()

	for _, s := range all {
		if err := s.Stop(ctx); err != nil {
			log.Printf("[Session %s] Shutdown stop failed: %v", s.GuildID, err)
		}
	}
}

func (m *Manager) remove(guildID string) {
	m.mu.Lock()
	delete(m.sessions, guildID)
	m.mu.Unlock()
}
