package session

import "context"

// VoiceGateway establishes the audio transport to a voice channel.
type VoiceGateway interface {
	Join(ctx context.Context, guildID, channelID string) (VoiceHandle, error)
}

// VoiceHandle drives playback for one established voice connection. SetVolume
// is best-effort: the node may clamp or reject the value without the handle
// reporting it as a failure to the user.
type VoiceHandle interface {
	Play(ctx context.Context, t Track) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Stop(ctx context.Context) error
	SetVolume(ctx context.Context, percent int) error
	Disconnect(ctx context.Context) error
	Connected() bool
}

// TrackResolver turns a URL or search text into zero or more playable tracks.
// An empty result is reported as ErrNoResults.
type TrackResolver interface {
	Resolve(ctx context.Context, query string) ([]Track, error)
}

// Settings exposes the per-guild persisted configuration the orchestrator
// consults. AlwaysOn is re-read at idle-timer fire time, not cached.
type Settings interface {
	AlwaysOn(guildID string) bool
	DefaultVolume(guildID string) int
	DefaultLoop(guildID string) string
}

// Notifier posts status messages to a session's text target. Implementations
// must tolerate stale channel references (the channel may have been deleted).
type Notifier interface {
	NowPlaying(guildID, channelID string, t Track, queueLen int)
	IdleDisconnect(guildID, channelID string)
	VolumeRestored(guildID, channelID string, volume int)
}
