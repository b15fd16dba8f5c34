package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInVoice is returned when the requesting user has no voice channel.
	ErrNotInVoice = errors.New("user is not connected to a voice channel")
	// ErrNoResults is returned when a query resolves to zero tracks.
	ErrNoResults = errors.New("no tracks found")
	// ErrNoSession is returned when an operation targets a guild without a live session.
	ErrNoSession = errors.New("no active music session for this guild")
	// ErrNothingPlaying is returned by operations that need a current track.
	ErrNothingPlaying = errors.New("no track is currently playing")
)

// GatewayError wraps a voice join/connect failure from the voice gateway.
// It is surfaced to the caller once and never retried automatically.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string { return fmt.Sprintf("voice gateway: %v", e.Err) }
func (e *GatewayError) Unwrap() error { return e.Err }

// ResolveError wraps a failure of the track resolver itself (as opposed to a
// clean empty result, which is ErrNoResults).
type ResolveError struct {
	Query string
	Err   error
}

func (e *ResolveError) Error() string { return fmt.Sprintf("resolve %q: %v", e.Query, e.Err) }
func (e *ResolveError) Unwrap() error { return e.Err }
