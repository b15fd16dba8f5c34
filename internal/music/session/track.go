package session

import (
	"fmt"
	"time"
)

// Track is an immutable descriptor of something the audio node can play.
// Encoded carries the node's opaque track payload; the resolver fills it for
// every entry it returns.
type Track struct {
	Title       string
	Author      string
	URI         string
	Duration    time.Duration
	Requester   string
	RequesterID string
	Thumbnail   string
	Encoded     string
}

// DurationString renders the track length as m:ss or h:mm:ss.
func (t Track) DurationString() string {
	total := int(t.Duration.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// LoopMode controls what happens when a track finishes.
type LoopMode int

const (
	LoopOff LoopMode = iota
	LoopTrack
	LoopQueue
)

func (m LoopMode) String() string {
	switch m {
	case LoopTrack:
		return "track"
	case LoopQueue:
		return "queue"
	default:
		return "off"
	}
}

// ParseLoopMode maps the textual mode to a LoopMode.
func ParseLoopMode(s string) (LoopMode, error) {
	switch s {
	case "off":
		return LoopOff, nil
	case "track":
		return LoopTrack, nil
	case "queue":
		return LoopQueue, nil
	default:
		return LoopOff, fmt.Errorf("unknown loop mode %q", s)
	}
}

// EndReason describes why the audio node reported a track as ended.
type EndReason string

const (
	EndFinished EndReason = "finished"
	EndStopped  EndReason = "stopped"
	EndFailed   EndReason = "loadFailed"
)
