package lavalink

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/kkdai/youtube/v2"

	"tunelink/internal/music/session"
)

// playlistExpandLimit bounds how many entries a pre-expanded playlist
// contributes to the queue.
const playlistExpandLimit = 100

// Resolve turns a user query into playable tracks. URLs are loaded directly;
// anything else goes through a YouTube search where the first hit wins. A
// playlist yields every entry, with a client-side expansion fallback for
// playlist URLs the node refuses to load.
func (c *Client) Resolve(ctx context.Context, query string) ([]session.Track, error) {
	identifier := query
	if !isURL(query) {
		identifier = "ytsearch:" + query
	}

	result, err := c.link.BestNode().LoadTracks(ctx, identifier)
	if err != nil {
		return nil, &session.ResolveError{Query: query, Err: err}
	}

	switch data := result.Data.(type) {
	case lavalink.Track:
		return []session.Track{convertTrack(data)}, nil
	case lavalink.Playlist:
		tracks := make([]session.Track, 0, len(data.Tracks))
		for _, t := range data.Tracks {
			tracks = append(tracks, convertTrack(t))
		}
		return tracks, nil
	case lavalink.Search:
		if len(data) == 0 {
			return nil, nil
		}
		return []session.Track{convertTrack(data[0])}, nil
	case lavalink.Empty:
		if isPlaylistURL(query) {
			return c.expandPlaylist(ctx, query)
		}
		return nil, nil
	case lavalink.Exception:
		return nil, &session.ResolveError{Query: query, Err: fmt.Errorf("node: %s", data.Message)}
	default:
		return nil, &session.ResolveError{Query: query, Err: fmt.Errorf("unexpected load result %T", data)}
	}
}

// expandPlaylist fetches the playlist metadata client-side and loads each
// entry through the node individually. Entries the node cannot load are
// skipped rather than failing the whole playlist.
func (c *Client) expandPlaylist(ctx context.Context, playlistURL string) ([]session.Track, error) {
	yt := youtube.Client{}
	pl, err := yt.GetPlaylistContext(ctx, playlistURL)
	if err != nil {
		return nil, &session.ResolveError{Query: playlistURL, Err: fmt.Errorf("playlist expand: %w", err)}
	}

	var tracks []session.Track
	for _, entry := range pl.Videos {
		if len(tracks) >= playlistExpandLimit {
			break
		}
		watchURL := "https://www.youtube.com/watch?v=" + entry.ID
		result, err := c.link.BestNode().LoadTracks(ctx, watchURL)
		if err != nil {
			log.Printf("[WARN] Playlist entry %q failed to load: %v", entry.Title, err)
			continue
		}
		t, ok := result.Data.(lavalink.Track)
		if !ok {
			continue
		}
		tracks = append(tracks, convertTrack(t))
	}
	if len(tracks) == 0 {
		return nil, &session.ResolveError{Query: playlistURL, Err: fmt.Errorf("no loadable entries in playlist")}
	}
	return tracks, nil
}

func convertTrack(t lavalink.Track) session.Track {
	track := session.Track{
		Title:    t.Info.Title,
		Author:   t.Info.Author,
		Duration: time.Duration(t.Info.Length.Milliseconds()) * time.Millisecond,
		Encoded:  t.Encoded,
	}
	if t.Info.URI != nil {
		track.URI = *t.Info.URI
	}
	if t.Info.ArtworkURL != nil {
		track.Thumbnail = *t.Info.ArtworkURL
	}
	if t.Info.IsStream {
		track.Duration = 0
	}
	return track
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isPlaylistURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(u.Host, "www.")
	if host != "youtube.com" && host != "music.youtube.com" && host != "youtu.be" {
		return false
	}
	return u.Query().Get("list") != ""
}
