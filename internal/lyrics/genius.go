package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	defaultAPIBase = "https://api.genius.com"

	// EmbedChunkLimit is the largest lyrics block posted in one embed.
	EmbedChunkLimit = 4096
)

var ErrNotFound = errors.New("lyrics: no results")

// Song is a Genius search hit.
type Song struct {
	Title  string
	Artist string
	URL    string
}

// Client talks to the Genius API and scrapes lyrics from song pages.
// Requests are rate limited client-side; Genius throttles hard otherwise.
type Client struct {
	token   string
	apiBase string
	http    *http.Client
	limiter *rate.Limiter
}

func New(token string) *Client {
	return &Client{
		token:   token,
		apiBase: defaultAPIBase,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// Enabled reports whether a Genius token was configured.
func (c *Client) Enabled() bool {
	return c.token != ""
}

// Search returns the best matching song for query.
func (c *Client) Search(ctx context.Context, query string) (Song, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Song{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiBase+"/search?q="+url.QueryEscape(query), nil)
	if err != nil {
		return Song{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return Song{}, fmt.Errorf("genius search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Song{}, fmt.Errorf("genius search: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Response struct {
			Hits []struct {
				Result struct {
					Title         string `json:"title"`
					URL           string `json:"url"`
					PrimaryArtist struct {
						Name string `json:"name"`
					} `json:"primary_artist"`
				} `json:"result"`
			} `json:"hits"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Song{}, fmt.Errorf("genius search: decode: %w", err)
	}

	if len(body.Response.Hits) == 0 {
		return Song{}, ErrNotFound
	}
	hit := body.Response.Hits[0].Result
	return Song{
		Title:  hit.Title,
		Artist: hit.PrimaryArtist.Name,
		URL:    hit.URL,
	}, nil
}

// Lyrics finds the best match for query and returns its lyrics text.
func (c *Client) Lyrics(ctx context.Context, query string) (Song, string, error) {
	song, err := c.Search(ctx, query)
	if err != nil {
		return Song{}, "", err
	}

	text, err := c.fetchLyrics(ctx, song.URL)
	if err != nil {
		return song, "", err
	}
	return song, text, nil
}

// fetchLyrics scrapes the lyrics containers out of a Genius song page.
func (c *Client) fetchLyrics(ctx context.Context, pageURL string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("genius page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("genius page: unexpected status %d", resp.StatusCode)
	}

	text, err := extractLyrics(resp.Body)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNotFound
	}
	return text, nil
}

// extractLyrics walks the page and collects text under every
// data-lyrics-container element, turning <br> into newlines.
func extractLyrics(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	var sb strings.Builder
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "br" {
				sb.WriteString("\n")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isLyricsContainer(n) {
			collect(n)
			sb.WriteString("\n")
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return strings.TrimSpace(sb.String()), nil
}

func isLyricsContainer(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "data-lyrics-container" && attr.Val == "true" {
			return true
		}
	}
	return false
}

// Chunk splits text into pieces no longer than limit, preferring line
// boundaries. A single oversized line is hard-split.
func Chunk(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		addition := len(line)
		if current.Len() > 0 {
			addition++
		}
		if current.Len()+addition > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
