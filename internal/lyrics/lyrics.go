package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"karolbroda.com/kantabile/internal/cache"
	"karolbroda.com/kantabile/internal/config"
)

var (
	httpClient     *http.Client
	httpClientOnce sync.Once
)

// lookupCache resolves the cache Fetch consults; tests swap it for an
// isolated in-memory cache.
var lookupCache = cache.GetGlobalCache

type SearchResult struct {
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

type TrackParams struct {
	Title        string
	Artist       string
	Album        string
	DurationSecs int64
}

func getHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		transport := &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   2 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     60 * time.Second,
			TLSHandshakeTimeout: 2 * time.Second,
		}
		httpClient = &http.Client{
			Transport: transport,
			Timeout:   time.Duration(config.HTTPTimeoutSeconds) * time.Second,
		}
	})
	return httpClient
}

// normalizeString cleans and normalizes track/artist names for better matching
func normalizeString(s string) string {
	s = strings.TrimSpace(s)

	// remove multiple spaces
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}

	s = strings.TrimSpace(s)
	return s
}

// stripVersionInfo removes text in parentheses and brackets (remixes, versions, etc)
func stripVersionInfo(s string) string {
	s = strings.TrimSpace(s)

	// remove content within parentheses
	for strings.Contains(s, "(") && strings.Contains(s, ")") {
		start := strings.Index(s, "(")
		end := strings.Index(s, ")")
		if end > start {
			s = s[:start] + " " + s[end+1:]
		} else {
			break
		}
	}

	// remove content within brackets
	for strings.Contains(s, "[") && strings.Contains(s, "]") {
		start := strings.Index(s, "[")
		end := strings.Index(s, "]")
		if end > start {
			s = s[:start] + " " + s[end+1:]
		} else {
			break
		}
	}

	// remove multiple spaces
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}

	s = strings.TrimSpace(s)
	return s
}

// Fetch looks up lyrics for a track, disk cache first, then the lrclib search
// endpoint with progressively looser queries.
func Fetch(parentCtx context.Context, baseURL string, track *TrackParams) (*SearchResult, error) {
	if track == nil {
		return nil, errors.New("nil track info")
	}
	if track.Title == "" || track.Artist == "" {
		return nil, errors.New("track title or artist is empty")
	}
	if baseURL == "" {
		return nil, errors.New("lrclib base url is empty")
	}

	diskCache := lookupCache()

	// normalize input for better matching
	normalizedArtist := normalizeString(track.Artist)
	normalizedTitle := normalizeString(track.Title)
	strippedArtist := stripVersionInfo(track.Artist)
	strippedTitle := stripVersionInfo(track.Title)

	if normalizedTitle == "" || normalizedArtist == "" {
		return nil, errors.New("track title or artist is empty after normalization")
	}

	// check persistent cache first (use original values for cache key)
	cached, err := diskCache.Get(track.Artist, track.Title)
	if err == nil && cached != nil {
		return &SearchResult{
			TrackName:    cached.TrackName,
			ArtistName:   cached.ArtistName,
			AlbumName:    cached.AlbumName,
			Duration:     cached.Duration,
			Instrumental: cached.Instrumental,
			PlainLyrics:  cached.PlainLyrics,
			SyncedLyrics: cached.SyncedLyrics,
		}, nil
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid lrclib url %q: %w", baseURL, err)
	}

	// build unique search strategies
	searchStrategies := []struct {
		artist   string
		title    string
		album    string
		duration int64
	}{
		// strategy 1: normalized names with album and duration
		{normalizedArtist, normalizedTitle, track.Album, track.DurationSecs},
		// strategy 2: normalized names without album
		{normalizedArtist, normalizedTitle, "", track.DurationSecs},
		// strategy 3: normalized names without album or duration
		{normalizedArtist, normalizedTitle, "", 0},
		// strategy 4: stripped version info (no parens/brackets)
		{strippedArtist, strippedTitle, "", 0},
		// strategy 5: original names (fallback)
		{track.Artist, track.Title, "", 0},
	}

	// deduplicate strategies
	seen := make(map[string]bool)
	var uniqueStrategies []struct {
		artist   string
		title    string
		album    string
		duration int64
	}

	for _, strategy := range searchStrategies {
		if strategy.artist == "" || strategy.title == "" {
			continue
		}

		key := fmt.Sprintf("%s|%s|%s|%d", strategy.artist, strategy.title, strategy.album, strategy.duration)
		if !seen[key] {
			seen[key] = true
			uniqueStrategies = append(uniqueStrategies, strategy)
		}
	}

	var lastErr error
	for strategyIdx, strategy := range uniqueStrategies {

		query := parsedURL.Query()
		query.Set("artist_name", strategy.artist)
		query.Set("track_name", strategy.title)
		if strategy.album != "" {
			query.Set("album_name", strategy.album)
		}
		if strategy.duration > 0 {
			query.Set("duration", fmt.Sprintf("%d", strategy.duration))
		}
		parsedURL.RawQuery = query.Encode()

		// add small delay between strategies to avoid hammering the server
		if strategyIdx > 0 {
			select {
			case <-parentCtx.Done():
				return nil, parentCtx.Err()
			case <-time.After(100 * time.Millisecond):
			}
		}

		results, err := doSearchRequest(parentCtx, parsedURL.String())
		if err == nil {
			payload := pickResult(results)
			if payload == nil {
				lastErr = fmt.Errorf("no usable lyrics in response")
				continue
			}

			// found lyrics! persist to disk cache using original keys
			_ = diskCache.Set(track.Artist, track.Title, &cache.Entry{
				TrackName:    payload.TrackName,
				ArtistName:   payload.ArtistName,
				AlbumName:    payload.AlbumName,
				Duration:     payload.Duration,
				Instrumental: payload.Instrumental,
				PlainLyrics:  payload.PlainLyrics,
				SyncedLyrics: payload.SyncedLyrics,
			})

			return payload, nil
		}

		lastErr = err

		// only give up immediately on actual network timeouts
		if isTimeoutError(err) {
			return nil, errors.New("lyrics server took too long to respond")
		}
	}

	// all strategies failed
	if lastErr != nil {
		return nil, fmt.Errorf("no lyrics found for %s - %s: %w", track.Artist, track.Title, lastErr)
	}
	return nil, fmt.Errorf("no lyrics found for %s - %s (tried multiple search variations)", track.Artist, track.Title)
}

// pickResult prefers the first result carrying synced lyrics, then the first
// with anything usable at all.
func pickResult(results []SearchResult) *SearchResult {
	for i := range results {
		if results[i].SyncedLyrics != "" {
			return &results[i]
		}
	}
	for i := range results {
		if results[i].PlainLyrics != "" || results[i].Instrumental {
			return &results[i]
		}
	}
	return nil
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(err.Error(), "timeout") ||
		strings.Contains(err.Error(), "deadline exceeded") ||
		strings.Contains(err.Error(), "i/o timeout")
}

func doSearchRequest(parentCtx context.Context, requestURL string) ([]SearchResult, error) {
	timeout := time.Duration(config.HTTPTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(parentCtx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build http request: %w", err)
	}

	req.Header.Set("User-Agent", "kantabile/1.0")

	client := getHTTPClient()
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("status 404: lyrics not found")
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("lrclib returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read lrclib response: %w", err)
	}

	var results []SearchResult
	err = json.Unmarshal(body, &results)
	if err != nil {
		return nil, fmt.Errorf("failed to decode lrclib json: %w", err)
	}

	if len(results) == 0 {
		return nil, errors.New("empty search result")
	}

	return results, nil
}
