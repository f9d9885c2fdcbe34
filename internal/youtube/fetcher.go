package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	kkdai "github.com/kkdai/youtube/v2"
)

// Fetcher is the interface for the external metadata/subtitle provider
type Fetcher interface {
	FetchVideo(ctx context.Context, videoID string) (*Video, error)
	DownloadTrack(ctx context.Context, track CaptionTrack) (string, error)
}

// Client fetches video metadata and caption tracks from YouTube
type Client struct {
	yt         kkdai.Client
	httpClient *http.Client
}

// NewClient creates a new YouTube client with the given request timeout
func NewClient(timeout time.Duration) *Client {
	httpClient := &http.Client{Timeout: timeout}
	return &Client{
		yt:         kkdai.Client{HTTPClient: httpClient},
		httpClient: httpClient,
	}
}

// FetchVideo retrieves title, uploader, channel, description and the
// available caption tracks for a video id.
func (c *Client) FetchVideo(ctx context.Context, videoID string) (*Video, error) {
	video, err := c.yt.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video %s: %w", videoID, err)
	}

	tracks := make([]CaptionTrack, 0, len(video.CaptionTracks))
	for _, t := range video.CaptionTracks {
		tracks = append(tracks, CaptionTrack{
			BaseURL:       t.BaseURL,
			Name:          t.Name.SimpleText,
			LanguageCode:  t.LanguageCode,
			VssID:         t.VssID,
			AutoGenerated: t.Kind == "asr",
		})
	}

	return &Video{
		ID:          videoID,
		Title:       video.Title,
		Uploader:    video.Author,
		Channel:     video.ChannelHandle,
		Description: video.Description,
		Tracks:      tracks,
	}, nil
}

// DownloadTrack fetches the raw caption track in WebVTT format
func (c *Client) DownloadTrack(ctx context.Context, track CaptionTrack) (string, error) {
	trackURL, err := url.Parse(track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid caption track URL: %w", err)
	}

	// the timedtext endpoint serves XML by default; ask for VTT
	query := trackURL.Query()
	query.Set("fmt", "vtt")
	trackURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create caption request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download caption track: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption download failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read caption track: %w", err)
	}

	return string(body), nil
}
