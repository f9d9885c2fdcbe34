package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytprep/internal/cache"
	"ytprep/internal/youtube"
)

const testVideoID = "dQw4w9WgXcQ"

// testVTT carries the rolling-caption duplication that the flattener
// must suppress: the second cue repeats the first cue's text.
const testVTT = "WEBVTT\n" +
	"Kind: captions\n" +
	"Language: en\n" +
	"\n" +
	"00:00:00.000 --> 00:00:02.000\n" +
	"Hello\n" +
	"\n" +
	"00:00:01.000 --> 00:00:03.000\n" +
	"Hello\n" +
	"\n" +
	"00:00:03.000 --> 00:00:05.000\n" +
	"World\n"

type fakeFetcher struct {
	video         *youtube.Video
	vtt           string
	fetchErr      error
	downloadErr   error
	fetchCalls    int
	downloadCalls int
}

func (f *fakeFetcher) FetchVideo(ctx context.Context, videoID string) (*youtube.Video, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.video, nil
}

func (f *fakeFetcher) DownloadTrack(ctx context.Context, track youtube.CaptionTrack) (string, error) {
	f.downloadCalls++
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	return f.vtt, nil
}

type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) SimpleChat(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testVideo() *youtube.Video {
	return &youtube.Video{
		ID:          testVideoID,
		Title:       "Some video",
		Uploader:    "Some uploader",
		Channel:     "@somechannel",
		Description: "What the video is about.",
		Tracks: []youtube.CaptionTrack{
			{BaseURL: "https://captions.example/en", LanguageCode: "en", VssID: ".en"},
		},
	}
}

func newTestPipeline(t *testing.T, fetcher *fakeFetcher, completer Completer) (*Pipeline, *cache.Store) {
	t.Helper()
	store := cache.NewStore(t.TempDir())
	return NewWithComponents(store, fetcher, completer), store
}

func TestProcessSuccess(t *testing.T) {
	fetcher := &fakeFetcher{video: testVideo(), vtt: testVTT}
	p, store := newTestPipeline(t, fetcher, nil)

	result, err := p.Process(context.Background(), "https://www.youtube.com/watch?v="+testVideoID, Options{Prompt: "Suggest titles."})
	require.NoError(t, err)

	assert.Equal(t, testVideoID, result.VideoID)
	assert.False(t, result.FromCache)
	assert.True(t, store.HasValidEntry(testVideoID))

	record, err := store.ReadEntry(testVideoID)
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld", record.FlatSubtitles)
	assert.Equal(t, testVTT, record.RawSubtitles)

	want := "Suggest titles.\n" +
		"\n" +
		"Title: Some video\n" +
		"Uploader: Some uploader\n" +
		"Channel: @somechannel\n" +
		"Description:\n" +
		"What the video is about.\n" +
		"\n" +
		"Subtitles (Human):\n" +
		"Hello\nWorld"
	assert.Equal(t, want, record.Final)
	assert.Equal(t, want, result.FinalText)

	for _, key := range []string{"title", "uploader", "channel", "description", "subtitles_raw", "subtitles_flat", "prompt", "final"} {
		assert.Contains(t, result.Files, key)
	}
	assert.NotContains(t, result.Files, "response")
}

func TestProcessCacheHitIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{video: testVideo(), vtt: testVTT}
	p, store := newTestPipeline(t, fetcher, nil)

	first, err := p.Process(context.Background(), testVideoID, Options{Prompt: "Suggest titles."})
	require.NoError(t, err)

	firstFinal, err := os.ReadFile(filepath.Join(store.EntryDir(testVideoID), cache.ArtifactFinal))
	require.NoError(t, err)

	second, err := p.Process(context.Background(), testVideoID, Options{Prompt: "Suggest titles."})
	require.NoError(t, err)

	secondFinal, err := os.ReadFile(filepath.Join(store.EntryDir(testVideoID), cache.ArtifactFinal))
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.fetchCalls, "second run must not hit the network")
	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, firstFinal, secondFinal, "cache hit must reproduce byte-identical final.txt")
	assert.Equal(t, first.FinalText, second.FinalText)
}

func TestProcessForceRefreshRefetches(t *testing.T) {
	fetcher := &fakeFetcher{video: testVideo(), vtt: testVTT}
	p, store := newTestPipeline(t, fetcher, nil)

	_, err := p.Process(context.Background(), testVideoID, Options{Prompt: "x"})
	require.NoError(t, err)
	require.True(t, store.HasValidEntry(testVideoID))

	result, err := p.Process(context.Background(), testVideoID, Options{Prompt: "x", Force: true})
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.fetchCalls, "force must re-invoke the fetch path")
	assert.False(t, result.FromCache)
}

func TestProcessNoEnglishTrack(t *testing.T) {
	video := testVideo()
	video.Tracks = []youtube.CaptionTrack{
		{BaseURL: "https://captions.example/fr", LanguageCode: "fr", VssID: ".fr"},
	}
	fetcher := &fakeFetcher{video: video, vtt: testVTT}
	p, store := newTestPipeline(t, fetcher, nil)

	_, err := p.Process(context.Background(), testVideoID, Options{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrNoSubtitles))
	assert.Equal(t, ExitNoSubtitles, ExitCode(err))
	assert.False(t, store.HasValidEntry(testVideoID))
	assert.Equal(t, 0, fetcher.downloadCalls)
}

func TestProcessMalformedURL(t *testing.T) {
	fetcher := &fakeFetcher{video: testVideo(), vtt: testVTT}
	p, _ := newTestPipeline(t, fetcher, nil)

	_, err := p.Process(context.Background(), "https://example.com/not-a-video", Options{})
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrInvalidInput))
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Equal(t, 0, fetcher.fetchCalls, "invalid input must fail before any network call")
}

func TestProcessFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{fetchErr: errors.New("connection refused")}
	p, store := newTestPipeline(t, fetcher, nil)

	_, err := p.Process(context.Background(), testVideoID, Options{})
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrFetch))
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.False(t, store.HasValidEntry(testVideoID))
}

func TestProcessUnusableTrack(t *testing.T) {
	fetcher := &fakeFetcher{video: testVideo(), vtt: "this is not vtt"}
	p, _ := newTestPipeline(t, fetcher, nil)

	_, err := p.Process(context.Background(), testVideoID, Options{})
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrNoSubtitles))
	assert.Equal(t, ExitNoSubtitles, ExitCode(err))
}

func TestProcessCompletionSaved(t *testing.T) {
	fetcher := &fakeFetcher{video: testVideo(), vtt: testVTT}
	completer := &fakeCompleter{response: "1. A calmer title"}
	p, store := newTestPipeline(t, fetcher, completer)

	result, err := p.Process(context.Background(), testVideoID, Options{Prompt: "x"})
	require.NoError(t, err)

	assert.Equal(t, 1, completer.calls)
	assert.Equal(t, "1. A calmer title", result.Response)
	assert.Contains(t, result.Files, "response")

	record, err := store.ReadEntry(testVideoID)
	require.NoError(t, err)
	assert.Equal(t, "1. A calmer title", record.Response)
}

func TestProcessCompletionFailureStillSucceeds(t *testing.T) {
	fetcher := &fakeFetcher{video: testVideo(), vtt: testVTT}
	completer := &fakeCompleter{err: errors.New("quota exceeded")}
	p, store := newTestPipeline(t, fetcher, completer)

	result, err := p.Process(context.Background(), testVideoID, Options{Prompt: "x"})
	require.NoError(t, err)

	assert.Contains(t, result.Response, "Error querying LLM")
	assert.Contains(t, result.Response, "quota exceeded")
	assert.True(t, store.HasValidEntry(testVideoID))
}

func TestCompleteFailureIsTypedAndKeepsFallbackText(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("quota exceeded")}
	p, _ := newTestPipeline(t, &fakeFetcher{}, completer)

	response, err := p.complete(context.Background(), "final text")
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrCompletion))
	assert.Equal(t, "Error querying LLM: quota exceeded", response)

	completer = &fakeCompleter{response: "1. A calmer title"}
	p, _ = newTestPipeline(t, &fakeFetcher{}, completer)
	response, err = p.complete(context.Background(), "final text")
	require.NoError(t, err)
	assert.Equal(t, "1. A calmer title", response)
}

func TestProcessSkipCompletion(t *testing.T) {
	fetcher := &fakeFetcher{video: testVideo(), vtt: testVTT}
	completer := &fakeCompleter{response: "unused"}
	p, _ := newTestPipeline(t, fetcher, completer)

	result, err := p.Process(context.Background(), testVideoID, Options{Prompt: "x", SkipCompletion: true})
	require.NoError(t, err)

	assert.Equal(t, 0, completer.calls)
	assert.Empty(t, result.Response)
}

func TestProcessPartialCacheEntryRegenerates(t *testing.T) {
	fetcher := &fakeFetcher{video: testVideo(), vtt: testVTT}
	p, store := newTestPipeline(t, fetcher, nil)

	// simulate a crashed prior attempt
	dir := store.EntryDir(testVideoID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, cache.ArtifactTitle), []byte("stale"), 0o644))

	result, err := p.Process(context.Background(), testVideoID, Options{Prompt: "x"})
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.fetchCalls, "partial entry must trigger regeneration")
	assert.False(t, result.FromCache)
	assert.True(t, store.HasValidEntry(testVideoID))
}

func TestProcessWriteFailure(t *testing.T) {
	// cache root path collides with an existing file, so entry
	// promotion cannot succeed
	rootFile := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.WriteFile(rootFile, []byte("x"), 0o644))

	fetcher := &fakeFetcher{video: testVideo(), vtt: testVTT}
	p := NewWithComponents(cache.NewStore(rootFile), fetcher, nil)

	_, err := p.Process(context.Background(), testVideoID, Options{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrWrite))
	assert.Equal(t, ExitFailure, ExitCode(err))
}
