package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"ytprep/internal/cache"
	"ytprep/internal/config"
	"ytprep/internal/llm"
	"ytprep/internal/subtitle"
	"ytprep/internal/youtube"
	"ytprep/pkg/log"
)

// Pipeline sequences fetch, normalize and assemble for one video per
// invocation. All external state comes in through the constructor.
type Pipeline struct {
	store     *cache.Store
	fetcher   youtube.Fetcher
	completer Completer
	group     singleflight.Group
}

// New builds a pipeline from configuration, wiring the YouTube client
// and, when an API key is configured, the LLM client.
func New(cfg *config.Config) (*Pipeline, error) {
	var completer Completer
	if cfg.LLM.Configured() {
		client, err := llm.NewClient(&llm.Config{
			APIKey:      cfg.LLM.APIKey,
			APIURL:      cfg.LLM.APIURL,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
			SiteURL:     cfg.LLM.SiteURL,
			AppName:     cfg.LLM.AppName,
		})
		if err != nil {
			return nil, WrapError(err, ErrUnknown, "failed to create LLM client")
		}
		completer = client
	}

	fetcher := youtube.NewClient(time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second)

	return NewWithComponents(cache.NewStore(cfg.Cache.Dir), fetcher, completer), nil
}

// NewWithComponents builds a pipeline with explicit collaborators
func NewWithComponents(store *cache.Store, fetcher youtube.Fetcher, completer Completer) *Pipeline {
	return &Pipeline{
		store:     store,
		fetcher:   fetcher,
		completer: completer,
	}
}

// Process runs the pipeline for a video URL or bare id. Duplicate
// in-process calls for the same video id collapse into one run.
func (p *Pipeline) Process(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	videoID, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return nil, WrapError(err, ErrInvalidInput, "could not extract video id")
	}

	v, err, _ := p.group.Do(videoID, func() (any, error) {
		return p.process(ctx, videoID, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (p *Pipeline) process(ctx context.Context, videoID string, opts Options) (*Result, error) {
	if !opts.Force && p.store.HasValidEntry(videoID) {
		record, err := p.store.ReadEntry(videoID)
		if err == nil {
			log.Info("Cache hit for video %s", videoID)
			return p.result(record, true), nil
		}
		// an entry that turned invalid between the check and the read
		// is regenerated like a miss
		log.Warn("Cache entry for video %s unreadable, regenerating: %v", videoID, err)
	}

	log.Info("Fetching metadata for video %s", videoID)
	video, err := p.fetcher.FetchVideo(ctx, videoID)
	if err != nil {
		return nil, WrapError(err, ErrFetch, "failed to fetch video metadata").WithVideoID(videoID)
	}

	track, err := youtube.SelectTrack(video.Tracks)
	if err != nil {
		if errors.Is(err, youtube.ErrNoEnglishTrack) {
			return nil, WrapError(err, ErrNoSubtitles, "no English subtitle track").WithVideoID(videoID)
		}
		return nil, WrapError(err, ErrFetch, "failed to select caption track").WithVideoID(videoID)
	}
	log.Info("Selected %s caption track %q for video %s", track.Origin(), track.VssID, videoID)

	rawVTT, err := p.fetcher.DownloadTrack(ctx, track)
	if err != nil {
		return nil, WrapError(err, ErrFetch, "failed to download caption track").WithVideoID(videoID)
	}

	cues, err := subtitle.ParseVTT(strings.NewReader(rawVTT))
	if err != nil {
		return nil, WrapError(err, ErrNoSubtitles, "caption track is not usable").WithVideoID(videoID)
	}

	flattened := subtitle.Flatten(cues)
	if flattened == "" {
		return nil, NewError(ErrNoSubtitles, "caption track contains no text").WithVideoID(videoID)
	}

	if lang := subtitle.DetectLanguage(cues); !isEnglishTag(lang) {
		log.Warn("Track for video %s claims English but reads as %s", videoID, lang)
	}

	prompt := LoadPrompt(opts.Prompt)

	record := &cache.Record{
		VideoID:       videoID,
		Title:         video.Title,
		Uploader:      video.Uploader,
		Channel:       video.Channel,
		Description:   video.Description,
		RawSubtitles:  rawVTT,
		FlatSubtitles: flattened,
		Prompt:        prompt,
		Final:         BuildFinalText(video, track.Origin(), flattened, prompt),
	}

	if p.completer != nil && !opts.SkipCompletion {
		response, err := p.complete(ctx, record.Final)
		if err != nil {
			log.Warn("Completion failed for video %s: %v", videoID, err)
		}
		record.Response = response
	}

	if err := p.store.WriteEntry(videoID, record); err != nil {
		return nil, WrapError(err, ErrWrite, "failed to write cache entry").WithVideoID(videoID)
	}

	return p.result(record, false), nil
}

// complete runs the title-rewrite call. A completion failure does not
// fail the run: the fallback text is stored in the response artifact
// and the typed error is returned for logging only.
func (p *Pipeline) complete(ctx context.Context, finalText string) (string, error) {
	response, err := p.completer.SimpleChat(ctx, finalText, "")
	if err != nil {
		return "Error querying LLM: " + err.Error(), WrapError(err, ErrCompletion, "title rewrite failed")
	}
	return response, nil
}

func (p *Pipeline) result(record *cache.Record, fromCache bool) *Result {
	return &Result{
		VideoID:   record.VideoID,
		CacheDir:  p.store.EntryDir(record.VideoID),
		Files:     p.store.ArtifactPaths(record.VideoID),
		FromCache: fromCache,
		FinalText: record.Final,
		Response:  record.Response,
	}
}

func isEnglishTag(tag language.Tag) bool {
	base, conf := tag.Base()
	return conf != language.No && base.String() == "en"
}
