package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Fixed artifact filenames inside a cache entry directory
const (
	ArtifactTitle         = "title.txt"
	ArtifactUploader      = "uploader.txt"
	ArtifactChannel       = "channel.txt"
	ArtifactDescription   = "description.txt"
	ArtifactRawSubtitles  = "subtitles_raw.vtt"
	ArtifactFlatSubtitles = "subtitles_flat.txt"
	ArtifactPrompt        = "prompt.txt"
	ArtifactFinal         = "final.txt"
	ArtifactResponse      = "response.txt"
)

// requiredArtifacts are always written; uploader, channel and response
// are optional. ArtifactFinal is last so its presence signals a
// complete entry.
var requiredArtifacts = []string{
	ArtifactTitle,
	ArtifactDescription,
	ArtifactRawSubtitles,
	ArtifactFlatSubtitles,
	ArtifactPrompt,
	ArtifactFinal,
}

// ErrNotFound is returned when no valid cache entry exists for a video id
var ErrNotFound = errors.New("cache entry not found")

// Record is the full artifact set for one video. Immutable once
// written; a forced refresh overwrites it wholesale.
type Record struct {
	VideoID       string
	Title         string
	Uploader      string // optional
	Channel       string // optional
	Description   string
	RawSubtitles  string
	FlatSubtitles string
	Prompt        string
	Final         string
	Response      string // optional LLM response
}

// Store maps video ids to artifact directories under a root directory
type Store struct {
	root string
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// EntryDir returns the directory holding the artifacts of a video id
func (s *Store) EntryDir(videoID string) string {
	return filepath.Join(s.root, videoID)
}

// HasValidEntry reports whether every required artifact exists and is
// non-empty. A partially-written prior attempt counts as invalid.
func (s *Store) HasValidEntry(videoID string) bool {
	dir := s.EntryDir(videoID)
	for _, name := range requiredArtifacts {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.Size() == 0 {
			return false
		}
	}
	return true
}

// ReadEntry loads the cached record for a video id, or ErrNotFound if
// no valid entry exists.
func (s *Store) ReadEntry(videoID string) (*Record, error) {
	if !s.HasValidEntry(videoID) {
		return nil, ErrNotFound
	}

	dir := s.EntryDir(videoID)
	record := &Record{VideoID: videoID}

	fields := map[string]*string{
		ArtifactTitle:         &record.Title,
		ArtifactDescription:   &record.Description,
		ArtifactRawSubtitles:  &record.RawSubtitles,
		ArtifactFlatSubtitles: &record.FlatSubtitles,
		ArtifactPrompt:        &record.Prompt,
		ArtifactFinal:         &record.Final,
	}
	for name, field := range fields {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read artifact %s: %w", name, err)
		}
		*field = string(data)
	}

	// optional artifacts
	optional := map[string]*string{
		ArtifactUploader: &record.Uploader,
		ArtifactChannel:  &record.Channel,
		ArtifactResponse: &record.Response,
	}
	for name, field := range optional {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			*field = string(data)
		}
	}

	return record, nil
}

// WriteEntry persists the full artifact set for a video id. Artifacts
// are written into a temporary directory that is promoted into place
// with a rename, so an interrupted write never leaves an entry that
// HasValidEntry would accept.
func (s *Store) WriteEntry(videoID string, record *Record) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create cache root: %w", err)
	}

	tmpDir := filepath.Join(s.root, fmt.Sprintf(".%s.tmp-%s", videoID, uuid.NewString()))
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return fmt.Errorf("failed to create temp entry dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	artifacts := []struct {
		name     string
		content  string
		optional bool
	}{
		{ArtifactTitle, record.Title, false},
		{ArtifactUploader, record.Uploader, true},
		{ArtifactChannel, record.Channel, true},
		{ArtifactDescription, record.Description, false},
		{ArtifactRawSubtitles, record.RawSubtitles, false},
		{ArtifactFlatSubtitles, record.FlatSubtitles, false},
		{ArtifactPrompt, record.Prompt, false},
		{ArtifactResponse, record.Response, true},
		// final last: its presence is the completeness signal
		{ArtifactFinal, record.Final, false},
	}

	for _, a := range artifacts {
		if a.optional && a.content == "" {
			continue
		}
		path := filepath.Join(tmpDir, a.name)
		if err := os.WriteFile(path, []byte(a.content), 0o644); err != nil {
			return fmt.Errorf("failed to write artifact %s: %w", a.name, err)
		}
	}

	entryDir := s.EntryDir(videoID)
	if err := os.RemoveAll(entryDir); err != nil {
		return fmt.Errorf("failed to clear previous entry: %w", err)
	}
	if err := os.Rename(tmpDir, entryDir); err != nil {
		return fmt.Errorf("failed to promote entry: %w", err)
	}

	return nil
}

// ArtifactPaths returns the artifact-name to path mapping for an
// existing entry. Only artifacts present on disk are included.
func (s *Store) ArtifactPaths(videoID string) map[string]string {
	dir := s.EntryDir(videoID)

	names := map[string]string{
		"title":          ArtifactTitle,
		"uploader":       ArtifactUploader,
		"channel":        ArtifactChannel,
		"description":    ArtifactDescription,
		"subtitles_raw":  ArtifactRawSubtitles,
		"subtitles_flat": ArtifactFlatSubtitles,
		"prompt":         ArtifactPrompt,
		"final":          ArtifactFinal,
		"response":       ArtifactResponse,
	}

	paths := make(map[string]string, len(names))
	for key, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			paths[key] = path
		}
	}
	return paths
}
