package pipeline

import (
	"os"
	"strings"

	"ytprep/internal/youtube"
)

// DefaultPrompt is used when no custom prompt is supplied and no
// prompt.txt exists in the working directory.
const DefaultPrompt = "You are given the transcript, title, uploader, channel, and description of a YouTube video.\n" +
	"Your task is to suggest three alternative titles for this video that are accurate, descriptive, and non-clickbait. " +
	"The titles should reflect the actual content of the video without exaggeration. " +
	"Each title should be a single sentence and under 100 characters."

// promptFileName is an optional prompt override in the working directory
const promptFileName = "prompt.txt"

// LoadPrompt resolves the prompt text for a run: an explicit override
// wins, then a prompt.txt in the working directory, then the built-in
// default.
func LoadPrompt(override string) string {
	if override != "" {
		return override
	}
	if data, err := os.ReadFile(promptFileName); err == nil && len(data) > 0 {
		return string(data)
	}
	return DefaultPrompt
}

// BuildFinalText assembles the consolidated final text from the video
// metadata, the flattened transcript and the prompt.
func BuildFinalText(video *youtube.Video, origin youtube.TrackOrigin, flattened, prompt string) string {
	lines := []string{prompt, ""}

	lines = append(lines, "Title: "+video.Title)

	if video.Uploader != "" {
		lines = append(lines, "Uploader: "+video.Uploader)
	}
	if video.Channel != "" {
		lines = append(lines, "Channel: "+video.Channel)
	}

	lines = append(lines, "Description:")
	lines = append(lines, video.Description)
	lines = append(lines, "")

	lines = append(lines, "Subtitles ("+originLabel(origin)+"):")
	lines = append(lines, flattened)

	return strings.Join(lines, "\n")
}

func originLabel(origin youtube.TrackOrigin) string {
	if origin == youtube.OriginHuman {
		return "Human"
	}
	return "Auto-generated"
}
