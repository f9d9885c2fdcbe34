package youtube

import (
	"fmt"
	"regexp"
)

// videoIDPatterns covers the common watch/short/embed URL forms
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?.*v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]{11})`),
}

var bareVideoIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ExtractVideoID extracts the 11-character video id from a YouTube URL.
// A bare video id is accepted as-is. No network access is involved.
func ExtractVideoID(raw string) (string, error) {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			return m[1], nil
		}
	}

	if bareVideoIDRe.MatchString(raw) {
		return raw, nil
	}

	return "", fmt.Errorf("could not extract video id from %q", raw)
}
