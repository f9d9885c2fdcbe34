package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// timingRe matches a WebVTT timing line such as
// "00:00:01.234 --> 00:00:03.456 align:start position:0%".
// The hours component is optional.
var timingRe = regexp.MustCompile(`^(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})\s+-->\s+(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})`)

// ParseVTT parses a WebVTT caption stream into cues ordered as they
// appear in the file. Cue identifiers, NOTE/STYLE/REGION blocks and
// cue settings are tolerated and discarded.
func ParseVTT(r io.Reader) ([]Cue, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read caption stream: %w", err)
		}
		return nil, fmt.Errorf("empty caption stream")
	}

	header := strings.TrimPrefix(strings.TrimSpace(scanner.Text()), "\uFEFF")
	if !strings.HasPrefix(header, "WEBVTT") {
		return nil, fmt.Errorf("not a WebVTT stream: %q", header)
	}

	var cues []Cue
	currentCue := Cue{}
	state := "header" // possible values: "header", "id", "text", "skip"
	var textLines []string

	flush := func() {
		if len(textLines) > 0 {
			currentCue.Text = strings.Join(textLines, "\n")
			cues = append(cues, currentCue)
		}
		currentCue = Cue{}
		textLines = nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		switch state {
		case "header":
			// header metadata (Kind:, Language:) runs until the first
			// blank line
			if trimmed == "" {
				state = "id"
			}

		case "id":
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "NOTE") ||
				strings.HasPrefix(trimmed, "STYLE") ||
				strings.HasPrefix(trimmed, "REGION") {
				state = "skip"
				continue
			}
			if m := timingRe.FindStringSubmatch(trimmed); m != nil {
				currentCue.StartTime = buildDuration(m[1], m[2], m[3], m[4])
				currentCue.EndTime = buildDuration(m[5], m[6], m[7], m[8])
				state = "text"
				textLines = nil
			}
			// anything else is a cue identifier; the timing line follows

		case "text":
			if trimmed == "" {
				flush()
				state = "id"
			} else {
				textLines = append(textLines, line)
			}

		case "skip":
			if trimmed == "" {
				state = "id"
			}
		}
	}

	// handle last cue without trailing blank line
	if state == "text" {
		flush()
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read caption stream: %w", err)
	}

	return cues, nil
}

func buildDuration(hours, minutes, seconds, milliseconds string) time.Duration {
	h := 0
	if hours != "" {
		h, _ = strconv.Atoi(hours)
	}
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	ms, _ := strconv.Atoi(milliseconds)

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond
}

// DetectLanguage detects the dominant language of a cue sequence
func DetectLanguage(cues []Cue) language.Tag {
	if len(cues) == 0 {
		return language.Und
	}

	langMap := make(map[string]int)

	for _, cue := range cues {
		lang := whatlanggo.DetectLang(cue.Text).Iso6391()
		langMap[lang]++
	}

	// Get top language
	var topLang string
	var topCount int
	for lang, count := range langMap {
		if count > topCount {
			topLang = lang
			topCount = count
		}
	}

	return language.All.Make(topLang)
}
