package subtitle

import (
	"html"
	"regexp"
	"strings"
)

// markupRe matches styling tags found in caption text (<c>, <i>, <font>)
// as well as the inline word timestamps (<00:00:01.234>) that
// auto-generated tracks interleave with the words.
var markupRe = regexp.MustCompile(`<[^>]*>`)

// spaceRe collapses runs of internal whitespace
var spaceRe = regexp.MustCompile(`\s+`)

// Flatten converts a cue sequence into a plain-text transcript, one
// retained line per output line.
//
// Auto-generated tracks repeat overlapping text across consecutive
// cues, so a line identical to the immediately preceding retained line
// is suppressed. Non-adjacent repeats are kept. An empty cue sequence
// flattens to the empty string.
func Flatten(cues []Cue) string {
	var flattened []string
	var prevLine string

	for _, cue := range cues {
		for _, line := range strings.Split(cue.Text, "\n") {
			cleaned := CleanLine(line)
			if cleaned == "" {
				continue
			}
			if cleaned == prevLine {
				continue
			}
			flattened = append(flattened, cleaned)
			prevLine = cleaned
		}
	}

	return strings.Join(flattened, "\n")
}

// CleanLine strips caption markup from a single line, decodes HTML
// entities and collapses internal whitespace.
func CleanLine(line string) string {
	cleaned := markupRe.ReplaceAllString(line, "")
	cleaned = html.UnescapeString(cleaned)
	cleaned = spaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
