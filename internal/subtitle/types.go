package subtitle

import "time"

// Cue represents a single timed caption entry
type Cue struct {
	StartTime time.Duration // start time
	EndTime   time.Duration // end time
	Text      string        // caption text, may span multiple lines
}
