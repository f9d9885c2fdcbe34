package youtube

// CaptionTrack describes one caption track offered for a video
type CaptionTrack struct {
	BaseURL       string // URL of the timedtext resource
	Name          string // human-readable track name
	LanguageCode  string // BCP 47 code, e.g. "en", "en-GB"
	VssID         string // stable track identifier, e.g. ".en", "a.en"
	AutoGenerated bool   // true for ASR tracks
}

// Video holds the metadata the pipeline needs from a video
type Video struct {
	ID          string
	Title       string
	Uploader    string
	Channel     string
	Description string
	Tracks      []CaptionTrack
}
