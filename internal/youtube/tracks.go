package youtube

import (
	"errors"
	"sort"

	"golang.org/x/text/language"
)

// ErrNoEnglishTrack is returned when a video offers no English caption
// track, neither human-uploaded nor auto-generated.
var ErrNoEnglishTrack = errors.New("no English caption track available")

// TrackOrigin names the origin of the selected caption track
type TrackOrigin string

const (
	OriginHuman TrackOrigin = "human"
	OriginAuto  TrackOrigin = "auto"
)

// Origin reports whether the track was uploaded by a human or produced
// by speech recognition.
func (t CaptionTrack) Origin() TrackOrigin {
	if t.AutoGenerated {
		return OriginAuto
	}
	return OriginHuman
}

// RankTracks returns the English caption tracks of a video ordered by
// preference: human-uploaded before auto-generated, an exact "en" code
// before regional variants, ties broken by VssID. The ranking is a pure
// function of the track metadata, so the same input always yields the
// same order.
func RankTracks(tracks []CaptionTrack) []CaptionTrack {
	var english []CaptionTrack
	for _, t := range tracks {
		if isEnglish(t.LanguageCode) {
			english = append(english, t)
		}
	}

	sort.SliceStable(english, func(i, j int) bool {
		a, b := english[i], english[j]
		if a.AutoGenerated != b.AutoGenerated {
			return !a.AutoGenerated
		}
		aExact, bExact := a.LanguageCode == "en", b.LanguageCode == "en"
		if aExact != bExact {
			return aExact
		}
		return a.VssID < b.VssID
	})

	return english
}

// SelectTrack picks the preferred English track, or ErrNoEnglishTrack
// if none is available.
func SelectTrack(tracks []CaptionTrack) (CaptionTrack, error) {
	ranked := RankTracks(tracks)
	if len(ranked) == 0 {
		return CaptionTrack{}, ErrNoEnglishTrack
	}
	return ranked[0], nil
}

// isEnglish matches "en" and regional variants like "en-US". An empty
// code is rejected outright: language.Make("") infers an English base
// at low confidence, which must not count as a tagged English track.
func isEnglish(code string) bool {
	if code == "" {
		return false
	}
	tag := language.Make(code)
	base, conf := tag.Base()
	if conf == language.No {
		return false
	}
	return base.String() == "en"
}
