package highlights

import (
	"fmt"
	"sort"
	"time"

	"github.com/forPelevin/reelcut/internal/types"
)

const (
	MaxHighlights  = 3
	MaxClipSeconds = 30

	maxSegments    = 10
	segmentSeconds = 5
	scoreThreshold = 0.5
)

// Segments splits the video into min(10, floor(duration/5s)) equal windows.
// Videos shorter than 5s produce none.
func Segments(info types.VideoInfo) []types.Segment {
	n := int(info.Duration / (segmentSeconds * time.Second))
	if n > maxSegments {
		n = maxSegments
	}
	if n <= 0 {
		return nil
	}
	out := make([]types.Segment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, types.Segment{
			Start: time.Duration(int64(i) * int64(info.Duration) / int64(n)),
			Label: fmt.Sprintf("Интересный момент %d", i+1),
		})
	}
	return out
}

// Select scores every segment and keeps the top three above the threshold.
// requestedSec must already be validated as positive.
func Select(info types.VideoInfo, requestedSec int, s Scorer) []types.Highlight {
	segs := Segments(info)
	if len(segs) == 0 {
		return nil
	}
	clipDur := ClipDuration(requestedSec)

	kept := make([]types.Segment, 0, len(segs))
	for _, seg := range segs {
		seg.Score = s.Score(seg)
		if seg.Score > scoreThreshold {
			kept = append(kept, seg)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score == kept[j].Score {
			return kept[i].Start < kept[j].Start
		}
		return kept[i].Score > kept[j].Score
	})
	if len(kept) > MaxHighlights {
		kept = kept[:MaxHighlights]
	}

	out := make([]types.Highlight, 0, len(kept))
	for _, seg := range kept {
		out = append(out, types.Highlight{
			Start:    seg.Start,
			Duration: clipDur,
			Score:    seg.Score,
			Label:    seg.Label,
		})
	}
	return out
}

// ClipDuration caps the requested length at 30 seconds.
func ClipDuration(requestedSec int) time.Duration {
	if requestedSec > MaxClipSeconds {
		requestedSec = MaxClipSeconds
	}
	return time.Duration(requestedSec) * time.Second
}
