// Package timeline holds the ordered, time-stamped text segments shared by
// transcription, translation and speech synthesis, and the assembly-plan
// algorithm that re-synchronizes synthesized clips against original timing.
package timeline

import "fmt"

// Segment is a time-bounded span of text. Offsets are media-time seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the segment's originally allotted duration.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Timeline is an ordered sequence of non-overlapping segments. Transcription
// produces it; translation and synthesis must preserve its length and order,
// touching only the text, because downstream assembly relies on positional
// correspondence with the synthesized clip list.
type Timeline struct {
	Segments []Segment `json:"segments"`
}

// Empty reports whether the timeline carries no segments (silent video).
func (t Timeline) Empty() bool { return len(t.Segments) == 0 }

// End returns the end offset of the last segment, or 0 for an empty timeline.
func (t Timeline) End() float64 {
	if t.Empty() {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}

// SpeechDuration returns the sum of per-segment durations, excluding gaps.
func (t Timeline) SpeechDuration() float64 {
	var sum float64
	for _, s := range t.Segments {
		sum += s.Duration()
	}
	return sum
}

// Texts returns the segment texts in order.
func (t Timeline) Texts() []string {
	out := make([]string, len(t.Segments))
	for i, s := range t.Segments {
		out[i] = s.Text
	}
	return out
}

// WithTexts returns a copy of t with each segment's text replaced by the
// corresponding entry in texts when non-empty, preserving all offsets. The
// lengths must match; this is how translation honors the ordering invariant.
func (t Timeline) WithTexts(texts []string) (Timeline, error) {
	if len(texts) != len(t.Segments) {
		return Timeline{}, fmt.Errorf("text count %d does not match segment count %d", len(texts), len(t.Segments))
	}
	out := Timeline{Segments: make([]Segment, len(t.Segments))}
	for i, s := range t.Segments {
		out.Segments[i] = Segment{Start: s.Start, End: s.End, Text: texts[i]}
	}
	return out, nil
}

// Validate checks the structural invariants: non-negative offsets, end never
// before start, strictly increasing starts, and no overlap between neighbors.
func (t Timeline) Validate() error {
	for i, s := range t.Segments {
		if s.Start < 0 {
			return fmt.Errorf("segment %d: negative start %.3f", i, s.Start)
		}
		if s.End < s.Start {
			return fmt.Errorf("segment %d: end %.3f before start %.3f", i, s.End, s.Start)
		}
		if i > 0 {
			prev := t.Segments[i-1]
			if s.Start <= prev.Start {
				return fmt.Errorf("segment %d: start %.3f not after previous start %.3f", i, s.Start, prev.Start)
			}
			if s.Start < prev.End {
				return fmt.Errorf("segment %d: start %.3f overlaps previous end %.3f", i, s.Start, prev.End)
			}
		}
	}
	return nil
}

// SameOffsets reports whether other has identical per-index start/end offsets.
func (t Timeline) SameOffsets(other Timeline) bool {
	if len(t.Segments) != len(other.Segments) {
		return false
	}
	for i := range t.Segments {
		if t.Segments[i].Start != other.Segments[i].Start || t.Segments[i].End != other.Segments[i].End {
			return false
		}
	}
	return true
}
