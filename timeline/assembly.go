package timeline

import "fmt"

// minGap is the smallest original silence worth materializing. Anything
// shorter is float noise from the transcriber, not a real pause.
const minGap = 1e-3

// PlanEntry is one slot of the assembled track: either a synthesized clip
// normalized to its originally allotted duration, or a run of silence
// reproducing a gap in the original audio.
type PlanEntry struct {
	// SegmentIndex is the timeline segment this entry carries, -1 for silence.
	SegmentIndex int
	// Duration is the exact target duration of this slot in seconds.
	Duration float64
	// Clipped is set when the synthesized clip ran longer than its slot and
	// must be truncated from the end. Surfaced to status, not fatal.
	Clipped bool
	// Silence marks a gap entry with no clip.
	Silence bool
}

// AssemblyPlan is the ordered recipe for the combined audio track. Rendering
// it with no gaps or overlaps yields a track whose every boundary lands on the
// original segment offsets, regardless of how long the synths actually spoke.
type AssemblyPlan struct {
	Entries []PlanEntry
}

// TotalDuration is the exact length of the rendered track: the original
// timeline's end offset (speech plus preserved gaps, including any leading one).
func (p AssemblyPlan) TotalDuration() float64 {
	var sum float64
	for _, e := range p.Entries {
		sum += e.Duration
	}
	return sum
}

// ClippedCount returns how many clips had to be truncated.
func (p AssemblyPlan) ClippedCount() int {
	var n int
	for _, e := range p.Entries {
		if e.Clipped {
			n++
		}
	}
	return n
}

// BuildAssemblyPlan computes the timing-preserving recipe for a timeline and
// the measured spoken durations of its synthesized clips (parallel by index).
//
// Each clip occupies exactly its segment's allotted duration: longer clips are
// truncated from the end and flagged, shorter ones get trailing silence when
// rendered. Gaps in the original audio, including silence before the first
// segment, become explicit silence entries at the same relative position so
// absolute alignment with picture never drifts.
func BuildAssemblyPlan(t Timeline, measured []float64) (AssemblyPlan, error) {
	if t.Empty() {
		return AssemblyPlan{}, nil
	}
	if len(measured) != len(t.Segments) {
		return AssemblyPlan{}, fmt.Errorf("measured %d clip durations for %d segments", len(measured), len(t.Segments))
	}
	if err := t.Validate(); err != nil {
		return AssemblyPlan{}, err
	}

	var plan AssemblyPlan
	cursor := 0.0
	for i, seg := range t.Segments {
		if gap := seg.Start - cursor; gap > minGap {
			plan.Entries = append(plan.Entries, PlanEntry{
				SegmentIndex: -1,
				Duration:     gap,
				Silence:      true,
			})
		}
		plan.Entries = append(plan.Entries, PlanEntry{
			SegmentIndex: i,
			Duration:     seg.Duration(),
			Clipped:      measured[i] > seg.Duration()+minGap,
		})
		cursor = seg.End
	}
	return plan, nil
}
