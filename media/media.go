// Package media wraps the external tools (ffmpeg, ffprobe, yt-dlp) the
// pipeline shells out to. Non-zero exits surface as MediaToolError with the
// tail of stderr attached; nothing here re-implements codec work.
package media

import "context"

// ConcatEntry is one slot of the combined dubbed track. An empty ClipPath
// renders as silence of exactly Duration seconds; a clip is padded or
// truncated to exactly Duration.
type ConcatEntry struct {
	ClipPath string
	Duration float64
}

// Tooling is the media capability surface the stage executors depend on.
// All operations work on local files inside a runner's working directory.
type Tooling interface {
	FetchExternal(ctx context.Context, url, outPath string) error
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
	ConcatWithTiming(ctx context.Context, entries []ConcatEntry, outPath string) error
	MuxReplaceAudio(ctx context.Context, videoPath, audioPath, outPath string) error
	MeasureDuration(ctx context.Context, path string) (float64, error)
}
