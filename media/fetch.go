package media

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/franclarke/multidub-ai/types"
)

// ytdlpFormat prefers an mp4 container so the mux stage can stream-copy video.
const ytdlpFormat = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"

// FetchExternal downloads an external-url source video to outPath via yt-dlp.
func (f *FFmpeg) FetchExternal(ctx context.Context, url, outPath string) error {
	cmd := exec.CommandContext(ctx, "yt-dlp",
		"-f", ytdlpFormat,
		"--merge-output-format", "mp4",
		"-o", outPath,
		url,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if f.Log != nil {
		f.Log.Debug("fetching external source", "url", url)
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &types.MediaToolError{Tool: "yt-dlp", Stderr: tail(stderr.String()), Err: err}
	}
	return nil
}
