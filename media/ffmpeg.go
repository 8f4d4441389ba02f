package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/franclarke/multidub-ai/types"
)

// stderrTail bounds how much tool output is kept on a MediaToolError.
const stderrTail = 2048

// FFmpeg implements Tooling by shelling out to ffmpeg/ffprobe/yt-dlp.
type FFmpeg struct {
	Log *slog.Logger
}

// NewFFmpeg returns the production media tooling.
func NewFFmpeg(log *slog.Logger) *FFmpeg {
	return &FFmpeg{Log: log}
}

// ExtractAudio pulls the audio stream out of a video into an mp3.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	cmd := ffmpeg.Input(videoPath).
		Output(audioPath, ffmpeg.KwArgs{"q:a": "0", "map": "a"}).
		OverWriteOutput().
		Compile()
	return f.run(ctx, cmd, "ffmpeg")
}

// ConcatWithTiming renders the assembly plan: every entry is first normalized
// to exactly its target duration (apad then a hard -t for clips, anullsrc for
// silence), then the normalized pieces are concatenated with stream copy so
// the total length is the exact sum of the slots.
func (f *FFmpeg) ConcatWithTiming(ctx context.Context, entries []ConcatEntry, outPath string) error {
	if len(entries) == 0 {
		return fmt.Errorf("concat: no entries")
	}
	dir := filepath.Dir(outPath)

	normalized := make([]string, len(entries))
	for i, e := range entries {
		seg := filepath.Join(dir, fmt.Sprintf("norm_%04d.mp3", i))
		var cmd *exec.Cmd
		if e.ClipPath == "" {
			cmd = ffmpeg.Input("anullsrc=channel_layout=mono:sample_rate=44100", ffmpeg.KwArgs{"f": "lavfi"}).
				Output(seg, ffmpeg.KwArgs{"t": formatSeconds(e.Duration), "c:a": "libmp3lame", "q:a": "2"}).
				OverWriteOutput().
				Compile()
		} else {
			cmd = ffmpeg.Input(e.ClipPath).
				Output(seg, ffmpeg.KwArgs{"af": "apad", "t": formatSeconds(e.Duration)}).
				OverWriteOutput().
				Compile()
		}
		if err := f.run(ctx, cmd, "ffmpeg"); err != nil {
			return err
		}
		normalized[i] = seg
	}
	defer func() {
		for _, p := range normalized {
			os.Remove(p)
		}
	}()

	listPath := filepath.Join(dir, "concat_list.txt")
	if err := os.WriteFile(listPath, []byte(ConcatList(normalized)), 0o644); err != nil {
		return err
	}
	defer os.Remove(listPath)

	cmd := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(outPath, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput().
		Compile()
	return f.run(ctx, cmd, "ffmpeg")
}

// MuxReplaceAudio swaps the video's audio stream for audioPath. The video
// stream is copied untouched; no re-encode.
func (f *FFmpeg) MuxReplaceAudio(ctx context.Context, videoPath, audioPath, outPath string) error {
	video := ffmpeg.Input(videoPath)
	audio := ffmpeg.Input(audioPath)
	cmd := ffmpeg.Output(
		[]*ffmpeg.Stream{video.Get("v"), audio.Get("a")},
		outPath,
		ffmpeg.KwArgs{"c:v": "copy", "c:a": "aac"},
	).OverWriteOutput().Compile()
	return f.run(ctx, cmd, "ffmpeg")
}

// MeasureDuration probes a media file and returns its duration in seconds.
func (f *FFmpeg) MeasureDuration(ctx context.Context, path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, &types.MediaToolError{Tool: "ffprobe", Err: err}
	}
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, fmt.Errorf("ffprobe output: %w", err)
	}
	d, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %q: %w", probe.Format.Duration, err)
	}
	return d, nil
}

// run executes a compiled tool command, capturing stderr and honoring ctx.
func (f *FFmpeg) run(ctx context.Context, cmd *exec.Cmd, tool string) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = nil

	if f.Log != nil {
		f.Log.Debug("running media tool", "tool", tool, "args", strings.Join(cmd.Args, " "))
	}
	if err := cmd.Start(); err != nil {
		return &types.MediaToolError{Tool: tool, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return &types.MediaToolError{Tool: tool, Stderr: tail(stderr.String()), Err: err}
		}
		return nil
	}
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		return s[len(s)-stderrTail:]
	}
	return s
}

// ConcatList builds the ffmpeg concat demuxer list for the given files.
func ConcatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(p, "'", `'\''`))
	}
	return b.String()
}

func formatSeconds(d float64) string {
	return strconv.FormatFloat(d, 'f', 3, 64)
}
