package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/franclarke/multidub-ai/media"
	"github.com/franclarke/multidub-ai/storage"
	"github.com/franclarke/multidub-ai/timeline"
	"github.com/franclarke/multidub-ai/types"
)

// segmentClip is one entry of the synthesized-stage manifest: where the
// rendered clip lives and how long it actually spoke.
type segmentClip struct {
	Key      string  `json:"key"`
	Duration float64 `json:"duration"`
}

// runContext carries the per-task state the stage executors share: the loaded
// records and a scratch directory that lives for one Run call.
type runContext struct {
	task  types.DubbingTask
	input *types.VideoInput
	out   *types.VideoOutput
	dir   string
}

func (rc *runContext) local(name string) string {
	return filepath.Join(rc.dir, name)
}

func (rc *runContext) workKey(stage types.Stage, name string) string {
	return storage.WorkKey(rc.task.VideoID, rc.task.OutputID, string(stage), name)
}

// runStage executes one pipeline stage and returns the storage locator of the
// artifact it produced. Provider and media tool failures keep their types so
// the runner can classify them; anything else is treated as infrastructure.
func (r *Runner) runStage(ctx context.Context, rc *runContext, stage types.Stage) (string, error) {
	switch stage {
	case types.StageFetched:
		return r.stageFetch(ctx, rc)
	case types.StageAudioExtracted:
		return r.stageExtractAudio(ctx, rc)
	case types.StageTranscribed:
		return r.stageTranscribe(ctx, rc)
	case types.StageTranslated:
		return r.stageTranslate(ctx, rc)
	case types.StageSynthesized:
		return r.stageSynthesize(ctx, rc)
	case types.StageAssembled:
		return r.stageAssemble(ctx, rc)
	case types.StageMuxed:
		return r.stageMux(ctx, rc)
	case types.StagePublished:
		return r.stagePublish(ctx, rc)
	default:
		return "", fmt.Errorf("unknown stage %q", stage)
	}
}

// stageFetch makes the source video addressable in object storage. Uploaded
// sources already are; external URLs are pulled down with yt-dlp first.
func (r *Runner) stageFetch(ctx context.Context, rc *runContext) (string, error) {
	if rc.input.SourceKind == types.SourceUpload {
		ok, err := r.deps.Objects.Exists(ctx, rc.input.SourceLocator)
		if err != nil {
			return "", fmt.Errorf("check source upload: %w", err)
		}
		if !ok {
			return "", types.Permanent("fetch", fmt.Errorf("source object %s missing", rc.input.SourceLocator))
		}
		return rc.input.SourceLocator, nil
	}

	local := rc.local("input.mp4")
	if err := r.deps.Media.FetchExternal(ctx, rc.input.SourceLocator, local); err != nil {
		return "", err
	}
	key := rc.workKey(types.StageFetched, "input.mp4")
	if err := r.upload(ctx, local, key, "video/mp4"); err != nil {
		return "", err
	}
	return key, nil
}

func (r *Runner) stageExtractAudio(ctx context.Context, rc *runContext) (string, error) {
	videoPath := rc.local("source.mp4")
	if err := r.download(ctx, rc.out.ArtifactRefs[types.StageFetched], videoPath); err != nil {
		return "", err
	}
	audioPath := rc.local("audio.mp3")
	if err := r.deps.Media.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return "", err
	}
	key := rc.workKey(types.StageAudioExtracted, "audio.mp3")
	if err := r.upload(ctx, audioPath, key, "audio/mpeg"); err != nil {
		return "", err
	}
	return key, nil
}

func (r *Runner) stageTranscribe(ctx context.Context, rc *runContext) (string, error) {
	audioPath := rc.local("audio.mp3")
	if err := r.download(ctx, rc.out.ArtifactRefs[types.StageAudioExtracted], audioPath); err != nil {
		return "", err
	}
	t, err := r.deps.Transcriber.Transcribe(ctx, audioPath, "")
	if err != nil {
		return "", err
	}
	key := rc.workKey(types.StageTranscribed, "timeline.json")
	if err := r.putTimeline(ctx, key, t); err != nil {
		return "", err
	}
	return key, nil
}

func (r *Runner) stageTranslate(ctx context.Context, rc *runContext) (string, error) {
	t, err := r.loadTimeline(ctx, rc.out.ArtifactRefs[types.StageTranscribed])
	if err != nil {
		return "", err
	}
	translated, err := r.deps.Translator.Translate(ctx, t, rc.task.Language)
	if err != nil {
		return "", err
	}
	if !translated.SameOffsets(t) {
		return "", types.Permanent("translate", fmt.Errorf("translation changed segment offsets"))
	}
	key := rc.workKey(types.StageTranslated, "timeline.json")
	if err := r.putTimeline(ctx, key, translated); err != nil {
		return "", err
	}
	return key, nil
}

// stageSynthesize renders each translated segment to its own clip and writes a
// manifest pairing every clip key with its measured spoken duration. The
// manifest is the stage artifact; an empty timeline yields an empty manifest.
func (r *Runner) stageSynthesize(ctx context.Context, rc *runContext) (string, error) {
	t, err := r.loadTimeline(ctx, rc.out.ArtifactRefs[types.StageTranslated])
	if err != nil {
		return "", err
	}

	voice := types.VoiceConfig{}
	if rc.task.Voice != nil {
		voice = *rc.task.Voice
	}

	clips := make([]segmentClip, 0, len(t.Segments))
	for i, seg := range t.Segments {
		name := fmt.Sprintf("segment_%04d.mp3", i)
		local := rc.local(name)
		dur, err := r.deps.Speech.Synthesize(ctx, seg.Text, voice, local)
		if err != nil {
			return "", err
		}
		key := rc.workKey(types.StageSynthesized, name)
		if err := r.upload(ctx, local, key, "audio/mpeg"); err != nil {
			return "", err
		}
		clips = append(clips, segmentClip{Key: key, Duration: dur})
	}

	manifestKey := rc.workKey(types.StageSynthesized, "segments.json")
	if err := r.putJSON(ctx, manifestKey, clips); err != nil {
		return "", err
	}
	return manifestKey, nil
}

// stageAssemble renders the combined dubbed track from the assembly plan. For
// an empty timeline there is nothing to dub, so the extracted audio is
// recorded as the assembled artifact rather than skipping ahead: mux then
// runs its normal path and rebuilds the video with its original soundtrack.
func (r *Runner) stageAssemble(ctx context.Context, rc *runContext) (string, error) {
	t, err := r.loadTimeline(ctx, rc.out.ArtifactRefs[types.StageTranslated])
	if err != nil {
		return "", err
	}
	if t.Empty() {
		rc.out.ClippedSegments = 0
		return rc.out.ArtifactRefs[types.StageAudioExtracted], nil
	}

	var clips []segmentClip
	if err := r.getJSON(ctx, rc.out.ArtifactRefs[types.StageSynthesized], &clips); err != nil {
		return "", err
	}
	if len(clips) != len(t.Segments) {
		return "", types.Permanent("assemble", fmt.Errorf("%d clips for %d segments", len(clips), len(t.Segments)))
	}

	measured := make([]float64, len(clips))
	for i, c := range clips {
		measured[i] = c.Duration
	}
	plan, err := timeline.BuildAssemblyPlan(t, measured)
	if err != nil {
		return "", types.Permanent("assemble", err)
	}

	entries, err := r.materializePlan(ctx, rc, plan, clips)
	if err != nil {
		return "", err
	}
	outPath := rc.local("dubbed.mp3")
	if err := r.deps.Media.ConcatWithTiming(ctx, entries, outPath); err != nil {
		return "", err
	}

	rc.out.ClippedSegments = plan.ClippedCount()
	r.deps.Metrics.AddSegmentsClipped(plan.ClippedCount())

	key := rc.workKey(types.StageAssembled, "dubbed.mp3")
	if err := r.upload(ctx, outPath, key, "audio/mpeg"); err != nil {
		return "", err
	}
	return key, nil
}

func (r *Runner) stageMux(ctx context.Context, rc *runContext) (string, error) {
	videoPath := rc.local("source.mp4")
	if err := r.download(ctx, rc.out.ArtifactRefs[types.StageFetched], videoPath); err != nil {
		return "", err
	}
	audioPath := rc.local("dubbed.mp3")
	if err := r.download(ctx, rc.out.ArtifactRefs[types.StageAssembled], audioPath); err != nil {
		return "", err
	}
	outPath := rc.local("output.mp4")
	if err := r.deps.Media.MuxReplaceAudio(ctx, videoPath, audioPath, outPath); err != nil {
		return "", err
	}
	key := rc.workKey(types.StageMuxed, "output.mp4")
	if err := r.upload(ctx, outPath, key, "video/mp4"); err != nil {
		return "", err
	}
	return key, nil
}

// stagePublish copies the muxed result to its permanent key.
func (r *Runner) stagePublish(ctx context.Context, rc *runContext) (string, error) {
	src, err := r.deps.Objects.Get(ctx, rc.out.ArtifactRefs[types.StageMuxed])
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := storage.OutputKey(rc.task.VideoID, rc.task.OutputID)
	if err := r.deps.Objects.Put(ctx, key, src, "video/mp4"); err != nil {
		return "", err
	}
	r.deps.Metrics.IncOutputsPublished()
	return key, nil
}

// materializePlan downloads every clip the plan references and maps plan
// entries onto concat entries, leaving silence slots pathless.
func (r *Runner) materializePlan(ctx context.Context, rc *runContext, plan timeline.AssemblyPlan, clips []segmentClip) ([]media.ConcatEntry, error) {
	entries := make([]media.ConcatEntry, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		if e.Silence {
			entries = append(entries, media.ConcatEntry{Duration: e.Duration})
			continue
		}
		name := fmt.Sprintf("clip_%04d.mp3", e.SegmentIndex)
		local := rc.local(name)
		if err := r.download(ctx, clips[e.SegmentIndex].Key, local); err != nil {
			return nil, err
		}
		entries = append(entries, media.ConcatEntry{ClipPath: local, Duration: e.Duration})
	}
	return entries, nil
}

func (r *Runner) download(ctx context.Context, key, localPath string) error {
	body, err := r.deps.Objects.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	defer body.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("download %s: %w", key, err)
	}
	return nil
}

func (r *Runner) upload(ctx context.Context, localPath, key, contentType string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := r.deps.Objects.Put(ctx, key, f, contentType); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (r *Runner) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return r.deps.Objects.Put(ctx, key, bytes.NewReader(data), "application/json")
}

func (r *Runner) getJSON(ctx context.Context, key string, v any) error {
	body, err := r.deps.Objects.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *Runner) putTimeline(ctx context.Context, key string, t timeline.Timeline) error {
	return r.putJSON(ctx, key, t)
}

func (r *Runner) loadTimeline(ctx context.Context, key string) (timeline.Timeline, error) {
	var t timeline.Timeline
	if err := r.getJSON(ctx, key, &t); err != nil {
		return timeline.Timeline{}, err
	}
	return t, nil
}
