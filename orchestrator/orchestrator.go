// Package orchestrator is the service layer behind the HTTP API: it registers
// source videos, fans dubbing requests out into per-language tasks, and
// assembles status views.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/franclarke/multidub-ai/config"
	"github.com/franclarke/multidub-ai/storage"
	"github.com/franclarke/multidub-ai/store"
	"github.com/franclarke/multidub-ai/types"
)

// TaskDispatcher is the queue-facing side the orchestrator needs.
type TaskDispatcher interface {
	Dispatch(ctx context.Context, tasks []types.DubbingTask) error
}

// Orchestrator coordinates registration, fan-out and status.
type Orchestrator struct {
	Repo       store.Repository
	Objects    storage.ObjectStore
	Dispatcher TaskDispatcher
	Log        *slog.Logger
	URLTTL     time.Duration
}

// RegisterUpload mints a video id and a signed URL the client PUTs the source
// to. The video stays pending until processing is requested.
func (o *Orchestrator) RegisterUpload(ctx context.Context, ownerID, title, contentType string, size int64) (*types.UploadGrant, error) {
	if ownerID == "" {
		return nil, &types.ValidationError{Field: "ownerId", Reason: "required"}
	}
	ext, ok := config.UploadTypeExt[contentType]
	if !ok {
		return nil, &types.ValidationError{Field: "contentType", Reason: fmt.Sprintf("unsupported type %q", contentType)}
	}
	if size <= 0 || size > config.MaxUploadSize {
		return nil, &types.ValidationError{Field: "size", Reason: fmt.Sprintf("must be positive and at most %d bytes", int64(config.MaxUploadSize))}
	}

	videoID := uuid.NewString()
	key := storage.UploadKey(ownerID, videoID, ext)
	url, err := o.Objects.SignedUploadURL(ctx, key, contentType, o.URLTTL)
	if err != nil {
		return nil, fmt.Errorf("sign upload url: %w", err)
	}

	now := time.Now().UTC()
	input := &types.VideoInput{
		ID:            videoID,
		OwnerID:       ownerID,
		Title:         title,
		SourceKind:    types.SourceUpload,
		SourceLocator: key,
		Status:        types.InputPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := o.Repo.CreateInput(ctx, input); err != nil {
		return nil, fmt.Errorf("create input: %w", err)
	}
	o.Log.Info("upload registered", "video_id", videoID, "owner_id", ownerID, "key", key)
	return &types.UploadGrant{ID: videoID, UploadURL: url}, nil
}

// RegisterExternal registers a video sourced from an external URL; the fetch
// stage pulls it down when processing starts.
func (o *Orchestrator) RegisterExternal(ctx context.Context, ownerID, title, sourceURL string) (*types.VideoInput, error) {
	if ownerID == "" {
		return nil, &types.ValidationError{Field: "ownerId", Reason: "required"}
	}
	if !strings.HasPrefix(sourceURL, "http://") && !strings.HasPrefix(sourceURL, "https://") {
		return nil, &types.ValidationError{Field: "sourceUrl", Reason: "must be an http(s) URL"}
	}

	now := time.Now().UTC()
	input := &types.VideoInput{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Title:         title,
		SourceKind:    types.SourceExternalURL,
		SourceLocator: sourceURL,
		Status:        types.InputPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := o.Repo.CreateInput(ctx, input); err != nil {
		return nil, fmt.Errorf("create input: %w", err)
	}
	o.Log.Info("external source registered", "video_id", input.ID, "url", sourceURL)
	return input, nil
}

// StartDubbing validates the whole request before creating anything: one bad
// language rejects the request and leaves zero outputs behind. Languages are
// deduplicated case-insensitively, first occurrence wins.
func (o *Orchestrator) StartDubbing(ctx context.Context, req types.ProcessRequest) ([]*types.VideoOutput, error) {
	input, err := o.Repo.GetInput(ctx, req.VideoID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &types.ValidationError{Field: "videoId", Reason: "unknown video"}
	}
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}

	languages, err := NormalizeLanguages(req.Languages)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	outputs := make([]*types.VideoOutput, 0, len(languages))
	tasks := make([]types.DubbingTask, 0, len(languages))
	for _, lang := range languages {
		out := &types.VideoOutput{
			ID:           uuid.NewString(),
			VideoInputID: input.ID,
			Language:     lang,
			Stage:        types.StagePending,
			ArtifactRefs: make(map[types.Stage]string),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		outputs = append(outputs, out)

		task := types.DubbingTask{
			VideoID:  input.ID,
			OutputID: out.ID,
			Language: lang,
		}
		if vc, ok := req.VoiceSettings[lang]; ok {
			task.Voice = &vc
		}
		tasks = append(tasks, task)
	}

	for _, out := range outputs {
		if err := o.Repo.CreateOutput(ctx, out); err != nil {
			return nil, fmt.Errorf("create output: %w", err)
		}
	}
	if err := o.Repo.UpdateInputStatus(ctx, input.ID, types.InputProcessing); err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}
	if err := o.Dispatcher.Dispatch(ctx, tasks); err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	o.Log.Info("dubbing started", "video_id", input.ID, "languages", languages)
	return outputs, nil
}

// GetStatus returns the video's aggregate plus each output's stage, attaching
// a signed download URL for every published output.
func (o *Orchestrator) GetStatus(ctx context.Context, videoID string) (*types.VideoStatus, error) {
	input, err := o.Repo.GetInput(ctx, videoID)
	if err != nil {
		return nil, err
	}
	outs, err := o.Repo.ListOutputs(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}

	status := &types.VideoStatus{
		ID:      input.ID,
		Title:   input.Title,
		Status:  input.Status,
		Outputs: make([]types.OutputStatus, 0, len(outs)),
	}
	for _, out := range outs {
		entry := types.OutputStatus{
			ID:              out.ID,
			Language:        out.Language,
			Stage:           out.Stage,
			ClippedSegments: out.ClippedSegments,
			ErrorDetail:     out.ErrorDetail,
		}
		if out.Stage == types.StagePublished {
			if ref, ok := out.ArtifactRefs[types.StagePublished]; ok {
				url, err := o.Objects.SignedDownloadURL(ctx, ref, o.URLTTL)
				if err != nil {
					o.Log.Warn("sign download url", "output_id", out.ID, "error", err)
				} else {
					entry.DownloadURL = url
				}
			}
		}
		status.Outputs = append(status.Outputs, entry)
	}
	return status, nil
}

// Cancel flags an output for cancellation at its next stage boundary. An
// already terminal output is left untouched.
func (o *Orchestrator) Cancel(ctx context.Context, outputID string) error {
	out, err := o.Repo.GetOutput(ctx, outputID)
	if err != nil {
		return err
	}
	if out.Stage.Terminal() {
		return &types.ValidationError{Field: "outputId", Reason: fmt.Sprintf("output already %s", out.Stage)}
	}
	if err := o.Repo.RequestCancel(ctx, outputID); err != nil {
		return err
	}
	o.Log.Info("cancellation requested", "output_id", outputID)
	return nil
}

// NormalizeLanguages lower-cases, deduplicates (first occurrence wins) and
// validates the requested language list.
func NormalizeLanguages(langs []string) ([]string, error) {
	if len(langs) == 0 {
		return nil, &types.ValidationError{Field: "languages", Reason: "at least one language required"}
	}
	seen := make(map[string]bool, len(langs))
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		lang := strings.ToLower(strings.TrimSpace(l))
		if lang == "" {
			return nil, &types.ValidationError{Field: "languages", Reason: "empty language code"}
		}
		if !config.IsSupportedLanguage(lang) {
			return nil, &types.ValidationError{Field: "languages", Reason: fmt.Sprintf("unsupported language %q", l)}
		}
		if seen[lang] {
			continue
		}
		seen[lang] = true
		out = append(out, lang)
	}
	return out, nil
}
