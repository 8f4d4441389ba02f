package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/franclarke/multidub-ai/types"
)

// RedisConfig configures the Redis-backed repository.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis persists inputs and outputs as JSON blobs keyed by id, with a set per
// video tracking its outputs and a plain flag key for cancellation requests.
type Redis struct {
	client *redis.Client
}

func inputKey(videoID string) string   { return "dub:input:" + videoID }
func outputKey(outputID string) string { return "dub:output:" + outputID }
func videoSetKey(videoID string) string {
	return "dub:video:" + videoID + ":outputs"
}
func cancelKey(outputID string) string { return "dub:cancel:" + outputID }

// NewRedis connects and verifies connectivity before returning.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) CreateInput(ctx context.Context, in *types.VideoInput) error {
	return r.setJSON(ctx, inputKey(in.ID), in)
}

func (r *Redis) GetInput(ctx context.Context, videoID string) (*types.VideoInput, error) {
	var in types.VideoInput
	if err := r.getJSON(ctx, inputKey(videoID), &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *Redis) UpdateInputStatus(ctx context.Context, videoID string, status types.InputStatus) error {
	in, err := r.GetInput(ctx, videoID)
	if err != nil {
		return err
	}
	in.Status = status
	return r.setJSON(ctx, inputKey(videoID), in)
}

func (r *Redis) CreateOutput(ctx context.Context, out *types.VideoOutput) error {
	if err := r.setJSON(ctx, outputKey(out.ID), out); err != nil {
		return err
	}
	return r.client.SAdd(ctx, videoSetKey(out.VideoInputID), out.ID).Err()
}

func (r *Redis) GetOutput(ctx context.Context, outputID string) (*types.VideoOutput, error) {
	var out types.VideoOutput
	if err := r.getJSON(ctx, outputKey(outputID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Redis) SaveOutput(ctx context.Context, out *types.VideoOutput) error {
	exists, err := r.client.Exists(ctx, outputKey(out.ID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return r.setJSON(ctx, outputKey(out.ID), out)
}

func (r *Redis) ListOutputs(ctx context.Context, videoID string) ([]*types.VideoOutput, error) {
	ids, err := r.client.SMembers(ctx, videoSetKey(videoID)).Result()
	if err != nil {
		return nil, err
	}
	outs := make([]*types.VideoOutput, 0, len(ids))
	for _, id := range ids {
		out, err := r.GetOutput(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}

func (r *Redis) RequestCancel(ctx context.Context, outputID string) error {
	exists, err := r.client.Exists(ctx, outputKey(outputID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return r.client.Set(ctx, cancelKey(outputID), "1", 0).Err()
}

func (r *Redis) CancelRequested(ctx context.Context, outputID string) (bool, error) {
	n, err := r.client.Exists(ctx, cancelKey(outputID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Redis) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return r.client.Set(ctx, key, data, 0).Err()
}

func (r *Redis) getJSON(ctx context.Context, key string, v any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
