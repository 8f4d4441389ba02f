package store

import (
	"context"
	"sync"

	"github.com/franclarke/multidub-ai/types"
)

// Memory is an in-process Repository for tests and single-node setups.
type Memory struct {
	mu      sync.RWMutex
	inputs  map[string]*types.VideoInput
	outputs map[string]*types.VideoOutput
	byVideo map[string][]string
	cancels map[string]bool
}

func NewMemory() *Memory {
	return &Memory{
		inputs:  make(map[string]*types.VideoInput),
		outputs: make(map[string]*types.VideoOutput),
		byVideo: make(map[string][]string),
		cancels: make(map[string]bool),
	}
}

func (m *Memory) CreateInput(ctx context.Context, in *types.VideoInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *in
	m.inputs[in.ID] = &cp
	return nil
}

func (m *Memory) GetInput(ctx context.Context, videoID string) (*types.VideoInput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.inputs[videoID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *in
	return &cp, nil
}

func (m *Memory) UpdateInputStatus(ctx context.Context, videoID string, status types.InputStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.inputs[videoID]
	if !ok {
		return ErrNotFound
	}
	in.Status = status
	return nil
}

func (m *Memory) CreateOutput(ctx context.Context, out *types.VideoOutput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs[out.ID] = out.Clone()
	m.byVideo[out.VideoInputID] = append(m.byVideo[out.VideoInputID], out.ID)
	return nil
}

func (m *Memory) GetOutput(ctx context.Context, outputID string) (*types.VideoOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out, ok := m.outputs[outputID]
	if !ok {
		return nil, ErrNotFound
	}
	return out.Clone(), nil
}

func (m *Memory) SaveOutput(ctx context.Context, out *types.VideoOutput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.outputs[out.ID]; !ok {
		return ErrNotFound
	}
	m.outputs[out.ID] = out.Clone()
	return nil
}

func (m *Memory) ListOutputs(ctx context.Context, videoID string) ([]*types.VideoOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.byVideo[videoID]
	outs := make([]*types.VideoOutput, 0, len(ids))
	for _, id := range ids {
		if out, ok := m.outputs[id]; ok {
			outs = append(outs, out.Clone())
		}
	}
	return outs, nil
}

func (m *Memory) RequestCancel(ctx context.Context, outputID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.outputs[outputID]; !ok {
		return ErrNotFound
	}
	m.cancels[outputID] = true
	return nil
}

func (m *Memory) CancelRequested(ctx context.Context, outputID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cancels[outputID], nil
}
