package storage

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestMemoryPutGetDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Put(ctx, "work/v/o/audio.mp3", strings.NewReader("payload"), "audio/mpeg"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	body, err := m.Get(ctx, "work/v/o/audio.mp3")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	b, _ := io.ReadAll(body)
	body.Close()
	if string(b) != "payload" {
		t.Fatalf("Get returned %q", b)
	}

	ok, err := m.Exists(ctx, "work/v/o/audio.mp3")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v; want true", ok, err)
	}
	if err := m.Delete(ctx, "work/v/o/audio.mp3"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if ok, _ := m.Exists(ctx, "work/v/o/audio.mp3"); ok {
		t.Fatal("object survived Delete")
	}
	if _, err := m.Get(ctx, "missing"); err == nil {
		t.Fatal("Get on missing key should fail")
	}
}

func TestMemoryDeletePrefix(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, key := range []string{
		WorkKey("v1", "o1", "fetched", "input.mp4"),
		WorkKey("v1", "o1", "transcribed", "timeline.json"),
		WorkKey("v1", "o2", "fetched", "input.mp4"),
		OutputKey("v1", "o1"),
	} {
		if err := m.Put(ctx, key, strings.NewReader("x"), ""); err != nil {
			t.Fatalf("Put(%s) error: %v", key, err)
		}
	}

	if err := m.DeletePrefix(ctx, WorkPrefix("v1", "o1")); err != nil {
		t.Fatalf("DeletePrefix error: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d after prefix delete; want 2", m.Len())
	}
	if ok, _ := m.Exists(ctx, WorkKey("v1", "o2", "fetched", "input.mp4")); !ok {
		t.Fatal("sibling output's artifacts were deleted")
	}
	if ok, _ := m.Exists(ctx, OutputKey("v1", "o1")); !ok {
		t.Fatal("published output was deleted")
	}
}
