package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ytget/yt-fetch/internal/model"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewEntry(t *testing.T) {
	ok := model.Succeeded("ref-1", "Song", "/music/Song.mp3")
	ok.Elapsed = 1500 * time.Millisecond
	entry := NewEntry("req", model.MediaAudioOnly, "", ok)
	if !entry.OK() || entry.Path != "/music/Song.mp3" || entry.Elapsed != ok.Elapsed {
		t.Fatalf("unexpected entry %+v", entry)
	}

	failed := model.Failed("ref-2", model.StageFetch, "HTTP Error 403", model.ErrTransferFailed)
	entry = NewEntry("req", model.MediaAudioVideo, "Mix", failed)
	if entry.OK() || entry.Stage != model.StageFetch || entry.Reason != "HTTP Error 403" || entry.Collection != "Mix" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		NewEntry("req-1", model.MediaAudioOnly, "", model.Succeeded("ref-1", "First", "/m/First.mp3")),
		NewEntry("req-2", model.MediaAudioVideo, "Mix", model.Failed("ref-2", model.StageResolve, "Not a playlist", model.ErrNotACollection)),
		NewEntry("req-3", model.MediaAudioVideo, "", model.Succeeded("ref-3", "Third", "/m/Third_fixed.mp4")),
	}
	for i := range entries {
		entries[i].RecordedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.Record(ctx, entries[i]); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	got, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].RequestID != "req-3" || got[1].RequestID != "req-2" {
		t.Fatalf("unexpected order: %s, %s", got[0].RequestID, got[1].RequestID)
	}
	if got[1].Stage != model.StageResolve || got[1].Reason != "Not a playlist" || got[1].Collection != "Mix" {
		t.Fatalf("failure fields lost: %+v", got[1])
	}
	if got[0].Kind != model.MediaAudioVideo || got[0].Path != "/m/Third_fixed.mp4" || !got[0].OK() {
		t.Fatalf("success fields lost: %+v", got[0])
	}
	if !got[0].RecordedAt.Equal(entries[2].RecordedAt) {
		t.Fatalf("RecordedAt = %v, want %v", got[0].RecordedAt, entries[2].RecordedAt)
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	store := openStore(t)
	for i := 0; i < 2; i++ {
		if err := store.EnsureSchema(context.Background()); err != nil {
			t.Fatalf("EnsureSchema #%d returned error: %v", i+1, err)
		}
	}
}

func TestRecentEmpty(t *testing.T) {
	got, err := openStore(t).Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %d", len(got))
	}
}
