package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"montessori/server/internal/kv"
	"montessori/server/internal/model"
)

func putEntry(t *testing.T, store kv.Store, entry model.TimeEntry) {
	t.Helper()
	ctx := context.Background()
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal entry: %v", err)
	}
	if err := store.Set(ctx, kv.TimeEntryKey(entry.ID), data); err != nil {
		t.Fatalf("set entry: %v", err)
	}
	pointer, err := json.Marshal(entry.ID)
	if err != nil {
		t.Fatalf("marshal pointer: %v", err)
	}
	if err := store.Set(ctx, kv.ActiveTimeKey(entry.UserID), pointer); err != nil {
		t.Fatalf("set pointer: %v", err)
	}
}

func TestCloseStaleEntries(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	stale := model.TimeEntry{
		ID:      "entry-stale",
		UserID:  "user-stale",
		Email:   "stale@montessori.edu",
		ClockIn: now.Add(-20 * time.Hour).Format(time.RFC3339),
		Date:    "2026-03-09",
	}
	fresh := model.TimeEntry{
		ID:      "entry-fresh",
		UserID:  "user-fresh",
		Email:   "fresh@montessori.edu",
		ClockIn: now.Add(-2 * time.Hour).Format(time.RFC3339),
		Date:    "2026-03-10",
	}
	putEntry(t, store, stale)
	putEntry(t, store, fresh)

	closed, err := CloseStaleEntries(ctx, store, now, 14*time.Hour)
	if err != nil {
		t.Fatalf("CloseStaleEntries: %v", err)
	}
	if closed != 1 {
		t.Fatalf("expected 1 closed entry, got %d", closed)
	}

	data, err := store.Get(ctx, kv.TimeEntryKey(stale.ID))
	if err != nil {
		t.Fatalf("get stale entry: %v", err)
	}
	var got model.TimeEntry
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal stale entry: %v", err)
	}
	if !got.AutoClosed {
		t.Fatalf("expected auto_closed flag")
	}
	if got.HoursWorked != 14 {
		t.Fatalf("expected hours capped at the maximum shift, got %v", got.HoursWorked)
	}
	wantOut := now.Add(-20 * time.Hour).Add(14 * time.Hour).Format(time.RFC3339)
	if got.ClockOut != wantOut {
		t.Fatalf("clock_out = %s, want %s", got.ClockOut, wantOut)
	}

	if _, err := store.Get(ctx, kv.ActiveTimeKey(stale.UserID)); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected stale pointer removed, got %v", err)
	}
	if _, err := store.Get(ctx, kv.ActiveTimeKey(fresh.UserID)); err != nil {
		t.Fatalf("expected fresh pointer untouched, got %v", err)
	}
}

func TestCloseStaleEntriesSkipsMalformedPointer(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	if err := store.Set(ctx, kv.ActiveTimeKey("user-x"), []byte(`{not json`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	closed, err := CloseStaleEntries(ctx, store, time.Now().UTC(), 14*time.Hour)
	if err != nil {
		t.Fatalf("CloseStaleEntries: %v", err)
	}
	if closed != 0 {
		t.Fatalf("expected 0 closed entries, got %d", closed)
	}
}

func TestCloseStaleEntriesNothingActive(t *testing.T) {
	closed, err := CloseStaleEntries(context.Background(), kv.NewMemoryStore(), time.Now().UTC(), 14*time.Hour)
	if err != nil {
		t.Fatalf("CloseStaleEntries: %v", err)
	}
	if closed != 0 {
		t.Fatalf("expected 0 closed entries, got %d", closed)
	}
}
