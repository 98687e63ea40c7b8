package kv

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreGetSetDel(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, "teacher:1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Set(ctx, "teacher:1", []byte(`{"id":"1"}`)); err != nil {
		t.Fatalf("set error: %v", err)
	}
	value, err := store.Get(ctx, "teacher:1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if !bytes.Equal(value, []byte(`{"id":"1"}`)) {
		t.Fatalf("unexpected value %s", value)
	}
	if err := store.Del(ctx, "teacher:1"); err != nil {
		t.Fatalf("del error: %v", err)
	}
	if _, err := store.Get(ctx, "teacher:1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStorePrefixScan(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seed := map[string]string{
		"announcement:b":   `{"id":"b"}`,
		"announcement:a":   `{"id":"a"}`,
		"teacher:1":        `{"id":"1"}`,
		"study_material:1": `{"id":"m1"}`,
	}
	for key, value := range seed {
		if err := store.Set(ctx, key, []byte(value)); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	values, err := store.GetByPrefix(ctx, PrefixAnnouncement)
	if err != nil {
		t.Fatalf("prefix scan error: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("expected 2 announcements, got %d", len(values))
	}
	// Key order makes the scan deterministic.
	if string(values[0]) != `{"id":"a"}` || string(values[1]) != `{"id":"b"}` {
		t.Fatalf("unexpected scan order: %s, %s", values[0], values[1])
	}

	values, err = store.GetByPrefix(ctx, "gallery_photo:")
	if err != nil {
		t.Fatalf("prefix scan error: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected empty scan, got %d values", len(values))
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	value := []byte(`{"id":"1"}`)
	if err := store.Set(ctx, "teacher:1", value); err != nil {
		t.Fatalf("set error: %v", err)
	}
	value[0] = 'X'
	stored, err := store.Get(ctx, "teacher:1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if stored[0] != '{' {
		t.Fatalf("store aliased caller buffer")
	}
	stored[1] = 'X'
	again, err := store.Get(ctx, "teacher:1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if again[1] != '"' {
		t.Fatalf("store leaked internal buffer")
	}
}
