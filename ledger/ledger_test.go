// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/pollsync/storage"
)

func TestLedger_EmptyStore(t *testing.T) {
	l := Load(storage.NewMemoryStore())

	if l.HasVoted("P1") {
		t.Error("Expected no vote on empty ledger")
	}
	if l.Len() != 0 {
		t.Errorf("Expected empty ledger, got %d entries", l.Len())
	}
}

func TestLedger_RecordAndReload(t *testing.T) {
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatal(err)
	}

	l := Load(store)
	if err := l.RecordLocalVote("P1", "O2"); err != nil {
		t.Fatalf("RecordLocalVote failed: %v", err)
	}
	if !l.HasVoted("P1") {
		t.Error("Expected HasVoted after recording")
	}

	reloaded := Load(store)
	if !reloaded.HasVoted("P1") {
		t.Error("Expected vote to survive reload")
	}
	if choice, _ := reloaded.Choice("P1"); choice != "O2" {
		t.Errorf("Expected choice O2, got %s", choice)
	}
}

func TestLedger_CorruptData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", "{not json"},
		{"wrong shape", `["P1","O1"]`},
		{"wrong value type", `{"P1": 3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			store.Set(StorageKey, []byte(tt.data))

			l := Load(store)
			if l.Len() != 0 {
				t.Errorf("Expected empty ledger from corrupt data, got %d entries", l.Len())
			}

			// Recording replaces the corrupt value
			if err := l.RecordLocalVote("P1", "O1"); err != nil {
				t.Fatal(err)
			}
			if !Load(store).HasVoted("P1") {
				t.Error("Expected fresh ledger to persist")
			}
		})
	}
}

func TestLedger_Idempotent(t *testing.T) {
	store := &countingStore{Store: storage.NewMemoryStore()}
	l := Load(store)

	for i := 0; i < 3; i++ {
		if err := l.RecordLocalVote("P1", "O1"); err != nil {
			t.Fatal(err)
		}
	}

	if store.sets != 1 {
		t.Errorf("Expected a single write for repeated identical votes, got %d", store.sets)
	}
	if l.Len() != 1 {
		t.Errorf("Expected one entry, got %d", l.Len())
	}
}

func TestLedger_DifferentChoiceKeepsFirst(t *testing.T) {
	store := &countingStore{Store: storage.NewMemoryStore()}
	l := Load(store)

	if err := l.RecordLocalVote("P1", "O1"); err != nil {
		t.Fatal(err)
	}
	if err := l.RecordLocalVote("P1", "O2"); !errors.Is(err, ErrAlreadyRecorded) {
		t.Errorf("Expected ErrAlreadyRecorded, got %v", err)
	}

	if choice, _ := l.Choice("P1"); choice != "O1" {
		t.Errorf("Expected first choice O1 kept, got %s", choice)
	}
	if choice, _ := Load(store).Choice("P1"); choice != "O1" {
		t.Errorf("Expected persisted choice O1, got %s", choice)
	}
	if store.sets != 1 {
		t.Errorf("Expected a single write, got %d", store.sets)
	}
}

func TestLedger_PersistFailureLeavesLedgerUnchanged(t *testing.T) {
	store := &countingStore{Store: storage.NewMemoryStore(), fail: true}
	l := Load(store)

	if err := l.RecordLocalVote("P1", "O1"); err == nil {
		t.Fatal("Expected persistence error")
	}
	if l.HasVoted("P1") {
		t.Error("Expected ledger unchanged after failed write")
	}
}

func TestLedger_SnapshotIsCopy(t *testing.T) {
	l := Load(storage.NewMemoryStore())
	l.RecordLocalVote("P1", "O1")

	snap := l.Snapshot()
	snap["P2"] = "O9"

	if l.HasVoted("P2") {
		t.Error("Snapshot mutation leaked into ledger")
	}
}

func TestLedger_RequiresPollID(t *testing.T) {
	l := Load(storage.NewMemoryStore())
	if err := l.RecordLocalVote("", "O1"); err == nil {
		t.Error("Expected error for empty poll id")
	}
}

type countingStore struct {
	storage.Store
	sets int
	fail bool
}

func (s *countingStore) Set(key string, value []byte) error {
	s.sets++
	if s.fail {
		return errors.New("disk full")
	}
	return s.Store.Set(key, value)
}
