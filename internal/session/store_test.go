package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/jobpilot/jobpilot/internal/tailor"
)

func sessionWithID(id string) *tailor.Session {
	return &tailor.Session{ID: id, Status: tailor.StatusSucceeded}
}

func TestStorePutGet(t *testing.T) {
	store := NewStore(4)
	store.Put("alice", "job-1", sessionWithID("s1"))

	got, ok := store.Get("alice", "job-1")
	if !ok || got.ID != "s1" {
		t.Fatalf("Get = %v ok %v, want s1 true", got, ok)
	}

	if _, ok := store.Get("alice", "job-2"); ok {
		t.Fatal("unexpected hit for unknown key")
	}
}

func TestStoreScopesByUser(t *testing.T) {
	store := NewStore(4)
	store.Put("alice", "job-1", sessionWithID("alice-session"))
	store.Put("bob", "job-1", sessionWithID("bob-session"))

	got, ok := store.Get("alice", "job-1")
	if !ok || got.ID != "alice-session" {
		t.Fatalf("alice got %v, want alice-session", got)
	}
	got, ok = store.Get("bob", "job-1")
	if !ok || got.ID != "bob-session" {
		t.Fatalf("bob got %v, want bob-session", got)
	}
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := NewStore(2)
	store.Put("u", "a", sessionWithID("sa"))
	store.Put("u", "b", sessionWithID("sb"))

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := store.Get("u", "a"); !ok {
		t.Fatal("expected hit for a")
	}

	store.Put("u", "c", sessionWithID("sc"))

	if _, ok := store.Get("u", "b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := store.Get("u", "a"); !ok {
		t.Fatal("a should have survived eviction")
	}
	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}
}

func TestStoreReplaceDoesNotGrow(t *testing.T) {
	store := NewStore(2)
	store.Put("u", "a", sessionWithID("v1"))
	store.Put("u", "a", sessionWithID("v2"))

	if store.Len() != 1 {
		t.Fatalf("Len = %d, want 1", store.Len())
	}
	got, _ := store.Get("u", "a")
	if got.ID != "v2" {
		t.Fatalf("got %s, want v2", got.ID)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore(16)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("job-%d", j%20)
				store.Put("u", key, sessionWithID(key))
				store.Get("u", key)
			}
		}()
	}
	wg.Wait()

	if store.Len() > 16 {
		t.Fatalf("Len = %d exceeds capacity", store.Len())
	}
}
