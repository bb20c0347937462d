// Package session keeps finished tailoring sessions in memory so a user can
// revisit earlier results within a run. The store is capacity-bounded and
// evicts least-recently-used entries.
package session

import (
	"container/list"
	"sync"

	"github.com/jobpilot/jobpilot/internal/tailor"
)

const DefaultCapacity = 128

// Store is an LRU-bounded session store. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type entry struct {
	key     string
	session *tailor.Session
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// sessions are scoped per user so identical keys from different users never
// collide. The separator cannot appear in either part.
func storeKey(userID, key string) string {
	return userID + "\x00" + key
}

// Put stores a session, evicting the least-recently-used entry when full.
func (s *Store) Put(userID, key string, session *tailor.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := storeKey(userID, key)
	if elem, ok := s.entries[k]; ok {
		elem.Value.(*entry).session = session
		s.order.MoveToFront(elem)
		return
	}

	s.entries[k] = s.order.PushFront(&entry{key: k, session: session})

	if s.order.Len() > s.capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*entry).key)
	}
}

// Get returns the stored session and marks it recently used.
func (s *Store) Get(userID, key string) (*tailor.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[storeKey(userID, key)]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(elem)
	return elem.Value.(*entry).session, true
}

// Len reports the number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
