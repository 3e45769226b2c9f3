package repository

import (
	"container/list"
	"context"
	"sync"

	"github.com/brokerdesk/bd-wap/assistant/domain"
)

// MemoryHistoryStore is an in-memory implementation of HistoryStore.
// Used as fallback when Valkey is not enabled. Retention is bounded on
// both axes: each contact keeps at most maxTurns recent turns, and at
// most maxContacts contacts are tracked, evicting the least recently
// used contact when the cap is reached.
type MemoryHistoryStore struct {
	mu          sync.Mutex
	maxTurns    int
	maxContacts int
	order       *list.List               // front = most recently used
	contacts    map[string]*list.Element // contactID -> *historyEntry
}

type historyEntry struct {
	contactID string
	turns     []domain.ChatTurn
}

func NewMemoryHistoryStore(maxTurns, maxContacts int) *MemoryHistoryStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	if maxContacts <= 0 {
		maxContacts = 500
	}
	return &MemoryHistoryStore{
		maxTurns:    maxTurns,
		maxContacts: maxContacts,
		order:       list.New(),
		contacts:    make(map[string]*list.Element),
	}
}

func (s *MemoryHistoryStore) Load(ctx context.Context, contactID string) ([]domain.ChatTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.contacts[contactID]
	if !ok {
		return nil, nil
	}
	s.order.MoveToFront(elem)

	entry := elem.Value.(*historyEntry)
	out := make([]domain.ChatTurn, len(entry.turns))
	copy(out, entry.turns)
	return out, nil
}

func (s *MemoryHistoryStore) Append(ctx context.Context, contactID string, turns ...domain.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.contacts[contactID]
	if !ok {
		elem = s.order.PushFront(&historyEntry{contactID: contactID})
		s.contacts[contactID] = elem
		s.evictOverflow()
	} else {
		s.order.MoveToFront(elem)
	}

	entry := elem.Value.(*historyEntry)
	entry.turns = append(entry.turns, turns...)
	if excess := len(entry.turns) - s.maxTurns; excess > 0 {
		entry.turns = entry.turns[excess:]
	}
	return nil
}

func (s *MemoryHistoryStore) Clear(ctx context.Context, contactID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.contacts[contactID]; ok {
		s.order.Remove(elem)
		delete(s.contacts, contactID)
	}
	return nil
}

// evictOverflow drops least recently used contacts until the cap holds.
// Caller must hold the lock.
func (s *MemoryHistoryStore) evictOverflow() {
	for len(s.contacts) > s.maxContacts {
		oldest := s.order.Back()
		if oldest == nil {
			return
		}
		entry := oldest.Value.(*historyEntry)
		s.order.Remove(oldest)
		delete(s.contacts, entry.contactID)
	}
}

// Len reports how many contacts are currently tracked.
func (s *MemoryHistoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts)
}
