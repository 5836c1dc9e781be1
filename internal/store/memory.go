package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is an in-memory Store used in tests and local development.
// It honors the same semantics as the Postgres implementation, including
// key expiry.
type Memory struct {
	mu      sync.Mutex
	kv      map[string]memEntry
	lists   map[string][][]byte
	sets    map[string]map[string]struct{}
	indexes map[string]map[string]float64
}

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		kv:      make(map[string]memEntry),
		lists:   make(map[string][][]byte),
		sets:    make(map[string]map[string]struct{}),
		indexes: make(map[string]map[string]float64),
	}
}

func (s *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.kv[key]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(s.kv, key)
		return nil, nil
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

func (s *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.kv[key] = entry
	return nil
}

func (s *Memory) ListAppend(ctx context.Context, key string, items [][]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		value := make([]byte, len(item))
		copy(value, item)
		s.lists[key] = append(s.lists[key], value)
	}
	return len(s.lists[key]), nil
}

func (s *Memory) ListRange(ctx context.Context, key string, offset, limit int) ([][]byte, error) {
	if offset < 0 {
		return nil, fmt.Errorf("offset must be non-negative, got %d", offset)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[key]
	if offset >= len(list) {
		return nil, nil
	}
	end := len(list)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}

	items := make([][]byte, 0, end-offset)
	for _, item := range list[offset:end] {
		value := make([]byte, len(item))
		copy(value, item)
		items = append(items, value)
	}
	return items, nil
}

func (s *Memory) ListLen(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists[key]), nil
}

func (s *Memory) SetAdd(ctx context.Context, key, member string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.sets[key]
	if !ok {
		members = make(map[string]struct{})
		s.sets[key] = members
	}
	if _, exists := members[member]; exists {
		return false, nil
	}
	members[member] = struct{}{}
	return true, nil
}

func (s *Memory) SetCard(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets[key]), nil
}

func (s *Memory) IndexAdd(ctx context.Context, key, member string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, ok := s.indexes[key]
	if !ok {
		index = make(map[string]float64)
		s.indexes[key] = index
	}
	index[member] = score
	return nil
}

func (s *Memory) IndexRangeDesc(ctx context.Context, key string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexes[key]
	members := make([]string, 0, len(index))
	for member := range index {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool {
		if index[members[i]] != index[members[j]] {
			return index[members[i]] > index[members[j]]
		}
		return members[i] < members[j]
	})
	if limit >= 0 && limit < len(members) {
		members = members[:limit]
	}
	return members, nil
}
