package memory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// DefaultCapacity is the number of slots kept when no capacity is configured.
const DefaultCapacity = 5

// ErrIndexOutOfRange is returned by Delete for an index outside [0, Len()).
var ErrIndexOutOfRange = errors.New("memory index out of range")

// OverflowPolicy decides which entry is dropped when a save exceeds capacity.
type OverflowPolicy string

const (
	// DropNewest keeps the first K entries after appending, so a save into a full
	// store is discarded and the earliest memories are protected.
	DropNewest OverflowPolicy = "drop_newest"
	// DropOldest evicts from the front, keeping the K most recent entries.
	DropOldest OverflowPolicy = "drop_oldest"
)

// ParseOverflowPolicy maps a config value to a policy. Empty selects DropNewest.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch OverflowPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DropNewest:
		return DropNewest, nil
	case DropOldest:
		return DropOldest, nil
	default:
		return "", fmt.Errorf("unknown memory overflow policy %q", s)
	}
}

// Slot is one stored fact. Index is its current position and is only stable until
// the next mutation.
type Slot struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Store is a capacity-bounded, ordered list of facts. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	capacity int
	policy   OverflowPolicy
	texts    []string
}

// NewStore returns an empty store. capacity <= 0 selects DefaultCapacity; an empty
// policy selects DropNewest.
func NewStore(capacity int, policy OverflowPolicy) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if policy == "" {
		policy = DropNewest
	}
	return &Store{capacity: capacity, policy: policy, texts: make([]string, 0, capacity)}
}

// Capacity returns the maximum number of slots.
func (s *Store) Capacity() int { return s.capacity }

// Policy returns the overflow policy.
func (s *Store) Policy() OverflowPolicy { return s.policy }

// Len returns the number of stored slots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.texts)
}

// Save appends text and then enforces capacity. It reports whether the new entry
// is still present afterwards.
func (s *Store) Save(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.texts = append(s.texts, text)
	if len(s.texts) <= s.capacity {
		return true
	}
	switch s.policy {
	case DropOldest:
		s.texts = append(s.texts[:0:0], s.texts[len(s.texts)-s.capacity:]...)
		return true
	default:
		s.texts = s.texts[:s.capacity]
		return false
	}
}

// Delete removes the slot at index and returns its text. Later slots shift down by one.
func (s *Store) Delete(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.texts) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(s.texts))
	}
	removed := s.texts[index]
	s.texts = append(s.texts[:index], s.texts[index+1:]...)
	return removed, nil
}

// Slots returns the current slots in order.
func (s *Store) Slots() []Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Slot, len(s.texts))
	for i, t := range s.texts {
		out[i] = Slot{Index: i, Text: t}
	}
	return out
}

// Render formats the slots as "<index>: <text>" lines joined by newlines.
// An empty store renders as "".
func (s *Store) Render() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	for i, t := range s.texts {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i))
		b.WriteString(": ")
		b.WriteString(t)
	}
	return b.String()
}
