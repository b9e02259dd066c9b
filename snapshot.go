package props

import (
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/google/uuid"
)

// Entry is a single key/value pair of a property table.
type Entry struct {
	Key   string `json:"key" msgpack:"key"`
	Value string `json:"value" msgpack:"value"`
}

// Table is the mutable key/value capability handed out by a Registry for the
// calling path. All methods are safe for concurrent use.
type Table interface {
	Get(key string) (string, bool)
	GetOr(key, fallback string) string
	Has(key string) bool
	Set(key, value string) (string, bool)
	Remove(key string) (string, bool)
	Keys() []string
	Entries() []Entry
	Len() int
	Clear()
	PutAll(values map[string]string)
	Replace(values map[string]string)
	Map() map[string]string
	Range(fn func(key, value string) bool)
}

var _ Table = (*Snapshot)(nil)

// Snapshot is an owned copy of a property table. It is the live view for the
// scope that owns it and is mutated in place while that scope is active.
// Enumeration follows insertion order.
type Snapshot struct {
	id      string
	mu      sync.RWMutex
	entries *linkedhashmap.Map
}

// NewSnapshot builds a snapshot holding the supplied entries in order. Later
// duplicates overwrite earlier values without changing their position.
func NewSnapshot(entries ...Entry) *Snapshot {
	s := &Snapshot{
		id:      uuid.NewString(),
		entries: linkedhashmap.New(),
	}
	for _, entry := range entries {
		s.entries.Put(entry.Key, entry.Value)
	}
	return s
}

// SnapshotFromMap builds a snapshot from values. Map iteration order is
// random, so the resulting enumeration order is unspecified.
func SnapshotFromMap(values map[string]string) *Snapshot {
	s := NewSnapshot()
	for key, value := range values {
		s.entries.Put(key, value)
	}
	return s
}

// ID returns the identifier assigned when the snapshot was created.
func (s *Snapshot) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Clone returns a deep copy with a fresh identifier.
func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot()
	if s == nil {
		return out
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	it := s.entries.Iterator()
	for it.Next() {
		out.entries.Put(it.Key(), it.Value())
	}
	return out
}

func (s *Snapshot) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(key)
}

// GetOr returns the value for key or fallback when key is absent.
func (s *Snapshot) GetOr(key, fallback string) string {
	if value, ok := s.Get(key); ok {
		return value
	}
	return fallback
}

func (s *Snapshot) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Set stores value under key and returns the previous value, if any.
func (s *Snapshot) Set(key, value string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, ok := s.lookup(key)
	s.entries.Put(key, value)
	return previous, ok
}

// Remove deletes key and returns the value it held, if any.
func (s *Snapshot) Remove(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, ok := s.lookup(key)
	if ok {
		s.entries.Remove(key)
	}
	return previous, ok
}

// Keys returns the keys in insertion order.
func (s *Snapshot) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, s.entries.Size())
	for _, key := range s.entries.Keys() {
		keys = append(keys, key.(string))
	}
	return keys
}

// Entries returns a copy of every pair in insertion order.
func (s *Snapshot) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, s.entries.Size())
	it := s.entries.Iterator()
	for it.Next() {
		out = append(out, Entry{Key: it.Key().(string), Value: it.Value().(string)})
	}
	return out
}

func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Size()
}

func (s *Snapshot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Clear()
}

// PutAll copies every pair of values into the snapshot.
func (s *Snapshot) PutAll(values map[string]string) {
	if len(values) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range values {
		s.entries.Put(key, value)
	}
}

// Merge appends entries in order, overwriting existing keys in place.
func (s *Snapshot) Merge(entries ...Entry) {
	if len(entries) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		s.entries.Put(entry.Key, entry.Value)
	}
}

// Replace discards the current contents and stores values instead.
func (s *Snapshot) Replace(values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Clear()
	for key, value := range values {
		s.entries.Put(key, value)
	}
}

// Reset discards the current contents and stores entries in order.
func (s *Snapshot) Reset(entries ...Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Clear()
	for _, entry := range entries {
		s.entries.Put(entry.Key, entry.Value)
	}
}

// Map returns a detached map copy of the snapshot.
func (s *Snapshot) Map() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, s.entries.Size())
	it := s.entries.Iterator()
	for it.Next() {
		out[it.Key().(string)] = it.Value().(string)
	}
	return out
}

// Range calls fn for every pair in insertion order until fn returns false.
// fn runs on a copy, so it may call back into the snapshot.
func (s *Snapshot) Range(fn func(key, value string) bool) {
	if fn == nil {
		return
	}
	for _, entry := range s.Entries() {
		if !fn(entry.Key, entry.Value) {
			return
		}
	}
}

func (s *Snapshot) lookup(key string) (string, bool) {
	value, ok := s.entries.Get(key)
	if !ok {
		return "", false
	}
	return value.(string), true
}
