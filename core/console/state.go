package console

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Keys a session persists in its namespace.
const (
	stateKeyHistory = "history"
	stateKeyCwd     = "cwd"
	stateKeyEnv     = "env"
)

// StateStore is a namespaced key/value store. Keys are addressed as
// "<namespace>:<key>"; namespaces are independent and child namespaces
// are referenced by key, not by object back-references.
type StateStore interface {
	Get(namespace, key string, out interface{}) (bool, error)
	Put(namespace, key string, value interface{}) error
	Delete(namespace, key string) error
	// Namespaces lists every namespace that holds at least one key.
	Namespaces() []string
}

// MemoryStateStore keeps all state in RAM. It is the default when a
// session does not opt into durability.
type MemoryStateStore struct {
	mu    sync.RWMutex
	areas map[string]map[string]json.RawMessage
}

var _ StateStore = (*MemoryStateStore)(nil)

// NewMemoryStateStore creates an empty store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{areas: make(map[string]map[string]json.RawMessage)}
}

// Get implements StateStore.Get.
func (s *MemoryStateStore) Get(namespace, key string, out interface{}) (bool, error) {
	s.mu.RLock()
	raw, ok := s.areas[namespace][key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

// Put implements StateStore.Put.
func (s *MemoryStateStore) Put(namespace, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	area, ok := s.areas[namespace]
	if !ok {
		area = make(map[string]json.RawMessage)
		s.areas[namespace] = area
	}
	area[key] = raw
	return nil
}

// Delete implements StateStore.Delete.
func (s *MemoryStateStore) Delete(namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.areas[namespace], key)
	return nil
}

// Namespaces implements StateStore.Namespaces.
func (s *MemoryStateStore) Namespaces() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for ns, area := range s.areas {
		if len(area) > 0 {
			out = append(out, ns)
		}
	}
	return out
}

// BoltStateStore persists state in a bbolt database, one bucket per
// namespace with JSON values.
type BoltStateStore struct {
	db *bolt.DB
}

var _ StateStore = (*BoltStateStore)(nil)

// OpenBoltStateStore opens (creating if needed) a store at path.
func OpenBoltStateStore(path string) (*BoltStateStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	return &BoltStateStore{db: db}, nil
}

// Close releases the underlying database.
func (s *BoltStateStore) Close() error {
	return s.db.Close()
}

// Get implements StateStore.Get.
func (s *BoltStateStore) Get(namespace, key string, out interface{}) (bool, error) {
	var raw []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))
		if bucket == nil {
			return nil
		}
		if v := bucket.Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return false, err
	}

	if raw == nil {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

// Put implements StateStore.Put.
func (s *BoltStateStore) Put(namespace, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), raw)
	})
}

// Delete implements StateStore.Delete.
func (s *BoltStateStore) Delete(namespace, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(key))
	})
}

// Namespaces implements StateStore.Namespaces.
func (s *BoltStateStore) Namespaces() []string {
	var out []string
	_ = s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			if k, _ := b.Cursor().First(); k != nil {
				out = append(out, string(name))
			}
			return nil
		})
	})
	return out
}
