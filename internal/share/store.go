package share

import (
	"encoding/json"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"

	"call-rewind-go/internal/types"
)

var bucketShares = []byte("shares")

// Store persists sanitized reviews keyed by their opaque share id.
type Store interface {
	Save(id string, review types.YearReview) error
	Get(id string) (types.YearReview, error)
	Exists(id string) (bool, error)
}

// boltStore implements Store on a single bbolt file.
type boltStore struct {
	db *bolt.DB
}

// NewBoltStore wires a Store onto an open bbolt database, creating the
// shares bucket on first use.
func NewBoltStore(db *bolt.DB) (Store, error) {
	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketShares)
		return createErr
	}); err != nil {
		return nil, fmt.Errorf("create shares bucket: %w", err)
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Save(id string, review types.YearReview) error {
	data, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("marshal share: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketShares).Put([]byte(id), data)
	})
}

func (s *boltStore) Get(id string) (types.YearReview, error) {
	var review types.YearReview
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketShares).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &review)
	})
	if err != nil {
		return types.YearReview{}, err
	}
	return review, nil
}

func (s *boltStore) Exists(id string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketShares).Get([]byte(id)) != nil
		return nil
	})
	return found, err
}

// memoryStore keeps shares in a map. Useful for tests.
type memoryStore struct {
	mu     sync.RWMutex
	shares map[string]types.YearReview
}

func NewMemoryStore() Store {
	return &memoryStore{shares: make(map[string]types.YearReview)}
}

func (s *memoryStore) Save(id string, review types.YearReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shares[id] = review
	return nil
}

func (s *memoryStore) Get(id string) (types.YearReview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	review, ok := s.shares[id]
	if !ok {
		return types.YearReview{}, ErrNotFound
	}
	return review, nil
}

func (s *memoryStore) Exists(id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.shares[id]
	return ok, nil
}
