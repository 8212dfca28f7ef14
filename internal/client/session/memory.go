package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/otpnotes/internal/client/models"
)

// MemoryStore is a process-local Store. It encodes exactly like SQLiteStore
// so both behave the same on Load.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Save(_ context.Context, s models.Session) error {
	token, user, err := encode(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[KeyToken] = token
	m.data[KeyUser] = user
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return decode(m.data[KeyToken], m.data[KeyUser])
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, KeyToken)
	delete(m.data, KeyUser)
	return nil
}

// Put stores a raw value under key, bypassing encoding.
func (m *MemoryStore) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}
