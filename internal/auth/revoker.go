package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryRevoker is the in-process TokenRevoker used when Redis is not
// configured. Entries are pruned lazily on read.
type MemoryRevoker struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{
		revoked: make(map[string]time.Time),
	}
}

func (m *MemoryRevoker) Revoke(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[token] = time.Now().Add(ttl)
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	expiry, ok := m.revoked[token]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if time.Now().After(expiry) {
		m.mu.Lock()
		delete(m.revoked, token)
		m.mu.Unlock()
		return false, nil
	}

	return true, nil
}
