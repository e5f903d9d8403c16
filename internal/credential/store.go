// Package credential persists the bearer token and the cached identity of one
// client session over a pluggable key-value backend.
package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
)

// Stable storage keys
const (
	TokenKey = "auth_token"
	UserKey  = "user_data"
)

// Backend is a string key-value store. Set writes all pairs atomically and
// Delete removes all keys atomically with respect to concurrent Gets.
type Backend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// Store is the credential store of a single session
type Store struct {
	backend Backend
}

// NewStore creates a store over backend
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// SetToken stores the bearer token
func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.backend.Set(ctx, map[string]string{TokenKey: token})
}

// GetToken returns the bearer token, or "" when absent
func (s *Store) GetToken(ctx context.Context) (string, error) {
	raw, found, err := s.backend.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if !found || isAbsent(raw) {
		return "", nil
	}
	return raw, nil
}

// SetUser stores the identity as JSON
func (s *Store) SetUser(ctx context.Context, id domain.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	return s.backend.Set(ctx, map[string]string{UserKey: string(data)})
}

// GetUser returns the cached identity, or nil when absent or unreadable
func (s *Store) GetUser(ctx context.Context) (*domain.Identity, error) {
	raw, found, err := s.backend.Get(ctx, UserKey)
	if err != nil {
		return nil, fmt.Errorf("read identity: %w", err)
	}
	if !found || isAbsent(raw) {
		return nil, nil
	}

	var id domain.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return nil, nil
	}
	return &id, nil
}

// Save writes token and identity together
func (s *Store) Save(ctx context.Context, token string, id domain.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	return s.backend.Set(ctx, map[string]string{TokenKey: token, UserKey: string(data)})
}

// Clear removes token and identity in one backend call
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Delete(ctx, TokenKey, UserKey)
}

// isAbsent treats empty and the serialized forms of undefined/null as missing
func isAbsent(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "", "undefined", "null":
		return true
	}
	return false
}
