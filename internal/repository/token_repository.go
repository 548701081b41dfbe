package repository

import (
	"context"
	"sync"
	"time"

	"screener-engine/internal/domain"
)

// TokenStore persists tokens beyond the process lifetime.
type TokenStore interface {
	Register(ctx context.Context, token string) error
	Unregister(ctx context.Context, token string) error
	LoadAll(ctx context.Context) ([]string, error)
}

// TokenRepository keeps device tokens in memory, writing through to an
// optional store.
type TokenRepository struct {
	tokens map[string]domain.DeviceToken
	store  TokenStore
	mu     sync.RWMutex
}

func NewTokenRepository(store TokenStore) *TokenRepository {
	return &TokenRepository{
		tokens: make(map[string]domain.DeviceToken),
		store:  store,
	}
}

// Load fills the cache from the store.
func (r *TokenRepository) Load(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	tokens, err := r.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, t := range tokens {
		r.tokens[t] = domain.DeviceToken{Token: t, RegisteredAt: now}
	}
	return nil
}

// Register adds or refreshes a device token.
func (r *TokenRepository) Register(ctx context.Context, token string) error {
	if r.store != nil {
		if err := r.store.Register(ctx, token); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = domain.DeviceToken{Token: token, RegisteredAt: time.Now()}
	return nil
}

// Unregister removes a device token.
func (r *TokenRepository) Unregister(ctx context.Context, token string) error {
	if r.store != nil {
		if err := r.store.Unregister(ctx, token); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

// GetAll returns all registered tokens.
func (r *TokenRepository) GetAll() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tokens := make([]string, 0, len(r.tokens))
	for token := range r.tokens {
		tokens = append(tokens, token)
	}
	return tokens
}

func (r *TokenRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
