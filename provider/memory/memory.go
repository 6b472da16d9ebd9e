// Package memory is an in-process [goSession.UserProvider] for tests, examples,
// and single-node setups. It honors the same contract as a real store: lookup
// misses are goSession.ErrUserNotFound, duplicate emails are
// goSession.ErrProviderDuplicateEmail, and revocation increments are atomic
// under the provider's lock.
package memory

import (
	"context"
	"sync"

	goSession "github.com/MrEthical07/goSession"
)

// Provider is a mutex-guarded map store. Safe for concurrent use.
type Provider struct {
	mu      sync.RWMutex
	byID    map[string]goSession.User
	byEmail map[string]string
}

// New returns an empty provider.
func New() *Provider {
	return &Provider{
		byID:    make(map[string]goSession.User),
		byEmail: make(map[string]string),
	}
}

// GetUserByEmail looks a user up by exact email match.
func (p *Provider) GetUserByEmail(_ context.Context, email string) (goSession.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	id, ok := p.byEmail[email]
	if !ok {
		return goSession.User{}, goSession.ErrUserNotFound
	}
	return p.byID[id], nil
}

// GetUserByID looks a user up by id.
func (p *Provider) GetUserByID(_ context.Context, userID string) (goSession.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	user, ok := p.byID[userID]
	if !ok {
		return goSession.User{}, goSession.ErrUserNotFound
	}
	return user, nil
}

// CreateUser persists a new user with a revocation count of zero.
func (p *Provider) CreateUser(_ context.Context, input goSession.CreateUserInput) (goSession.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byEmail[input.Email]; exists {
		return goSession.User{}, goSession.ErrProviderDuplicateEmail
	}
	if _, exists := p.byID[input.UserID]; exists {
		return goSession.User{}, goSession.ErrProviderDuplicateEmail
	}

	user := goSession.User{
		ID:           input.UserID,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
	}
	p.byID[user.ID] = user
	p.byEmail[user.Email] = user.ID

	return user, nil
}

// UpdatePasswordHash replaces the stored hash for userID.
func (p *Provider) UpdatePasswordHash(_ context.Context, userID, newHash string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	user, ok := p.byID[userID]
	if !ok {
		return goSession.ErrUserNotFound
	}
	user.PasswordHash = newHash
	p.byID[userID] = user
	return nil
}

// IncrementRevocation adds exactly one to the user's revocation counter under
// the provider lock and returns the new value. Two concurrent calls sum to two.
func (p *Provider) IncrementRevocation(_ context.Context, userID string) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	user, ok := p.byID[userID]
	if !ok {
		return 0, goSession.ErrUserNotFound
	}
	user.RevocationCount++
	p.byID[userID] = user
	return user.RevocationCount, nil
}

// Put seeds a user record directly, bypassing hashing. Test helper.
func (p *Provider) Put(user goSession.User) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.byID[user.ID] = user
	p.byEmail[user.Email] = user.ID
}
