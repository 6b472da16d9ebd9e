package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/token"
)

// User is the account record this subsystem authenticates. It is owned by the
// external user store and referenced, not owned, here: the engine reads it through
// [UserProvider] and mutates nothing except the revocation counter (via
// [UserProvider.IncrementRevocation]).
type User struct {
	ID           string
	Email        string
	PasswordHash string

	// RevocationCount starts at 0 and only ever increases. A refresh token is
	// honored only while its embedded count equals this value.
	RevocationCount uint64
}

// AuthTokens is the access+refresh pair returned by sign-in, sign-up, and refresh.
// It carries no identity of its own beyond what is cryptographically bound inside
// the tokens.
type AuthTokens = token.Pair

// CreateUserInput is the input for [UserProvider.CreateUser]. The engine generates
// UserID and PasswordHash; the provider persists the record with a revocation
// count of zero.
type CreateUserInput struct {
	UserID       string
	Email        string
	PasswordHash string
}

// UserProvider is the interface callers implement to integrate goSession with
// their user database. Email case policy is the provider's: the engine passes
// emails through as given.
//
// All methods are request-scoped I/O. Lookup misses return [ErrUserNotFound]
// (CreateUser returns [ErrProviderDuplicateEmail] on a unique-key conflict);
// any other error is treated as store unavailability for the in-flight request.
//
// IncrementRevocation must be an atomic increment performed by the store itself,
// not a read-modify-write: two concurrent calls for the same user must sum to
// exactly two increments. It returns the new count.
type UserProvider interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID string) (User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (User, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
	IncrementRevocation(ctx context.Context, userID string) (uint64, error)
}
