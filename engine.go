package goSession

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/internal/rate"
	"github.com/MrEthical07/goSession/password"
	"github.com/MrEthical07/goSession/token"
	"github.com/google/uuid"
)

// Engine is the session authentication engine. Construct it through
// [Builder.Build]; all methods are then safe for concurrent use.
//
// The engine is stateless per request. The only shared mutable resource it
// touches is the user store's revocation counter, and that mutation is
// delegated to [UserProvider.IncrementRevocation].
type Engine struct {
	config       Config
	userProvider UserProvider
	tokens       *token.Manager
	passwordHash *password.Hasher
	rateLimiter  *rate.Limiter
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close flushes and stops the audit dispatcher. Safe to call more than once.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AccessTTL returns the configured access-token lifetime.
func (e *Engine) AccessTTL() time.Duration {
	return e.config.JWT.AccessTTL
}

// RefreshTTL returns the configured refresh-token lifetime.
func (e *Engine) RefreshTTL() time.Duration {
	return e.config.JWT.RefreshTTL
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

// SignUp creates an account and signs the caller in: it rejects a taken email
// with [ErrAccountExists], hashes the password, persists the user with a
// revocation count of zero, and issues a token pair bound to that count.
func (e *Engine) SignUp(ctx context.Context, email, pass string) (*User, AuthTokens, error) {
	if e == nil || e.passwordHash == nil || e.tokens == nil {
		return nil, AuthTokens{}, ErrEngineNotReady
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, AuthTokens{}, ErrSignUpInvalid
	}

	hash, err := e.passwordHash.Hash(pass)
	if err != nil {
		if errors.Is(err, password.ErrTooShort) {
			e.metricInc(MetricSignUpFailure)
			e.emitAudit(ctx, auditEventSignUpFailure, false, "", ErrPasswordPolicy, func() map[string]string {
				return map[string]string{
					"identifier": email,
					"reason":     "password_policy",
				}
			})
			return nil, AuthTokens{}, ErrPasswordPolicy
		}
		return nil, AuthTokens{}, err
	}

	// Pre-check keeps the common duplicate path cheap; the provider's
	// unique-key error still covers the race with a concurrent sign-up.
	if _, err := e.userProvider.GetUserByEmail(ctx, email); err == nil {
		return nil, AuthTokens{}, e.failSignUpDuplicate(ctx, email)
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, AuthTokens{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	user, err := e.userProvider.CreateUser(ctx, CreateUserInput{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrProviderDuplicateEmail) || errors.Is(err, ErrAccountExists) {
			return nil, AuthTokens{}, e.failSignUpDuplicate(ctx, email)
		}
		return nil, AuthTokens{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	pair, err := e.tokens.IssuePair(user.ID, user.RevocationCount)
	if err != nil {
		e.metricInc(MetricSignUpFailure)
		e.emitAudit(ctx, auditEventSignUpFailure, false, user.ID, err, nil)
		return nil, AuthTokens{}, err
	}

	e.metricInc(MetricSignUpSuccess)
	e.emitAudit(ctx, auditEventSignUpSuccess, true, user.ID, nil, func() map[string]string {
		return map[string]string{"identifier": email}
	})

	return &user, pair, nil
}

func (e *Engine) failSignUpDuplicate(ctx context.Context, email string) error {
	e.metricInc(MetricSignUpDuplicate)
	e.emitAudit(ctx, auditEventSignUpDuplicate, false, "", ErrAccountExists, func() map[string]string {
		return map[string]string{"identifier": email}
	})
	return ErrAccountExists
}

// SignIn validates the email/password pair and issues a token pair bound to the
// user's current revocation count. Unknown email and wrong password produce the
// identical [ErrInvalidCredentials]; the distinction exists only in audit
// metadata, never in anything the caller can observe.
func (e *Engine) SignIn(ctx context.Context, email, pass string) (*User, AuthTokens, error) {
	if e == nil || e.passwordHash == nil || e.tokens == nil {
		return nil, AuthTokens{}, ErrEngineNotReady
	}

	ip := clientIPFromContext(ctx)

	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckLogin(ctx, email, ip); err != nil {
			return nil, AuthTokens{}, e.failSignInRateLimited(ctx, email, "")
		}
	}

	if pass == "" {
		return nil, AuthTokens{}, e.failSignIn(ctx, email, ip, "", "empty_password")
	}

	user, err := e.userProvider.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, AuthTokens{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return nil, AuthTokens{}, e.failSignIn(ctx, email, ip, "", "user_not_found")
	}

	ok, err := e.passwordHash.Verify(pass, user.PasswordHash)
	if err != nil || !ok {
		return nil, AuthTokens{}, e.failSignIn(ctx, email, ip, user.ID, "password_mismatch")
	}

	if e.config.Password.UpgradeOnLogin {
		e.maybeUpgradeHash(ctx, user.ID, pass, user.PasswordHash)
	}

	pair, err := e.tokens.IssuePair(user.ID, user.RevocationCount)
	if err != nil {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignInFailure, false, user.ID, err, nil)
		return nil, AuthTokens{}, err
	}

	if e.rateLimiter != nil {
		_ = e.rateLimiter.ResetLogin(ctx, email, ip)
	}

	e.metricInc(MetricSignInSuccess)
	e.emitAudit(ctx, auditEventSignInSuccess, true, user.ID, nil, func() map[string]string {
		return map[string]string{"identifier": email}
	})

	return &user, pair, nil
}

// failSignIn records a credential failure and returns the uniform error. When a
// throttle is configured, the failed attempt is charged first and may convert
// the outcome into [ErrLoginRateLimited].
func (e *Engine) failSignIn(ctx context.Context, email, ip, userID, reason string) error {
	if e.rateLimiter != nil {
		if err := e.rateLimiter.RecordLoginFailure(ctx, email, ip); err != nil {
			return e.failSignInRateLimited(ctx, email, userID)
		}
	}

	e.metricInc(MetricSignInFailure)
	e.emitAudit(ctx, auditEventSignInFailure, false, userID, ErrInvalidCredentials, func() map[string]string {
		return map[string]string{
			"identifier": email,
			"reason":     reason,
		}
	})
	return ErrInvalidCredentials
}

func (e *Engine) failSignInRateLimited(ctx context.Context, email, userID string) error {
	e.metricInc(MetricSignInRateLimited)
	e.emitAudit(ctx, auditEventSignInRateLimited, false, userID, ErrLoginRateLimited, func() map[string]string {
		return map[string]string{"identifier": email}
	})
	e.emitRateLimit(ctx, "sign_in", func() map[string]string {
		return map[string]string{"identifier": email}
	})
	return ErrLoginRateLimited
}

// maybeUpgradeHash transparently rehashes the password when the stored hash
// was produced with weaker parameters. Best-effort: a store failure here must
// not fail the sign-in, the next one retries.
func (e *Engine) maybeUpgradeHash(ctx context.Context, userID, pass, storedHash string) {
	needs, err := e.passwordHash.NeedsRehash(storedHash)
	if err != nil || !needs {
		return
	}
	newHash, err := e.passwordHash.Hash(pass)
	if err != nil {
		return
	}
	_ = e.userProvider.UpdatePasswordHash(ctx, userID, newHash)
}

// Refresh is the standalone refresh path for clients that manage tokens
// themselves. It verifies refreshToken, requires the embedded revocation count
// to equal the user's current count, and mints a brand-new pair bound to that
// same count. Every failure short of store unavailability is the uniform
// [ErrRefreshInvalid]: a refresh token whose counter no longer matches is
// permanently dead, not pending reissue.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*User, AuthTokens, error) {
	if e == nil || e.tokens == nil {
		return nil, AuthTokens{}, ErrEngineNotReady
	}

	claims, err := e.tokens.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", ErrRefreshInvalid, func() map[string]string {
			return map[string]string{"reason": "verify_failed"}
		})
		return nil, AuthTokens{}, ErrRefreshInvalid
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckRefresh(ctx, claims.UserID); err != nil {
			e.metricInc(MetricRefreshRateLimited)
			e.emitAudit(ctx, auditEventRefreshRateLimited, false, claims.UserID, ErrRefreshRateLimited, nil)
			e.emitRateLimit(ctx, "refresh", func() map[string]string {
				return map[string]string{"user_id": claims.UserID}
			})
			return nil, AuthTokens{}, ErrRefreshRateLimited
		}
	}

	user, err := e.userProvider.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, AuthTokens{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, claims.UserID, ErrRefreshInvalid, func() map[string]string {
			return map[string]string{"reason": "user_not_found"}
		})
		return nil, AuthTokens{}, ErrRefreshInvalid
	}

	if user.RevocationCount != claims.RevocationCount {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, user.ID, ErrRefreshInvalid, func() map[string]string {
			return map[string]string{"reason": "revocation_mismatch"}
		})
		return nil, AuthTokens{}, ErrRefreshInvalid
	}

	pair, err := e.tokens.IssuePair(user.ID, user.RevocationCount)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, user.ID, err, func() map[string]string {
			return map[string]string{"reason": "issue_failed"}
		})
		return nil, AuthTokens{}, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, user.ID, nil, nil)

	return &user, pair, nil
}

// Revoke invalidates every outstanding refresh token for userID by atomically
// incrementing the user's revocation counter. Access tokens issued before the
// revoke remain valid until their own expiry; that residual window is bounded
// by [Engine.AccessTTL].
func (e *Engine) Revoke(ctx context.Context, userID string) error {
	if e == nil || e.userProvider == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}

	count, err := e.userProvider.IncrementRevocation(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricRevokeFailure)
			e.emitAudit(ctx, auditEventRevokeFailure, false, userID, ErrUserNotFound, nil)
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	e.metricInc(MetricRevokeSuccess)
	e.emitAudit(ctx, auditEventTokensRevoked, true, userID, nil, func() map[string]string {
		return map[string]string{"revocation_count": strconv.FormatUint(count, 10)}
	})

	return nil
}

// Authenticate verifies accessToken and resolves the user it names. Any
// verification failure is [ErrTokenInvalid]; a verified token whose user no
// longer exists is [ErrUserNotFound]. Revocation is deliberately not consulted
// here — access tokens are honored by signature and expiry alone.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*User, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	user, err := e.userProvider.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return &user, nil
}
