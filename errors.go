package goSession

import "errors"

var (
	// ErrInvalidCredentials is returned by [Engine.SignIn] for unknown email and
	// wrong password alike. Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountExists is returned by [Engine.SignUp] when the email is taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrUserNotFound is returned when a user id has no backing record.
	ErrUserNotFound = errors.New("user not found")
	// ErrSignUpInvalid is returned by [Engine.SignUp] on a malformed request.
	ErrSignUpInvalid = errors.New("invalid sign up request")
	// ErrPasswordPolicy is returned when a new password violates the configured policy.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrTokenInvalid is returned by [Engine.Authenticate] for any access token that
	// fails verification: bad signature, malformed encoding, or expiry in the past.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrRefreshInvalid is returned by [Engine.Refresh] for any refresh token that
	// fails verification or whose embedded revocation count no longer matches.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrLoginRateLimited is an exported constant or variable used by the session engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRefreshRateLimited is an exported constant or variable used by the session engine.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrProviderUnavailable wraps user-store failures. The engine never retries;
	// retry policy belongs to the caller.
	ErrProviderUnavailable = errors.New("user store unavailable")
	// ErrProviderDuplicateEmail may be returned by [UserProvider.CreateUser] when a
	// concurrent sign-up won the race; the engine maps it to [ErrAccountExists].
	ErrProviderDuplicateEmail = errors.New("provider duplicate email")
)
