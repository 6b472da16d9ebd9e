// Package goSession provides a dual-token session authentication engine: short-lived
// JWT access tokens, longer-lived JWT refresh tokens, and server-side revocation
// through a per-user counter embedded in every refresh token.
//
// The package is designed for concurrent server workloads: Engine methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config], the
// [UserProvider] integration interface, and value types (User, AuthTokens,
// MetricsSnapshot). Token signing lives in token/, password hashing in password/, the
// HTTP bearer/cookie resolver in httpauth/, and reference user stores under provider/.
// Redis-backed throttling lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Persist tokens. A token's only state is its embedded expiry and the revocation
//     counter it was minted against; invalidation is a counter increment on the user
//     record, not a token blacklist.
//   - Surface distinct failures for unknown email vs wrong password. Both resolve to
//     [ErrInvalidCredentials]; the distinction survives only in audit metadata.
//   - Crash the host. Every failure path resolves to a typed error consumed by the
//     caller.
//
// # Performance contract
//
// Authenticate is the hot path: one JWT verification plus one provider lookup, no
// Redis round-trips. SignIn, SignUp, Refresh, and Revoke are allowed one provider
// round-trip plus optional throttle counters.
package goSession
