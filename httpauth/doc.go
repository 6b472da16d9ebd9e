// Package httpauth reconciles a request's bearer header and token cookies into
// an authoritative identity, rotating the token pair through the engine when an
// access cookie has lapsed but the refresh cookie is still good.
//
// # Resolution order
//
// First success wins; each step stands alone and never borrows state from
// another:
//
//  1. Bearer header present → verify as access token. Failure is terminal:
//     bearer mode never falls back to cookies and never rotates.
//  2. No access cookie and no refresh cookie → anonymous.
//  3. Access cookie verifies → authenticated.
//  4. Refresh cookie verifies and its revocation count still matches → mint a
//     new pair, set both cookies on the response, authenticated.
//  5. Anything else → anonymous.
//
// Verification failures are silent: they shape the result, they are never
// errors. Only user-store unavailability surfaces as an error.
package httpauth
