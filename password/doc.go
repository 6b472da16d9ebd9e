// Package password hashes and verifies user passwords with argon2id, encoded in
// the PHC string format so parameters travel with the hash.
//
// # What this package must NOT do
//
//   - Compare hashes non-constant-time. Verification always goes through
//     [crypto/subtle.ConstantTimeCompare].
//   - Normalize input. Passwords are hashed as the raw bytes provided.
package password
