// Package rate provides the Redis-backed fixed-window counters behind the
// engine's login and refresh throttles.
//
// # Window semantics
//
// INCR + conditional EXPIRE on the first hit of the window. Key prefixes:
//   - gse:  — login per-email
//   - gsi:  — login per-IP
//   - gsr:  — refresh per-user
//
// # What this package must NOT do
//
//   - Decide policy. Limits and cooldowns come from the engine config.
//   - Be imported outside the goSession module.
package rate
