// Package auth provides authentication and session integrity for the
// inventory backend.
//
// It implements cookie-carried JWT sessions with a single-active-token
// model:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - HS256-signed session tokens with 24-hour expiry
//   - One live token per account, persisted in users.current_token, so a
//     later login or a logout revokes every previously issued token
//   - CSRF double-submit tokens minted alongside each session
//
// Signature validation alone is never sufficient: the request gate must
// also cross-check the presented token against the stored current_token,
// which is what makes stateless JWTs revocable here.
package auth
