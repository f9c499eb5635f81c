// Package api implements the HTTP REST API for the inventory backend.
//
// This package provides:
//   - Cookie-based login/logout backed by the session authority
//   - A request-authentication gate that cross-checks the persisted
//     current token on every protected request
//   - CSRF double-submit enforcement on mutating methods
//   - Device CRUD endpoints under /api/items
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Security
//
// Sessions ride in an HttpOnly cookie; the CSRF token rides in a
// script-readable cookie and must be echoed back in the X-CSRF-Token
// header on mutating requests. A signed token is only honoured while it
// is the account's stored current token, so logout and re-login both
// revoke it immediately.
package api
