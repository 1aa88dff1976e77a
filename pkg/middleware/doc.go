// Package middleware provides the HTTP middleware chain: request IDs,
// bearer-token authentication, role gating, and Redis-backed login rate
// limiting.
//
// Authentication resolves the session and role once per request and
// stashes both in the request context under pkg/contextkeys keys; gating
// middleware and handlers read them from there.
package middleware
