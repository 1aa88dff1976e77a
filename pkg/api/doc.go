// Package api wires the HTTP surface of the portal.
//
// Routes live under /api/v1. Authentication is a bearer token issued at
// login; the auth middleware resolves the session and role once per
// request, and role gates protect the mutating routes. The /panel route
// returns the routing decision plus the mounted panel's data so a client
// can render whatever the session is entitled to see.
package api
