// Package auth implements credential resolution and session lifecycle for the
// portal.
//
// Login identifiers are opaque strings; two credential sources are tried in a
// fixed, declared order:
//
//  1. StaticSource, the compiled-in demo account table. Matches synthesize a
//     session directly, without any external call.
//  2. ProviderSource, the external OIDC verifier (password grant + userinfo).
//
// One legacy rule precedes both sources: the distinguished super-admin
// identifier is hard-pinned to a single secret. A mismatch on that identifier
// fails immediately without contacting the provider. The rule predates the
// role-table super_admin value and is kept for compatibility with existing
// seeded deployments; new deployments should assign the super_admin role in
// the profiles table instead.
//
// Sessions are bearer tokens held in the Registry: set on login, cleared on
// logout or expiry sweep. Each session carries a process-wide generation
// number so late role-lookup results for a superseded session can be
// discarded.
package auth
