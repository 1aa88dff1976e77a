// Package panels implements the portal's role-scoped views.
//
// A panel owns its data dependencies: on Mount it opens change
// subscriptions against the record store and on Unmount it releases every
// one of them. The router guarantees a full Unmount before the next panel
// mounts, so subscription counts never leak across a role switch or
// logout.
//
// Snapshot returns the panel's current data without touching subscription
// state, so it is safe to call concurrently with change delivery.
package panels
