// Package rbac resolves a session's role and maps it to the panel the
// subject is allowed to see.
//
// Role resolution is a point lookup against the profiles table, with a
// short-circuit for demo sessions whose role is fixed at login. Roles are
// never cached: every resolution reads current state, so a role change
// takes effect on the next panel render.
//
// Panel selection is a pure decision table over (session, role). It has no
// side effects and no I/O, which keeps it trivially testable and makes the
// routing behavior auditable in one place.
package rbac
