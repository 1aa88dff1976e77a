// Package router drives panel transitions for a session.
//
// A Router serializes transitions: each Apply resolves the session's role,
// selects the target panel, fully unmounts the current panel, then mounts
// the new one. At most one panel is mounted at any time.
//
// Role resolution can be slow (it may hit the store), so Apply stamps each
// transition with an epoch before resolving. If a newer Apply started in
// the meantime, the older result is discarded instead of clobbering the
// newer panel. This is what keeps a quick login/logout/login sequence from
// ending up on the first login's panel.
//
// The Manager owns one Router per live session and tears it down when the
// session ends, releasing every subscription the panel held.
package router
