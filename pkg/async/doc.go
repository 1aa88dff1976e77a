// Package async provides panic-safe goroutine helpers.
//
// Subscription callbacks and background refreshes run off the request path;
// SafeGo keeps a panicking callback from taking the process down and bounds
// each task with a timeout so a stuck provider call cannot leak goroutines.
package async
