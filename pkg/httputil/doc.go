// Package httputil provides HTTP handler utilities for consistent error
// handling, JSON encoding/decoding, and request parsing across the portal API.
package httputil
