// Package files stores resume uploads in object storage and keeps the
// student record's resume fields in sync.
//
// The BlobStore interface is satisfied by an S3 client for real
// deployments (MinIO works via the endpoint override) and an in-memory
// fake for tests and the demo mode.
package files
