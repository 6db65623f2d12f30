// Package blobstore provides storage abstraction for spilled pages.
//
// BlobStore is the interface for reading and writing immutable data blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with atomic writes and mmap reads
//   - MemoryStore: In-memory store for tests and small working sets
//   - minio.Store: MinIO and S3-compatible object storage
//   - s3.Store: Amazon S3 with range reads and multipart uploads
package blobstore
