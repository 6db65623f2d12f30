// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("memdb/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	spiller := spill.New(store)
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Multipart uploads through the S3 transfer manager
//   - CRC32C integrity checksums on uploads
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
