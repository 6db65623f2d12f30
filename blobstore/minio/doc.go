// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible storage systems like Ceph,
// SeaweedFS and Garage, and is the air-gap friendly spill backend (no AWS
// dependencies required).
//
// # Basic Usage
//
//	store, err := minioblob.New("localhost:9000", "spill-bucket",
//	    minioblob.WithCredentials("minioadmin", "minioadmin"),
//	    minioblob.WithPrefix("memdb/"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	spiller := spill.New(store)
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
