// Package memdb provides off-heap columnar storage for fixed-width integer
// columns.
//
// Column data lives in anonymous memory mappings outside the Go heap and is
// shared between block views through reference counts. Blocks are built by
// a single writer, published immutable, and read concurrently.
//
// # Quick Start
//
//	rt := memdb.New(memdb.WithMemoryLimit(64 << 20))
//	defer rt.Close(ctx)
//
//	b, _ := memdb.NewBuilder[int32](rt, 1024, block.WithNulls())
//	_ = b.Append(10)
//	_ = b.AppendNull()
//	col, _ := b.Build()
//	defer col.Release()
//
//	v, isNull, _ := col.Get(0)
//
// # Views and Compaction
//
// GetRegion returns a view that shares the parent's memory. CopyRegion
// returns the block itself when the region already covers all of its
// memory, and otherwise a compact copy on the Go heap:
//
//	view, _ := col.GetRegion(100, 10)   // shares memory
//	small, _ := col.CopyRegion(100, 10) // copies 10 positions
//
// Every block returned by these calls must be released exactly once.
//
// # Pages and Spilling
//
// A page groups equally long blocks (channels). Pages can be compacted in
// parallel and spilled to a blob store (local disk, memory, MinIO, S3):
//
//	rt := memdb.New(memdb.WithSpillStore(blobstore.NewLocalStore(dir)))
//	name, _ := rt.Spill(ctx, p)
//	restored, _ := rt.Restore(ctx, name)
//
// # Key Features
//
//   - Off-heap fixed-width blocks for int8, int16, int32 and int64
//   - Reference counted zero-copy views
//   - Deduplicated retained-size accounting
//   - Memory limits and spill IO throttling
//   - LZ4 / ZSTD compressed page frames
package memdb
