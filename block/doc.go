// Package block implements immutable columnar blocks of fixed-width values.
//
// A block is a positional sequence of BYTE_ARRAY, SHORT_ARRAY, INT_ARRAY or
// LONG_ARRAY values with optional per-position nulls. OffheapBuilder fills
// off-heap storage up to a fixed capacity and publishes an OffheapBlock.
// Views created with GetRegion share that storage; CopyRegion, CopyPositions
// and GetSingleValueBlock produce CompactBlocks whose storage is sized exactly
// for their contents, so small results never pin large parents.
//
// Off-heap blocks are reference counted. Every block returned by a
// constructor or operation must be released exactly once:
//
//	b, err := builder.Build()
//	if err != nil {
//		return err
//	}
//	defer b.Release()
//
//	region, err := b.GetRegion(1, 2)
//	if err != nil {
//		return err
//	}
//	defer region.Release()
//
// Blocks are safe for concurrent reads. Builders are single-goroutine.
package block
