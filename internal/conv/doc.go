// Package conv provides checked integer conversions and arithmetic.
//
// Block offsets, frame header fields and row counts cross between int,
// int64 and the fixed-width wire types. Each helper returns ErrOverflow
// instead of silently wrapping, so corrupt or hostile input fails loudly.
package conv
