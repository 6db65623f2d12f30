// Package serde dispatches block serialization by encoding name.
//
// The registry is closed: it knows exactly the four fixed-width encodings
// (BYTE_ARRAY, SHORT_ARRAY, INT_ARRAY, LONG_ARRAY). A block body is
//
//	[positionCount uvarint][mayHaveNull byte][per-position wire form...]
//
// where every position uses the wire form written by
// block.Untyped.WritePositionTo. WriteBlock and ReadBlock prefix the body with
// the encoding name so a stream of heterogeneous blocks is self-describing.
package serde
