// Package page groups equally long blocks into pages.
//
// A Page owns one reference of each of its channel blocks. Region and copy
// operations return new pages that own their own block references, so every
// page must be released exactly once.
//
// Serde frames a page for spilling or transport:
//
//	magic "MDBP" | version u8 | compression u8 | reserved u16 |
//	positionCount u32 | channelCount u32 | rawLen u32 | payloadLen u32 |
//	crc32c(header fields, payload) u32 | payload
//
// The checksum covers the first 24 header bytes and the payload. Header
// counts are validated against each other and against the frame size limit
// before any buffer is sized from them.
//
// The payload is the concatenation of serde.WriteBlock bodies, compressed
// with LZ4 or ZSTD when that shrinks it.
package page
