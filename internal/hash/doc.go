// Package hash provides the checksums used for data integrity.
//
// Page frames and S3 uploads are protected by CRC32-Castagnoli (CRC32C),
// which the crc32 package computes with SSE4.2 or the ARM CRC extension when
// available:
//
//	sum := hash.UpdateCRC32C(hash.CRC32C(header), payload)
package hash
