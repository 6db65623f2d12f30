// Package mem provides memory sizing utilities.
//
// # Page Alignment
//
// Off-heap buffers are carved from anonymous mappings, which the kernel hands
// out in whole pages. PageAlign reports the physical size a request will
// occupy. Buffers report it as their retained size.
package mem
