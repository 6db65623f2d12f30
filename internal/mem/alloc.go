package mem

import (
	"os"
	"sync"
)

var pageSize = sync.OnceValue(os.Getpagesize)

// PageSize returns the operating system page size in bytes.
func PageSize() int {
	return pageSize()
}

// AlignUp rounds size up to the next multiple of align.
// align must be a power of two. Non-positive sizes yield 0.
func AlignUp(size, align int) int {
	if size <= 0 {
		return 0
	}
	mask := align - 1
	return (size + mask) &^ mask
}

// PageAlign rounds size up to a whole number of pages.
// Anonymous mappings are always backed by whole pages, so this is the
// physical footprint of a mapping of the given size.
func PageAlign(size int) int {
	return AlignUp(size, PageSize())
}
