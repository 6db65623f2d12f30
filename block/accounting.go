package block

// RetainedSizeVisitor sums retained sizes across blocks, counting storage
// shared between views once.
type RetainedSizeVisitor struct {
	parts map[any]int64
	total int64
}

// NewRetainedSizeVisitor returns an empty visitor.
func NewRetainedSizeVisitor() *RetainedSizeVisitor {
	return &RetainedSizeVisitor{parts: make(map[any]int64)}
}

// Visit adds the parts of b.
func (v *RetainedSizeVisitor) Visit(b Untyped) {
	b.RetainedBytesForEachPart(v.accept)
}

func (v *RetainedSizeVisitor) accept(part any, size int64) {
	if _, seen := v.parts[part]; seen {
		return
	}
	v.parts[part] = size
	v.total += size
}

// Total returns the deduplicated retained size.
func (v *RetainedSizeVisitor) Total() int64 { return v.total }

// Parts returns the number of distinct parts seen.
func (v *RetainedSizeVisitor) Parts() int { return len(v.parts) }

// RetainedSizeOf returns the deduplicated retained size of blocks.
func RetainedSizeOf(blocks ...Untyped) int64 {
	v := NewRetainedSizeVisitor()
	for _, b := range blocks {
		v.Visit(b)
	}
	return v.Total()
}
