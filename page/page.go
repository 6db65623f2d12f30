package page

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/memdb/block"
	"github.com/hupe1980/memdb/offheap"
)

var (
	// ErrPositionCountMismatch is returned when channel blocks differ in length.
	ErrPositionCountMismatch = errors.New("page: position count mismatch")
	// ErrInvalidChannel is returned for channel indexes outside the page.
	ErrInvalidChannel = errors.New("page: invalid channel")
)

// Page is a fixed set of channel blocks sharing one position count.
type Page struct {
	positionCount int
	blocks        []block.Untyped
	released      atomic.Bool
}

// New builds a page from blocks and takes ownership of them. On error the
// caller keeps ownership.
func New(blocks ...block.Untyped) (*Page, error) {
	if len(blocks) == 0 {
		return &Page{}, nil
	}
	positionCount := blocks[0].PositionCount()
	for i, b := range blocks[1:] {
		if b.PositionCount() != positionCount {
			return nil, fmt.Errorf("%w: channel %d has %d positions, channel 0 has %d",
				ErrPositionCountMismatch, i+1, b.PositionCount(), positionCount)
		}
	}
	return newPage(positionCount, blocks), nil
}

// NewEmpty returns a page with positionCount positions and no channels.
func NewEmpty(positionCount int) *Page {
	return newPage(positionCount, nil)
}

func newPage(positionCount int, blocks []block.Untyped) *Page {
	return &Page{positionCount: positionCount, blocks: append([]block.Untyped(nil), blocks...)}
}

// PositionCount returns the number of rows.
func (p *Page) PositionCount() int { return p.positionCount }

// ChannelCount returns the number of channels.
func (p *Page) ChannelCount() int { return len(p.blocks) }

// Block returns the block of a channel. The page keeps ownership.
func (p *Page) Block(channel int) (block.Untyped, error) {
	if channel < 0 || channel >= len(p.blocks) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidChannel, channel, len(p.blocks))
	}
	return p.blocks[channel], nil
}

// SizeInBytes returns the logical size of all channels.
func (p *Page) SizeInBytes() int64 {
	var size int64
	for _, b := range p.blocks {
		size += b.SizeInBytes()
	}
	return size
}

// RetainedSizeInBytes returns the memory kept alive by the page, counting
// storage shared between channels once.
func (p *Page) RetainedSizeInBytes() int64 {
	return block.RetainedSizeOf(p.blocks...)
}

// GetRegion returns a page of views over [offset, offset+length).
func (p *Page) GetRegion(offset, length int) (*Page, error) {
	if err := p.checkRegion(offset, length); err != nil {
		return nil, err
	}
	return p.mapBlocks(length, func(b block.Untyped) (block.Untyped, error) {
		return block.Region(b, offset, length)
	})
}

// CopyRegion returns a page whose channels are compacted copies of
// [offset, offset+length).
func (p *Page) CopyRegion(offset, length int) (*Page, error) {
	if err := p.checkRegion(offset, length); err != nil {
		return nil, err
	}
	return p.mapBlocks(length, func(b block.Untyped) (block.Untyped, error) {
		return block.CopyRegion(b, offset, length)
	})
}

// CopyPositions gathers positions[offset:offset+length] from every channel.
func (p *Page) CopyPositions(positions []int, offset, length int) (*Page, error) {
	if offset < 0 || length < 0 || offset > len(positions)-length {
		return nil, fmt.Errorf("%w: offset %d, length %d, array length %d", block.ErrInvalidRegion, offset, length, len(positions))
	}
	for _, pos := range positions[offset : offset+length] {
		if pos < 0 || pos >= p.positionCount {
			return nil, fmt.Errorf("%w: %d not in [0, %d)", block.ErrInvalidPosition, pos, p.positionCount)
		}
	}
	return p.mapBlocks(length, func(b block.Untyped) (block.Untyped, error) {
		return block.CopyPositions(b, positions, offset, length)
	})
}

func (p *Page) checkRegion(offset, length int) error {
	if offset < 0 || length < 0 || offset > p.positionCount-length {
		return fmt.Errorf("%w: offset %d, length %d, positionCount %d", block.ErrInvalidRegion, offset, length, p.positionCount)
	}
	return nil
}

// mapBlocks applies fn to every channel. Results produced before a failure
// are released.
func (p *Page) mapBlocks(positionCount int, fn func(block.Untyped) (block.Untyped, error)) (*Page, error) {
	scope := offheap.NewScope()
	defer scope.Close()

	out := make([]block.Untyped, 0, len(p.blocks))
	for _, b := range p.blocks {
		mapped, err := fn(b)
		if err != nil {
			return nil, err
		}
		out = append(out, offheap.Track(scope, mapped))
	}
	scope.Disarm()
	return &Page{positionCount: positionCount, blocks: out}, nil
}

// NonNullPositions returns the positions at which channel holds a value.
func (p *Page) NonNullPositions(channel int) (*roaring.Bitmap, error) {
	b, err := p.Block(channel)
	if err != nil {
		return nil, err
	}
	return block.NonNullPositions(b)
}

// CopySelected gathers the selected positions, in ascending order, from
// every channel into compact blocks.
func (p *Page) CopySelected(selected *roaring.Bitmap) (*Page, error) {
	positions := block.SelectedPositions(selected)
	return p.CopyPositions(positions, 0, len(positions))
}

// SelectedSizeInBytes returns the logical size of the selected positions
// across all channels.
func (p *Page) SelectedSizeInBytes(selected *roaring.Bitmap) int64 {
	var size int64
	for _, b := range p.blocks {
		size += block.SelectedSizeInBytes(b, selected)
	}
	return size
}

// Compact returns a page whose channels are compacted, running up to workers
// channels concurrently (unbounded when workers <= 0). Channels that are
// already compact are shared with the receiver through an extra reference.
func (p *Page) Compact(ctx context.Context, workers int) (*Page, error) {
	out := make([]block.Untyped, len(p.blocks))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, b := range p.blocks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			compacted, err := block.CopyRegion(b, 0, b.PositionCount())
			if err != nil {
				return fmt.Errorf("page: compact channel %d: %w", i, err)
			}
			out[i] = compacted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, b := range out {
			if b != nil {
				b.Release()
			}
		}
		return nil, err
	}
	return &Page{positionCount: p.positionCount, blocks: out}, nil
}

// Release drops the page's block references. Releasing twice panics.
func (p *Page) Release() {
	if !p.released.CompareAndSwap(false, true) {
		panic("page: page released more than once")
	}
	releaseAll(p.blocks)
}

func releaseAll(blocks []block.Untyped) {
	for _, b := range blocks {
		b.Release()
	}
}

func (p *Page) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Page{positions=%d, channels=[", p.positionCount)
	for i, b := range p.blocks {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.EncodingName())
	}
	sb.WriteString("]}")
	return sb.String()
}
