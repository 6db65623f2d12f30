package memdb_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/memdb"
	"github.com/hupe1980/memdb/blobstore"
	"github.com/hupe1980/memdb/block"
	"github.com/hupe1980/memdb/page"
)

// Example_builder demonstrates building an off-heap block.
func Example_builder() {
	ctx := context.Background()
	rt := memdb.New()
	defer func() { _ = rt.Close(ctx) }()

	b, err := memdb.NewBuilder[int32](rt, 3, block.WithNulls())
	if err != nil {
		log.Fatal(err)
	}
	_ = b.Append(10)
	_ = b.AppendNull()
	_ = b.Append(30)

	col, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}
	defer col.Release()

	for i := range col.PositionCount() {
		v, isNull, _ := col.Get(i)
		fmt.Println(v, isNull)
	}
	fmt.Println(col.EncodingName())
	// Output:
	// 10 false
	// 0 true
	// 30 false
	// INT_ARRAY
}

// Example_copyRegion demonstrates region views and compaction.
func Example_copyRegion() {
	ctx := context.Background()
	rt := memdb.New()
	defer func() { _ = rt.Close(ctx) }()

	col, err := memdb.NewBlock(rt, []int64{1, 2, 3, 4, 5}, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer col.Release()

	view, _ := col.GetRegion(1, 2)
	defer view.Release()

	small, _ := col.CopyRegion(1, 2)
	defer small.Release()

	fmt.Println(view)
	fmt.Println(small)
	// Output:
	// OffheapBlock[LONG_ARRAY]{positionCount=2}
	// CompactBlock[LONG_ARRAY]{positionCount=2}
}

// Example_spill demonstrates spilling a page and restoring it.
func Example_spill() {
	ctx := context.Background()
	rt := memdb.New(memdb.WithSpillStore(blobstore.NewMemoryStore()))
	defer func() { _ = rt.Close(ctx) }()

	col, _ := memdb.NewBlock(rt, []int16{7, 8, 9}, nil)
	p, err := page.New(col)
	if err != nil {
		log.Fatal(err)
	}

	name, err := rt.Spill(ctx, p)
	if err != nil {
		log.Fatal(err)
	}
	p.Release()

	restored, err := rt.Restore(ctx, name)
	if err != nil {
		log.Fatal(err)
	}
	defer restored.Release()

	fmt.Println(restored.PositionCount(), restored.ChannelCount())
	// Output: 3 1
}
