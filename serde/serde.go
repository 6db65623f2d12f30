package serde

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/memdb/block"
	"github.com/hupe1980/memdb/offheap"
)

// MaxPositionCount bounds the position count accepted when decoding.
const MaxPositionCount = math.MaxInt32

const maxNameLength = 64

var (
	// ErrCorrupt is returned when an encoded block cannot be decoded.
	ErrCorrupt = errors.New("serde: corrupt block")
	// ErrUnknownEncoding is returned for encoding names outside the registry.
	ErrUnknownEncoding = errors.New("serde: unknown encoding")
	// ErrKindMismatch is returned when a block is written with another kind's encoding.
	ErrKindMismatch = errors.New("serde: block kind does not match encoding")
)

// Encoding writes and reads the body of one block kind.
type Encoding interface {
	// Name returns the stable encoding name.
	Name() string
	// Kind returns the block kind handled by the encoding.
	Kind() block.Kind
	// Write encodes b.
	Write(w io.Writer, b block.Untyped) error
	// Read decodes a block into off-heap storage from alloc. The caller owns
	// the returned block.
	Read(r io.Reader, alloc *offheap.Allocator) (block.Untyped, error)
}

// ByName returns the encoding registered under name.
func ByName(name string) (Encoding, bool) {
	switch name {
	case block.ByteArrayEncoding:
		return fixedWidth[int8]{}, true
	case block.ShortArrayEncoding:
		return fixedWidth[int16]{}, true
	case block.IntArrayEncoding:
		return fixedWidth[int32]{}, true
	case block.LongArrayEncoding:
		return fixedWidth[int64]{}, true
	default:
		return nil, false
	}
}

// Names returns every registered encoding name.
func Names() []string {
	return []string{
		block.ByteArrayEncoding,
		block.ShortArrayEncoding,
		block.IntArrayEncoding,
		block.LongArrayEncoding,
	}
}

type fixedWidth[T block.Value] struct{}

func (fixedWidth[T]) Name() string { return block.KindOf[T]().EncodingName() }

func (fixedWidth[T]) Kind() block.Kind { return block.KindOf[T]() }

func (e fixedWidth[T]) Write(w io.Writer, b block.Untyped) error {
	if b.Kind() != e.Kind() {
		return fmt.Errorf("%w: %s block with %s encoding", ErrKindMismatch, b.Kind(), e.Name())
	}

	bw := bufio.NewWriter(w)
	var header [binary.MaxVarintLen64 + 1]byte
	n := binary.PutUvarint(header[:], uint64(b.PositionCount())) //nolint:gosec // non-negative
	if b.MayHaveNull() {
		header[n] = 1
	}
	if _, err := bw.Write(header[:n+1]); err != nil {
		return err
	}
	for i := range b.PositionCount() {
		if err := b.WritePositionTo(i, bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (e fixedWidth[T]) Read(r io.Reader, alloc *offheap.Allocator) (block.Untyped, error) {
	br := asByteReader(r)
	count, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, corrupt("position count", err)
	}
	if count > MaxPositionCount {
		return nil, fmt.Errorf("%w: position count %d", ErrCorrupt, count)
	}
	// Each entry takes at least its presence byte.
	if sized, ok := r.(interface{ Len() int }); ok && count >= uint64(sized.Len()) { //nolint:gosec // Len is non-negative
		return nil, fmt.Errorf("%w: position count %d with %d bytes left", ErrCorrupt, count, sized.Len())
	}
	flag, err := br.ReadByte()
	if err != nil {
		return nil, corrupt("null flag", err)
	}

	var opts []block.BuilderOption
	switch flag {
	case 0:
	case 1:
		opts = append(opts, block.WithNulls())
	default:
		return nil, fmt.Errorf("%w: null flag %d", ErrCorrupt, flag)
	}

	builder, err := block.NewOffheapBuilder[T](alloc, int(count), opts...)
	if err != nil {
		return nil, err
	}
	for range count {
		if err := block.ReadPositionFrom[T](br, builder); err != nil {
			builder.Release()
			if errors.Is(err, block.ErrNotNullable) {
				return nil, fmt.Errorf("%w: null entry in block without nulls", ErrCorrupt)
			}
			return nil, corrupt("entry", err)
		}
	}
	return builder.Build()
}

func corrupt(what string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	if errors.Is(err, block.ErrCorrupt) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, what, err)
	}
	return err
}

// WriteBlock writes the encoding name of b followed by its body.
func WriteBlock(w io.Writer, b block.Untyped) error {
	enc, ok := ByName(b.EncodingName())
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEncoding, b.EncodingName())
	}
	name := enc.Name()
	var prefix [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(prefix[:], uint64(len(name)))
	if _, err := w.Write(prefix[:n]); err != nil {
		return err
	}
	if _, err := io.WriteString(w, name); err != nil {
		return err
	}
	return enc.Write(w, b)
}

// ReadBlock reads a block written by WriteBlock.
func ReadBlock(r io.Reader, alloc *offheap.Allocator) (block.Untyped, error) {
	br := asByteReader(r)
	n, err := binary.ReadUvarint(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, corrupt("encoding name length", err)
	}
	if n == 0 || n > maxNameLength {
		return nil, fmt.Errorf("%w: encoding name length %d", ErrCorrupt, n)
	}
	name := make([]byte, n)
	if _, err := io.ReadFull(br, name); err != nil {
		return nil, corrupt("encoding name", err)
	}
	enc, ok := ByName(string(name))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc.Read(br, alloc)
}

// byteReader reads one byte at a time so decoding never consumes past the
// end of a block.
type byteReader struct {
	io.Reader
	buf [1]byte
}

func (r *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(r.Reader, r.buf[:]); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

type readByteReader interface {
	io.Reader
	io.ByteReader
}

func asByteReader(r io.Reader) readByteReader {
	if br, ok := r.(readByteReader); ok {
		return br
	}
	return &byteReader{Reader: r}
}
