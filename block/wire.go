package block

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Per-position wire form: one presence byte followed, for present entries,
// by the value in little-endian order using exactly the kind's width.
const (
	entryNull    byte = 0
	entryPresent byte = 1
)

func writeEntry[T Value](w io.Writer, v T, isNull bool) error {
	var scratch [9]byte
	if isNull {
		scratch[0] = entryNull
		_, err := w.Write(scratch[:1])
		return err
	}
	scratch[0] = entryPresent
	binary.LittleEndian.PutUint64(scratch[1:], uint64(v))
	_, err := w.Write(scratch[:1+widthOf[T]()])
	return err
}

func appendEntry[T Value](vb ValueBuilder[T], v T, isNull bool) error {
	if isNull {
		return vb.AppendNull()
	}
	if err := vb.WriteValue(v); err != nil {
		return err
	}
	return vb.CloseEntry()
}

// ReadPositionFrom decodes one per-position wire entry from r and appends it
// to vb. It returns io.EOF unchanged when r is exhausted at an entry boundary.
func ReadPositionFrom[T Value](r io.Reader, vb ValueBuilder[T]) error {
	var scratch [9]byte
	if _, err := io.ReadFull(r, scratch[:1]); err != nil {
		return err
	}
	switch scratch[0] {
	case entryNull:
		return vb.AppendNull()
	case entryPresent:
	default:
		return fmt.Errorf("%w: presence byte %d", ErrCorrupt, scratch[0])
	}

	width := widthOf[T]()
	if _, err := io.ReadFull(r, scratch[1:1+width]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return appendEntry(vb, decodeValue[T](scratch[1:1+width]), false)
}

// decodeValue sign-extends a little-endian two's complement value.
func decodeValue[T Value](p []byte) T {
	var x uint64
	for i := len(p) - 1; i >= 0; i-- {
		x = x<<8 | uint64(p[i])
	}
	shift := 64 - 8*len(p)
	return T(int64(x<<shift) >> shift) //nolint:gosec // width-preserving sign extension
}
