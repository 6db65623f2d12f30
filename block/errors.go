package block

import "errors"

var (
	// ErrInvalidPosition is returned when a position is outside [0, positionCount).
	ErrInvalidPosition = errors.New("block: invalid position")
	// ErrInvalidRegion is returned when an (offset, length) window does not fit the block or array.
	ErrInvalidRegion = errors.New("block: invalid region")
	// ErrInvalidWindow is returned when wrapping constructor arguments violate the block invariants.
	ErrInvalidWindow = errors.New("block: invalid window")
	// ErrCapacityExceeded is returned when appending to a full builder.
	ErrCapacityExceeded = errors.New("block: capacity exceeded")
	// ErrBuilderClosed is returned when a builder is used after Build or Release.
	ErrBuilderClosed = errors.New("block: builder closed")
	// ErrNotNullable is returned when appending a null to a builder created without nulls.
	ErrNotNullable = errors.New("block: builder does not accept nulls")
	// ErrUnclosedEntry is returned when a new entry is started before the current one is closed.
	ErrUnclosedEntry = errors.New("block: entry not closed")
	// ErrNoOpenEntry is returned when closing an entry that was never written.
	ErrNoOpenEntry = errors.New("block: no open entry")
	// ErrCorrupt is returned when a per-position wire form cannot be decoded.
	ErrCorrupt = errors.New("block: corrupt wire data")
	// ErrUnsupportedBlock is returned when an untyped helper receives a block from outside this package.
	ErrUnsupportedBlock = errors.New("block: unsupported block implementation")
)
