package mmap

import "errors"

// AccessPattern is a read-ahead hint for a mapping.
type AccessPattern int

const (
	// AccessNormal restores the kernel's default read-ahead.
	AccessNormal AccessPattern = iota
	// AccessSequential favours aggressive read-ahead, for blobs read front to back.
	AccessSequential
	// AccessRandom disables read-ahead.
	AccessRandom
)

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when a mapping size is zero, negative or too large.
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrInvalidOffset is returned for negative read offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
