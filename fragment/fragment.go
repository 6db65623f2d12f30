package fragment

import (
	"errors"
	"fmt"

	"github.com/hupe1980/memdb/codec"
	"github.com/hupe1980/memdb/internal/conv"
)

var (
	// ErrInvalidArgument is returned for negative row counts, empty hosts and
	// malformed records.
	ErrInvalidArgument = errors.New("fragment: invalid argument")
	// ErrIncompatibleHost is returned when merging fragments from different hosts.
	ErrIncompatibleHost = errors.New("fragment: incompatible host")
	// ErrRowCountOverflow is returned when a merged row count does not fit int64.
	ErrRowCountOverflow = errors.New("fragment: row count overflow")
)

// Fragment is an immutable per-host row count.
type Fragment struct {
	host HostAddress
	rows int64
}

// New returns a fragment for host with rows rows.
func New(host HostAddress, rows int64) (Fragment, error) {
	if host.Host == "" {
		return Fragment{}, fmt.Errorf("%w: host address is empty", ErrInvalidArgument)
	}
	if rows < 0 {
		return Fragment{}, fmt.Errorf("%w: rows %d is negative", ErrInvalidArgument, rows)
	}
	return Fragment{host: host, rows: rows}, nil
}

// HostAddress returns the reporting host.
func (f Fragment) HostAddress() HostAddress { return f.host }

// Rows returns the row count.
func (f Fragment) Rows() int64 { return f.rows }

func (f Fragment) String() string {
	return fmt.Sprintf("Fragment{host=%s, rows=%d}", f.host, f.rows)
}

// Merge sums the row counts of two fragments from the same host.
func Merge(a, b Fragment) (Fragment, error) {
	if a.host != b.host {
		return Fragment{}, fmt.Errorf("%w: %s and %s", ErrIncompatibleHost, a.host, b.host)
	}
	rows, err := conv.AddInt64(a.rows, b.rows)
	if err != nil {
		return Fragment{}, fmt.Errorf("%w: %d + %d", ErrRowCountOverflow, a.rows, b.rows)
	}
	return Fragment{host: a.host, rows: rows}, nil
}

// MergeAll folds fragments from a single host.
func MergeAll(fragments ...Fragment) (Fragment, error) {
	if len(fragments) == 0 {
		return Fragment{}, fmt.Errorf("%w: no fragments", ErrInvalidArgument)
	}
	acc := fragments[0]
	for _, f := range fragments[1:] {
		var err error
		if acc, err = Merge(acc, f); err != nil {
			return Fragment{}, err
		}
	}
	return acc, nil
}

type record struct {
	HostAddress *HostAddress `json:"hostAddress"`
	Rows        *uint64      `json:"rows"`
}

// ToBytes encodes the fragment as its JSON record.
func (f Fragment) ToBytes() ([]byte, error) {
	rows := uint64(f.rows) //nolint:gosec // rows is never negative
	host := f.host
	return codec.Default.Marshal(record{HostAddress: &host, Rows: &rows})
}

// FromBytes decodes a JSON record produced by ToBytes.
func FromBytes(data []byte) (Fragment, error) {
	var r record
	if err := codec.Default.Unmarshal(data, &r); err != nil {
		return Fragment{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if r.HostAddress == nil {
		return Fragment{}, fmt.Errorf("%w: missing hostAddress", ErrInvalidArgument)
	}
	if r.Rows == nil {
		return Fragment{}, fmt.Errorf("%w: missing rows", ErrInvalidArgument)
	}
	rows, err := conv.Uint64ToInt64(*r.Rows)
	if err != nil {
		return Fragment{}, fmt.Errorf("%w: rows: %w", ErrInvalidArgument, err)
	}
	return New(*r.HostAddress, rows)
}
