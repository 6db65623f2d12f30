// Package fragment implements the per-host row-count descriptor exchanged
// between distributed participants to report partial data contributions.
//
// A Fragment is an immutable (host, rows) value. Fragments from the same host
// merge by summing their row counts. The wire form is a JSON record:
//
//	{"hostAddress":"worker-1:8080","rows":42}
//
// Unknown fields are ignored when decoding.
package fragment
