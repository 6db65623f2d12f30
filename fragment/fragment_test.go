package fragment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFragment(t *testing.T, host string, rows int64) Fragment {
	t.Helper()
	addr, err := ParseHostAddress(host)
	require.NoError(t, err)
	f, err := New(addr, rows)
	require.NoError(t, err)
	return f
}

func TestMerge(t *testing.T) {
	merged, err := Merge(mustFragment(t, "hostA", 10), mustFragment(t, "hostA", 5))
	require.NoError(t, err)
	assert.Equal(t, mustFragment(t, "hostA", 15), merged)

	_, err = Merge(mustFragment(t, "hostA", 10), mustFragment(t, "hostB", 5))
	assert.ErrorIs(t, err, ErrIncompatibleHost)

	_, err = Merge(mustFragment(t, "hostA:80", 1), mustFragment(t, "hostA:81", 1))
	assert.ErrorIs(t, err, ErrIncompatibleHost)
}

func TestMerge_Overflow(t *testing.T) {
	_, err := Merge(mustFragment(t, "hostA", math.MaxInt64), mustFragment(t, "hostA", 1))
	assert.ErrorIs(t, err, ErrRowCountOverflow)
}

func TestMergeAll(t *testing.T) {
	total, err := MergeAll(mustFragment(t, "h:1", 1), mustFragment(t, "h:1", 2), mustFragment(t, "h:1", 3))
	require.NoError(t, err)
	assert.Equal(t, int64(6), total.Rows())

	_, err = MergeAll()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(NewHostAddress("hostA", 0), -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(HostAddress{}, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRoundTrip(t *testing.T) {
	for _, host := range []string{"hostA", "hostA:8080", "[::1]:9000", "[fe80::1]"} {
		t.Run(host, func(t *testing.T) {
			f := mustFragment(t, host, 7)
			data, err := f.ToBytes()
			require.NoError(t, err)

			got, err := FromBytes(data)
			require.NoError(t, err)
			assert.Equal(t, f, got)
		})
	}
}

func TestToBytes_Layout(t *testing.T) {
	data, err := mustFragment(t, "worker-1:8080", 42).ToBytes()
	require.NoError(t, err)
	assert.JSONEq(t, `{"hostAddress":"worker-1:8080","rows":42}`, string(data))
}

func TestFromBytes(t *testing.T) {
	f, err := FromBytes([]byte(`{"hostAddress":"hostA:1","rows":3,"version":2,"extra":{"x":1}}`))
	require.NoError(t, err)
	assert.Equal(t, NewHostAddress("hostA", 1), f.HostAddress())
	assert.Equal(t, int64(3), f.Rows())

	for _, bad := range []string{
		`{"hostAddress":"hostA","rows":-1}`,
		`{"hostAddress":"hostA","rows":9223372036854775808}`,
		`{"hostAddress":"","rows":1}`,
		`{"rows":1}`,
		`{"hostAddress":"hostA"}`,
		`not json`,
	} {
		_, err := FromBytes([]byte(bad))
		assert.ErrorIs(t, err, ErrInvalidArgument, bad)
	}
}

func TestParseHostAddress(t *testing.T) {
	tests := []struct {
		in   string
		want HostAddress
	}{
		{"hostA", HostAddress{Host: "hostA"}},
		{"hostA:8080", HostAddress{Host: "hostA", Port: 8080}},
		{"[::1]:9000", HostAddress{Host: "::1", Port: 9000}},
		{"[::1]", HostAddress{Host: "::1"}},
		{"::1", HostAddress{Host: "::1"}},
	}
	for _, tt := range tests {
		got, err := ParseHostAddress(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", ":80", "hostA:0", "hostA:x", "[::1", "[::1]x"} {
		_, err := ParseHostAddress(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, bad)
	}

	assert.Equal(t, "[::1]:9000", NewHostAddress("::1", 9000).String())
	assert.Equal(t, "[::1]", NewHostAddress("::1", 0).String())
}
