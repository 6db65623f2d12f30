package fragment

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// HostAddress identifies a network endpoint. A zero Port means the address
// carries no port.
type HostAddress struct {
	Host string
	Port int
}

// NewHostAddress returns a host address with the given port.
func NewHostAddress(host string, port int) HostAddress {
	return HostAddress{Host: host, Port: port}
}

// ParseHostAddress parses "host", "host:port", "[ipv6]" or "[ipv6]:port".
func ParseHostAddress(s string) (HostAddress, error) {
	if s == "" {
		return HostAddress{}, fmt.Errorf("%w: empty host address", ErrInvalidArgument)
	}

	host, portText := s, ""
	switch {
	case strings.HasPrefix(s, "["):
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return HostAddress{}, fmt.Errorf("%w: unterminated bracket in %q", ErrInvalidArgument, s)
		}
		host, portText = s[1:end], s[end+1:]
		if portText != "" {
			if portText[0] != ':' {
				return HostAddress{}, fmt.Errorf("%w: invalid host address %q", ErrInvalidArgument, s)
			}
			portText = portText[1:]
		}
	case strings.Count(s, ":") == 1:
		var err error
		host, portText, err = net.SplitHostPort(s)
		if err != nil {
			return HostAddress{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}

	if host == "" {
		return HostAddress{}, fmt.Errorf("%w: empty host in %q", ErrInvalidArgument, s)
	}
	if portText == "" {
		return HostAddress{Host: host}, nil
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port <= 0 || port > 65535 {
		return HostAddress{}, fmt.Errorf("%w: invalid port in %q", ErrInvalidArgument, s)
	}
	return HostAddress{Host: host, Port: port}, nil
}

// HasPort reports whether the address carries a port.
func (h HostAddress) HasPort() bool { return h.Port != 0 }

// String returns the address in the form accepted by ParseHostAddress.
func (h HostAddress) String() string {
	if !h.HasPort() {
		if strings.Contains(h.Host, ":") {
			return "[" + h.Host + "]"
		}
		return h.Host
	}
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// MarshalText implements encoding.TextMarshaler.
func (h HostAddress) MarshalText() ([]byte, error) {
	if h.Host == "" {
		return nil, fmt.Errorf("%w: empty host address", ErrInvalidArgument)
	}
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *HostAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseHostAddress(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
