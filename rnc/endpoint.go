package rnc

import (
	"fmt"
	"net"
)

// Endpoint is an IPv4 address plus port, stored in network byte order
// internally via the 4-byte array (spec.md §6).
type Endpoint struct {
	IP   [4]byte
	Port uint16
}

// ParseEndpoint parses "a.b.c.d:port" into an Endpoint.
func ParseEndpoint(s string) (Endpoint, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("rnc: parse endpoint %q: %w", s, err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return Endpoint{}, fmt.Errorf("rnc: parse endpoint %q: invalid IPv4 address %q", s, host)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return Endpoint{}, fmt.Errorf("rnc: parse endpoint %q: not an IPv4 address", s)
	}
	var port uint16
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return Endpoint{}, fmt.Errorf("rnc: parse endpoint %q: invalid port %q", s, portStr)
	}
	var e Endpoint
	copy(e.IP[:], ip4)
	e.Port = port
	return e, nil
}

// EndpointFromUDPAddr converts a *net.UDPAddr into an Endpoint.
func EndpointFromUDPAddr(addr *net.UDPAddr) Endpoint {
	var e Endpoint
	copy(e.IP[:], addr.IP.To4())
	e.Port = uint16(addr.Port)
	return e
}

// UDPAddr converts e back into a *net.UDPAddr.
func (e Endpoint) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(e.IP[0], e.IP[1], e.IP[2], e.IP[3]), Port: int(e.Port)}
}

// String renders e as "a.b.c.d:port".
func (e Endpoint) String() string {
	return fmt.Sprintf("%d.%d.%d.%d:%d", e.IP[0], e.IP[1], e.IP[2], e.IP[3], e.Port)
}
