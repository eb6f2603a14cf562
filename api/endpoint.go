// File: api/endpoint.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Endpoint and protocol descriptors: immutable value types used to
// construct sockets and resolve connection targets.

package api

import "fmt"

// Family selects the socket address family.
type Family uint8

const (
	// FamilyV4 selects IPv4.
	FamilyV4 Family = iota
	// FamilyV6 selects IPv6.
	FamilyV6
)

// String returns the conventional name of the family.
func (f Family) String() string {
	switch f {
	case FamilyV4:
		return "inet4"
	case FamilyV6:
		return "inet6"
	default:
		return fmt.Sprintf("family(%d)", uint8(f))
	}
}

// Protocol describes the family and transport of a socket. Only stream
// transport is defined by this module; the type exists so sockets carry
// their full protocol selection as a value.
type Protocol struct {
	family Family
}

// ProtocolV4 returns the IPv4 stream protocol descriptor.
func ProtocolV4() Protocol { return Protocol{family: FamilyV4} }

// ProtocolV6 returns the IPv6 stream protocol descriptor.
func ProtocolV6() Protocol { return Protocol{family: FamilyV6} }

// Family returns the address family of the protocol.
func (p Protocol) Family() Family { return p.family }

// Endpoint is an immutable (host, port) pair. Host is a textual IP address;
// an empty Host means the wildcard ("any") address of the socket's family.
type Endpoint struct {
	host string
	port uint16
}

// NewEndpoint constructs an endpoint value.
func NewEndpoint(host string, port uint16) Endpoint {
	return Endpoint{host: host, port: port}
}

// Host returns the textual address, empty for wildcard.
func (e Endpoint) Host() string { return e.host }

// Port returns the port number.
func (e Endpoint) Port() uint16 { return e.port }

// String formats the endpoint as host:port.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.host, e.port)
}
