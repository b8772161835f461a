// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"net"
)

// AddrFamily identifies whether an Address holds an IPv4, IPv6, or
// unspecified endpoint.
type AddrFamily uint8

// Supported address families.
const (
	AddrFamilyV4 AddrFamily = iota
	AddrFamilyV6
	AddrFamilyUnspecified
)

// v4InV6Prefix is the IPv4-mapped IPv6 prefix ::ffff:0:0/96 that v4
// addresses are canonicalized under.
var v4InV6Prefix = [12]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff}

// Address is a network endpoint: an address family, a 16-byte canonical
// form (v4 addresses are stored under the IPv4-mapped IPv6 prefix), a port
// in host order, and a cached display string. Equality is structural over
// those three derived fields, which is exactly what Equals compares.
type Address struct {
	Family  AddrFamily
	IP      [16]byte
	Port    uint16
	Display string
}

// NewAddress builds an Address from a net.IP and a host-order port. A nil
// IP is treated as 0.0.0.0, the conventional "I don't know my own address"
// value bitcoin peers place in a version message's addr_from when they
// haven't yet learned their externally visible endpoint.
func NewAddress(ip net.IP, port uint16) Address {
	addr := Address{Port: port}

	if ip == nil {
		ip = net.IPv4zero
	}

	if v4 := ip.To4(); v4 != nil {
		addr.Family = AddrFamilyV4
		copy(addr.IP[:12], v4InV6Prefix[:])
		copy(addr.IP[12:], v4)
		addr.Display = net.IP(v4).String()
		return addr
	}

	v6 := ip.To16()
	if v6 == nil {
		addr.Family = AddrFamilyUnspecified
		addr.Display = "<invalid>"
		return addr
	}
	addr.Family = AddrFamilyV6
	copy(addr.IP[:], v6)
	addr.Display = v6.String()
	return addr
}

// NetIP reconstructs a net.IP from the canonical 16-byte form.
func (a Address) NetIP() net.IP {
	ip := make(net.IP, 16)
	copy(ip, a.IP[:])
	return ip
}

// Equals reports whether two addresses are structurally equal: same
// family, same port, same display string.
func (a Address) Equals(other Address) bool {
	return a.Family == other.Family && a.Port == other.Port && a.Display == other.Display
}

// String returns the address in host:port form.
func (a Address) String() string {
	return net.JoinHostPort(a.Display, portString(a.Port))
}

func portString(p uint16) string {
	const digits = "0123456789"
	if p == 0 {
		return "0"
	}
	var buf [5]byte
	i := len(buf)
	for p > 0 {
		i--
		buf[i] = digits[p%10]
		p /= 10
	}
	return string(buf[i:])
}

// NetAddress wraps an Address with the metadata attached to it on the wire:
// the services bitmask and, for addr-gossip entries (but not the
// addr_recv/addr_from fields of a version message), a timestamp.
type NetAddress struct {
	// Timestamp is seconds since the epoch. It is only present (and only
	// encoded/decoded) for NetAddr entries in an addr message; callers
	// encoding a version message's embedded addresses pass hasTimestamp =
	// false to writeNetAddress/readNetAddress.
	Timestamp uint32
	Services  ServiceFlag
	Addr      Address
}

func readNetAddress(r io.Reader, hasTimestamp bool) (NetAddress, error) {
	var na NetAddress

	if hasTimestamp {
		ts, err := binarySerializer.Uint32(r)
		if err != nil {
			return na, err
		}
		na.Timestamp = ts
	}

	services, err := binarySerializer.Uint64(r)
	if err != nil {
		return na, err
	}
	na.Services = ServiceFlag(services)

	var ip [16]byte
	if _, err := io.ReadFull(r, ip[:]); err != nil {
		return na, err
	}

	port, err := binarySerializer.Uint16BE(r)
	if err != nil {
		return na, err
	}

	na.Addr = addressFromCanonical(ip, port)
	return na, nil
}

func writeNetAddress(w io.Writer, na NetAddress, hasTimestamp bool) error {
	if hasTimestamp {
		if err := binarySerializer.PutUint32(w, na.Timestamp); err != nil {
			return err
		}
	}
	if err := binarySerializer.PutUint64(w, uint64(na.Services)); err != nil {
		return err
	}
	if _, err := w.Write(na.Addr.IP[:]); err != nil {
		return err
	}
	return binarySerializer.PutUint16BE(w, na.Addr.Port)
}

// addressFromCanonical rebuilds an Address from its already-canonical
// 16-byte wire form, recovering the family and display string the same way
// NewAddress would for the equivalent net.IP.
func addressFromCanonical(ip [16]byte, port uint16) Address {
	isV4 := true
	for i := 0; i < 12; i++ {
		if ip[i] != v4InV6Prefix[i] {
			isV4 = false
			break
		}
	}
	if isV4 {
		return NewAddress(net.IP(ip[12:]), port)
	}
	full := make(net.IP, 16)
	copy(full, ip[:])
	return NewAddress(full, port)
}
