package util

import (
	"fmt"
	"net/netip"
)

// Prefix is an interface address with its mask length (e.g. 10.0.0.1/24).
// Unlike netip.Prefix it keeps the host bits of the address, so the same
// value can derive the subnet route, the host route, and the directed
// broadcast address.
type Prefix struct {
	addr netip.Addr
	bits int
}

// ParsePrefix parses "addr/len" in dotted-quad or colon-hex form.
func ParsePrefix(s string) (Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return Prefix{}, fmt.Errorf("invalid prefix %q: %w", s, err)
	}
	return Prefix{addr: p.Addr().Unmap(), bits: p.Bits()}, nil
}

// MustParsePrefix is ParsePrefix for static literals; it panics on error.
func MustParsePrefix(s string) Prefix {
	p, err := ParsePrefix(s)
	if err != nil {
		panic(err)
	}
	return p
}

// IsValid reports whether p carries an address.
func (p Prefix) IsValid() bool {
	return p.addr.IsValid()
}

// Addr returns the interface address without the mask.
func (p Prefix) Addr() netip.Addr {
	return p.addr
}

// MaskLen returns the prefix length.
func (p Prefix) MaskLen() int {
	return p.bits
}

// IsV4 reports whether the address is IPv4.
func (p Prefix) IsV4() bool {
	return p.addr.Is4()
}

// IsFullHost reports whether the mask covers the whole address
// (/32 for IPv4, /128 for IPv6).
func (p Prefix) IsFullHost() bool {
	return p.bits == p.addr.BitLen()
}

// Subnet returns the network prefix: the address with host bits cleared,
// keeping the mask length.
func (p Prefix) Subnet() Prefix {
	masked := netip.PrefixFrom(p.addr, p.bits).Masked()
	return Prefix{addr: masked.Addr(), bits: p.bits}
}

// Host returns the address as a full-mask host prefix (/32 or /128).
func (p Prefix) Host() Prefix {
	return Prefix{addr: p.addr, bits: p.addr.BitLen()}
}

// Broadcast returns the IPv4 directed-broadcast address: the subnet with
// all host bits set. It returns the zero Addr for IPv6 prefixes.
func (p Prefix) Broadcast() netip.Addr {
	if !p.addr.Is4() {
		return netip.Addr{}
	}
	a4 := p.Subnet().addr.As4()
	hostBits := 32 - p.bits
	for i := 3; i >= 0 && hostBits > 0; i-- {
		n := hostBits
		if n > 8 {
			n = 8
		}
		a4[i] |= byte(0xff >> (8 - n))
		hostBits -= n
	}
	return netip.AddrFrom4(a4)
}

// Contains reports whether addr falls inside p's subnet.
func (p Prefix) Contains(addr netip.Addr) bool {
	return netip.PrefixFrom(p.addr, p.bits).Masked().Contains(addr.Unmap())
}

// Overlaps reports whether either prefix's address falls inside the
// other's subnet. This mirrors the kernel's notion of nested interface
// addresses, not plain prefix identity.
func (p Prefix) Overlaps(other Prefix) bool {
	return p.Contains(other.addr) || other.Contains(p.addr)
}

// String renders the canonical "addr/len" form.
func (p Prefix) String() string {
	return netip.PrefixFrom(p.addr, p.bits).String()
}
