// Package targets turns address tokens (IP literals, CIDR blocks and host
// names) into the concrete IP addresses a scan connects to, and classifies
// them as private or public.
package targets

import (
	"net"
	"net/netip"

	"github.com/censys/cidranger"
)

// Target is a resolved address together with the label used when reporting it.
type Target struct {
	Addr  netip.Addr
	Label string
}

// Set is the outcome of resolving a list of address tokens.
type Set struct {
	Targets    []Target
	Unresolved []string
}

// Len returns the number of resolved targets.
func (s Set) Len() int { return len(s.Targets) }

// Empty reports whether no token produced a target.
func (s Set) Empty() bool { return len(s.Targets) == 0 }

// IsPrivate reports whether every target is in a private or loopback range.
// An empty set is private.
func (s Set) IsPrivate() bool {
	for _, t := range s.Targets {
		if !IsPrivate(t.Addr) {
			return false
		}
	}
	return true
}

// PrivateRanges are the networks treated as local for timing decisions.
var PrivateRanges = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
}

var privateRanger = newPrivateRanger()

func newPrivateRanger() cidranger.Ranger {
	ranger := cidranger.NewPCTrieRanger()
	for _, cidr := range PrivateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		if err := ranger.Insert(cidranger.NewBasicRangerEntry(*network)); err != nil {
			panic(err)
		}
	}
	return ranger
}

// IsPrivate reports whether addr falls in one of PrivateRanges.
// IPv4-mapped IPv6 addresses are classified by their IPv4 form.
func IsPrivate(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.Is4() {
		return false
	}
	ok, err := privateRanger.Contains(net.IP(addr.AsSlice()))
	return err == nil && ok
}
