package targets

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"
)

//go:generate mockgen -source=lookup.go -destination=mocks/mock_lookup.go -package=mocks

// HostLookup resolves a host name to its addresses.
type HostLookup interface {
	LookupHost(ctx context.Context, host string) ([]netip.Addr, error)
}

// DefaultDNSServers are queried when the system resolver fails.
var DefaultDNSServers = []string{"8.8.8.8:53", "8.8.4.4:53"}

// SystemLookup uses the operating system resolver, hosts file included.
type SystemLookup struct {
	Resolver *net.Resolver
}

// LookupHost implements HostLookup.
func (s SystemLookup) LookupHost(ctx context.Context, host string) ([]netip.Addr, error) {
	r := s.Resolver
	if r == nil {
		r = net.DefaultResolver
	}
	addrs, err := r.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	for i := range addrs {
		addrs[i] = addrs[i].Unmap()
	}
	return addrs, nil
}

// DNSLookup queries a fixed list of DNS servers directly, bypassing the
// system resolver configuration. A records are preferred over AAAA.
type DNSLookup struct {
	servers []string
	client  *dns.Client
}

// NewDNSLookup creates a DNSLookup. An empty server list uses DefaultDNSServers.
func NewDNSLookup(servers []string, timeout time.Duration) *DNSLookup {
	if len(servers) == 0 {
		servers = DefaultDNSServers
	}
	return &DNSLookup{
		servers: servers,
		client:  &dns.Client{Net: "udp", Timeout: timeout},
	}
}

// LookupHost implements HostLookup.
func (d *DNSLookup) LookupHost(ctx context.Context, host string) ([]netip.Addr, error) {
	var lastErr error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		for _, server := range d.servers {
			addrs, err := d.exchange(ctx, host, qtype, server)
			if err != nil {
				lastErr = err
				continue
			}
			if len(addrs) > 0 {
				return addrs, nil
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no address records for %s", host)
	}
	return nil, lastErr
}

func (d *DNSLookup) exchange(ctx context.Context, host string, qtype uint16, server string) ([]netip.Addr, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)
	m.RecursionDesired = true

	resp, _, err := d.client.ExchangeContext(ctx, m, server)
	if err != nil {
		return nil, fmt.Errorf("dns query to %s failed: %w", server, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("dns query to %s returned %s", server, dns.RcodeToString[resp.Rcode])
	}

	var addrs []netip.Addr
	for _, rr := range resp.Answer {
		var ip net.IP
		switch rec := rr.(type) {
		case *dns.A:
			ip = rec.A
		case *dns.AAAA:
			ip = rec.AAAA
		default:
			continue
		}
		if addr, ok := netip.AddrFromSlice(ip); ok {
			addrs = append(addrs, addr.Unmap())
		}
	}
	return addrs, nil
}
