package targets

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/anstrom/portsweep/internal/errors"
	"github.com/anstrom/portsweep/internal/logging"
)

const (
	// DefaultMaxExpansion is the largest number of addresses one CIDR token may produce.
	DefaultMaxExpansion = 1 << 24

	defaultDNSTimeout = 2 * time.Second
)

// Resolver turns address tokens into targets.
type Resolver struct {
	lookups      []HostLookup
	maxExpansion int
	logger       *logging.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLookups replaces the host lookup chain. Lookups are tried in order and
// the first one returning an address wins.
func WithLookups(lookups ...HostLookup) Option {
	return func(r *Resolver) { r.lookups = lookups }
}

// WithMaxExpansion caps how many addresses a single CIDR token may expand to.
func WithMaxExpansion(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxExpansion = n
		}
	}
}

// WithLogger sets the logger used for unresolved-token warnings.
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a Resolver that tries the system resolver and then the
// default public DNS servers.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		lookups: []HostLookup{
			SystemLookup{},
			NewDNSLookup(DefaultDNSServers, defaultDNSTimeout),
		},
		maxExpansion: DefaultMaxExpansion,
		logger:       logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves every token in order. CIDR blocks and IP literals expand to
// every contained address, each labelled with itself. Host names resolve to
// their first address, labelled with the original token. Tokens that produce
// nothing are logged and collected in Set.Unresolved.
func (r *Resolver) Resolve(ctx context.Context, tokens []string) Set {
	var set Set
	for _, raw := range tokens {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}

		resolved, err := r.resolveToken(ctx, token)
		if err != nil {
			r.logger.WarnResolve("Address could not be resolved, skipping", token, err)
			set.Unresolved = append(set.Unresolved, token)
			continue
		}
		set.Targets = append(set.Targets, resolved...)
	}
	return set
}

func (r *Resolver) resolveToken(ctx context.Context, token string) ([]Target, error) {
	if strings.Contains(token, "/") {
		prefix, err := netip.ParsePrefix(token)
		if err != nil {
			return nil, errors.NewResolveError(token, err)
		}
		return r.expandPrefix(token, prefix.Masked())
	}
	if prefix, ok := hostPrefix(token); ok {
		return r.expandPrefix(token, prefix)
	}
	if addr, err := netip.ParseAddr(token); err == nil {
		// zoned IPv6 literals have no prefix form
		return []Target{{Addr: addr, Label: addr.String()}}, nil
	}

	target, err := r.lookupHost(ctx, token)
	if err != nil {
		return nil, err
	}
	return []Target{target}, nil
}

// hostPrefix turns a bare IP literal into a single-address prefix.
func hostPrefix(token string) (netip.Prefix, bool) {
	addr, err := netip.ParseAddr(token)
	if err != nil || addr.Zone() != "" {
		return netip.Prefix{}, false
	}
	return netip.PrefixFrom(addr, addr.BitLen()), true
}

func (r *Resolver) expandPrefix(token string, p netip.Prefix) ([]Target, error) {
	hostBits := p.Addr().BitLen() - p.Bits()
	if hostBits >= 62 || 1<<hostBits > r.maxExpansion {
		return nil, errors.NewResolveError(token,
			fmt.Errorf("prefix holds more than %d addresses", r.maxExpansion))
	}

	out := make([]Target, 0, 1<<hostBits)
	for addr := p.Addr(); addr.IsValid() && p.Contains(addr); addr = addr.Next() {
		out = append(out, Target{Addr: addr, Label: addr.String()})
	}
	return out, nil
}

func (r *Resolver) lookupHost(ctx context.Context, token string) (Target, error) {
	host := token
	if h, _, err := net.SplitHostPort(token); err == nil {
		host = h
	}

	var lastErr error
	for _, lookup := range r.lookups {
		addrs, err := lookup.LookupHost(ctx, host)
		if err != nil {
			lastErr = err
			r.logger.Debug("Host lookup failed", "component", "resolver", "address", token, "error", err)
			continue
		}
		if len(addrs) > 0 {
			return Target{Addr: addrs[0], Label: token}, nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no addresses found for %s", host)
	}
	return Target{}, errors.NewResolveError(token, lastErr)
}
