// Package domain resolves host names into IP addresses.
package domain

import (
	"context"
	"maps"
	"net"
	"net/netip"
	"slices"

	"github.com/pkg/errors"
)

var ErrDomainNotFound = errors.New("domain not found")

type Lookuper interface {
	LookupIP(ctx context.Context, domain string) (addrs []netip.Addr, err error)
}

type resolverLookuper struct {
	resolver *net.Resolver
}

var _ Lookuper = (*resolverLookuper)(nil)

// NewResolverLookuper asks resolver, or [net.DefaultResolver] if nil.
func NewResolverLookuper(resolver *net.Resolver) *resolverLookuper {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &resolverLookuper{resolver: resolver}
}

func (r *resolverLookuper) LookupIP(ctx context.Context, domain string) ([]netip.Addr, error) {
	addrs, err := r.resolver.LookupNetIP(ctx, "ip", domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, errors.Wrap(ErrDomainNotFound, err.Error())
		}
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, errors.Wrap(ErrDomainNotFound, domain)
	}
	return addrs, nil
}

type mapLookuper struct {
	set map[string][]netip.Addr
}

var _ Lookuper = (*mapLookuper)(nil)

func NewMapLookuper(set map[string][]netip.Addr) *mapLookuper {
	if set == nil {
		set = make(map[string][]netip.Addr)
	}
	return &mapLookuper{set: maps.Clone(set)}
}

func (m *mapLookuper) LookupIP(ctx context.Context, domain string) (addrs []netip.Addr, err error) {
	addrs, ok := m.set[domain]
	if !ok {
		return nil, ErrDomainNotFound
	}
	return slices.Clone(addrs), nil
}

func (m *mapLookuper) Set(domain string, addrs []netip.Addr) {
	if len(addrs) == 0 {
		return
	}
	m.set[domain] = addrs
}

func (m *mapLookuper) Del(domain string) { delete(m.set, domain) }
