// Package tcp dials real TCP connections with the standard network stack
// and exposes them as [transport.Conn].
package tcp

import (
	"context"
	"log/slog"
	"net"
	"net/netip"
	"syscall"
	"time"

	"http-exchange/network/domain"
	"http-exchange/transport"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

type DialerOptions struct {
	// Timeout bounds a single connect attempt. Zero means only ctx bounds it.
	Timeout time.Duration
	// KeepAlive is passed to [net.Dialer]. Negative disables it.
	KeepAlive time.Duration
	// ProbeWindow is how long [transport.Conn.Available] waits on the socket
	// for the first byte before reporting nothing available.
	ProbeWindow time.Duration

	// ResolveCacheSize is the number of host names kept resolved.
	// Negative disables the cache.
	ResolveCacheSize int
	// ResolveTTL is how long a resolved host name is trusted.
	ResolveTTL time.Duration
}

var DefaultDialerOptions = DialerOptions{
	Timeout:          10 * time.Second,
	ProbeWindow:      time.Millisecond,
	ResolveCacheSize: 128,
	ResolveTTL:       time.Minute,
}

func (o DialerOptions) withDefaults() DialerOptions {
	if o.ProbeWindow <= 0 {
		o.ProbeWindow = DefaultDialerOptions.ProbeWindow
	}
	if o.ResolveCacheSize == 0 {
		o.ResolveCacheSize = DefaultDialerOptions.ResolveCacheSize
	}
	if o.ResolveTTL <= 0 {
		o.ResolveTTL = DefaultDialerOptions.ResolveTTL
	}
	return o
}

type resolved struct {
	addrs     []netip.Addr
	expiresAt time.Time
}

type Dialer struct {
	dialer   net.Dialer
	lookuper domain.Lookuper
	cache    *lru.Cache[string, resolved] // nil if disabled.

	opts   DialerOptions
	logger *slog.Logger
	clock  clock.Clock
}

var _ transport.ConnDialer = (*Dialer)(nil)

// NewDialer resolves host names with lookuper, or the system resolver if nil.
func NewDialer(
	lookuper domain.Lookuper,
	logger *slog.Logger,
	clock clock.Clock,
	opts DialerOptions,
) (*Dialer, error) {
	opts = opts.withDefaults()

	if lookuper == nil {
		lookuper = domain.NewResolverLookuper(nil)
	}

	d := &Dialer{
		dialer: net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: opts.KeepAlive,
		},
		lookuper: lookuper,
		opts:     opts,
		logger:   logger,
		clock:    clock,
	}

	if opts.ResolveCacheSize > 0 {
		cache, err := lru.New[string, resolved](opts.ResolveCacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "creating resolve cache")
		}
		d.cache = cache
	}

	return d, nil
}

func (d *Dialer) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	tcpAddr, ok := addr.(Addr)
	if !ok {
		return nil, errors.Errorf("unsupported address type %T", addr)
	}

	ips, err := d.resolve(ctx, tcpAddr.Host())
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, ip := range ips {
		target := netip.AddrPortFrom(ip.Unmap(), tcpAddr.Port()).String()

		nc, err := d.dialer.DialContext(ctx, string(transport.TCP), target)
		if err != nil {
			lastErr = classifyDialErr(err, target)
			d.logger.Debug("dial attempt failed", slog.String("target", target), slog.Any("error", err))
			continue
		}

		// Requests are written in two parts; don't hold the first one back.
		if tc, ok := nc.(*net.TCPConn); ok {
			if err := tc.SetNoDelay(true); err != nil {
				nc.Close()
				return nil, errors.Wrap(err, "disabling Nagle's algorithm")
			}
		}

		d.logger.Debug("dialed", slog.String("addr", addr.String()), slog.String("target", target))
		return newConn(nc, d.opts.ProbeWindow), nil
	}

	return nil, lastErr
}

func (d *Dialer) resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	if ip, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{ip}, nil
	}

	if d.cache != nil {
		if r, ok := d.cache.Get(host); ok && d.clock.Now().Before(r.expiresAt) {
			return r.addrs, nil
		}
	}

	addrs, err := d.lookuper.LookupIP(ctx, host)
	if err != nil {
		if errors.Is(err, domain.ErrDomainNotFound) {
			return nil, errors.Wrapf(transport.ErrHostNotFound, "%s: %v", host, err)
		}
		return nil, errors.Wrapf(err, "lookup for host(%s) failed", host)
	}
	if len(addrs) == 0 {
		return nil, errors.Wrap(transport.ErrHostNotFound, host)
	}

	if d.cache != nil {
		d.cache.Add(host, resolved{addrs: addrs, expiresAt: d.clock.Now().Add(d.opts.ResolveTTL)})
	}

	return addrs, nil
}

func classifyDialErr(err error, target string) error {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return errors.Wrap(transport.ErrConnRefused, target)
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return errors.Wrap(transport.ErrNetUnreachable, target)
	}
	return errors.Wrapf(err, "dialing %s", target)
}
