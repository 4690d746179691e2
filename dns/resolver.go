package dns

import (
	"context"
	"net"
	"net/netip"
	"slices"
	"sync"
	"time"

	"github.com/sagernet/sing-connect/common/event"
	C "github.com/sagernet/sing-connect/constant"
	"github.com/sagernet/sing-connect/log"
	"github.com/sagernet/sing/common"
	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sagernet/sing/contrab/freelru"
	"github.com/sagernet/sing/contrab/maphash"

	mDNS "github.com/miekg/dns"
	"golang.org/x/sync/errgroup"
)

var ErrNoAddresses = E.New("no addresses")

// Exchanger sends one query to one server. *mDNS.Client implements it.
type Exchanger interface {
	ExchangeContext(ctx context.Context, message *mDNS.Msg, address string) (*mDNS.Msg, time.Duration, error)
}

type Options struct {
	Logger         log.ContextLogger
	Servers        []string
	Exchanger      Exchanger
	StaticFallback map[string][]netip.Addr
	NetworkChange  *event.Event
}

type cacheKey struct {
	host string
	ipv6 bool
}

type cacheEntry struct {
	addresses []netip.Addr
}

// Resolver looks names up over plain DNS and falls back to a static table
// when every server fails. Answers are cached until the next network change.
type Resolver struct {
	logger         log.ContextLogger
	servers        []string
	exchanger      Exchanger
	staticFallback map[string][]netip.Addr
	cache          freelru.Cache[cacheKey, *cacheEntry]
	subscription   *event.Subscription
	closeOnce      sync.Once
}

func NewResolver(options Options) *Resolver {
	resolver := &Resolver{
		logger:         options.Logger,
		servers:        options.Servers,
		exchanger:      options.Exchanger,
		staticFallback: options.StaticFallback,
		cache:          common.Must1(freelru.NewSharded[cacheKey, *cacheEntry](C.DNSCacheSize, maphash.NewHasher[cacheKey]().Hash32)),
	}
	resolver.cache.SetLifetime(C.DNSCacheTTL)
	if resolver.logger == nil {
		resolver.logger = log.NewNOPLogger()
	}
	if len(resolver.servers) == 0 {
		resolver.servers = defaultServers()
	}
	if resolver.exchanger == nil {
		resolver.exchanger = &mDNS.Client{Net: "udp", Timeout: C.DNSTimeout}
	}
	if options.NetworkChange != nil {
		resolver.subscription = options.NetworkChange.Subscribe(resolver.resetCache)
	}
	return resolver
}

func defaultServers() []string {
	config, err := mDNS.ClientConfigFromFile("/etc/resolv.conf")
	if err == nil && len(config.Servers) > 0 {
		servers := make([]string, 0, len(config.Servers))
		for _, server := range config.Servers {
			servers = append(servers, net.JoinHostPort(server, config.Port))
		}
		return servers
	}
	return []string{"1.1.1.1:53", "8.8.8.8:53"}
}

func (r *Resolver) resetCache() {
	r.cache.Purge()
	r.logger.Debug("dns cache cleared")
}

// Lookup returns the addresses of host. AAAA records are only requested when
// ipv6 is set.
func (r *Resolver) Lookup(ctx context.Context, host string, ipv6 bool) ([]netip.Addr, error) {
	if address, err := netip.ParseAddr(host); err == nil {
		address = address.Unmap()
		if address.Is6() && !ipv6 {
			return nil, E.Cause(ErrNoAddresses, "ipv6 literal ", host, " with ipv6 disabled")
		}
		return []netip.Addr{address}, nil
	}
	key := cacheKey{host, ipv6}
	if entry, cached := r.cache.Get(key); cached {
		return slices.Clone(entry.addresses), nil
	}
	ctx, cancel := context.WithTimeout(ctx, C.DNSTimeout)
	defer cancel()
	var errors []error
	for _, server := range r.servers {
		addresses, err := r.lookupServer(ctx, server, host, ipv6)
		if err == nil {
			r.cache.Add(key, &cacheEntry{slices.Clone(addresses)})
			return addresses, nil
		}
		errors = append(errors, E.Cause(err, server))
		if ctx.Err() != nil {
			break
		}
	}
	if fallback := r.lookupStatic(host, ipv6); len(fallback) > 0 {
		r.logger.DebugContext(ctx, "lookup ", host, " failed, using static fallback")
		return fallback, nil
	}
	return nil, E.Cause(E.Errors(errors...), "lookup ", host)
}

func (r *Resolver) lookupStatic(host string, ipv6 bool) []netip.Addr {
	return common.Filter(r.staticFallback[host], func(it netip.Addr) bool {
		return ipv6 || it.Is4()
	})
}

func (r *Resolver) lookupServer(ctx context.Context, server string, host string, ipv6 bool) ([]netip.Addr, error) {
	var (
		group         errgroup.Group
		ipv4Addresses []netip.Addr
		ipv6Addresses []netip.Addr
		ipv6Err       error
	)
	group.Go(func() error {
		var err error
		ipv4Addresses, err = r.exchange(ctx, server, host, mDNS.TypeA)
		return err
	})
	if ipv6 {
		group.Go(func() error {
			ipv6Addresses, ipv6Err = r.exchange(ctx, server, host, mDNS.TypeAAAA)
			return nil
		})
	}
	err := group.Wait()
	if err != nil {
		return nil, err
	}
	if ipv6Err != nil {
		if len(ipv4Addresses) == 0 {
			return nil, ipv6Err
		}
		r.logger.DebugContext(ctx, "lookup AAAA ", host, " at ", server, ": ", ipv6Err)
	}
	addresses := append(ipv4Addresses, ipv6Addresses...)
	if len(addresses) == 0 {
		return nil, ErrNoAddresses
	}
	return addresses, nil
}

func (r *Resolver) exchange(ctx context.Context, server string, host string, queryType uint16) ([]netip.Addr, error) {
	message := new(mDNS.Msg)
	message.SetQuestion(mDNS.Fqdn(host), queryType)
	message.RecursionDesired = true
	response, _, err := r.exchanger.ExchangeContext(ctx, message, server)
	if err != nil {
		return nil, err
	}
	switch response.Rcode {
	case mDNS.RcodeSuccess:
	case mDNS.RcodeNameError:
		return nil, nil
	default:
		return nil, E.New("query ", mDNS.TypeToString[queryType], " ", host, ": ", mDNS.RcodeToString[response.Rcode])
	}
	var addresses []netip.Addr
	for _, answer := range response.Answer {
		switch record := answer.(type) {
		case *mDNS.A:
			if address, loaded := netip.AddrFromSlice(record.A); loaded {
				addresses = append(addresses, address.Unmap())
			}
		case *mDNS.AAAA:
			if address, loaded := netip.AddrFromSlice(record.AAAA); loaded {
				addresses = append(addresses, address)
			}
		}
	}
	return addresses, nil
}

func (r *Resolver) Close() error {
	r.closeOnce.Do(func() {
		if r.subscription != nil {
			r.subscription.Close()
		}
	})
	return nil
}
