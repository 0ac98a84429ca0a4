package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Proxies is the set of reverse proxies whose X-Forwarded-For header is
// believed. A nil or empty set trusts nobody, so the TCP peer is the client.
type Proxies struct {
	prefixes []netip.Prefix
}

// ParseProxies accepts bare addresses ("10.0.0.1") and CIDR ranges
// ("10.0.0.0/8", "fd00::/8").
func ParseProxies(entries []string) (*Proxies, error) {
	p := &Proxies{}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			pfx, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			p.prefixes = append(p.prefixes, pfx.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		addr = addr.Unmap()
		p.prefixes = append(p.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return p, nil
}

// Trusts reports whether addr belongs to a configured proxy.
func (p *Proxies) Trusts(addr netip.Addr) bool {
	if p == nil || !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	for _, pfx := range p.prefixes {
		if pfx.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the address of the client behind r. X-Forwarded-For is
// read only when the TCP peer is a trusted proxy; its hops are then walked
// right to left and the first one that is not a trusted proxy wins. A
// malformed hop stops the walk at the last address known good.
func (p *Proxies) ClientIP(r *http.Request) string {
	client := peerHost(r.RemoteAddr)
	addr, err := netip.ParseAddr(client)
	if err != nil || !p.Trusts(addr) {
		return client
	}

	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		hops = append(hops, strings.Split(v, ",")...)
	}
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			return client
		}
		client = hop.Unmap().String()
		if !p.Trusts(hop) {
			return client
		}
	}
	return client
}

func peerHost(remote string) string {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}
