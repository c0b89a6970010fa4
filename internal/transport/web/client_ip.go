package web

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// proxySet lists the reverse proxies allowed to report the client address.
// Entries are single addresses or CIDR ranges.
type proxySet []netip.Prefix

// parseProxies skips entries that are neither an address nor a range / Ignore les entrées invalides
func parseProxies(entries []string) proxySet {
	set := make(proxySet, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if p, err := netip.ParsePrefix(e); err == nil {
			set = append(set, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(e); err == nil {
			a = a.Unmap()
			set = append(set, netip.PrefixFrom(a, a.BitLen()))
		}
	}
	return set
}

func (s proxySet) trusts(a netip.Addr) bool {
	a = a.Unmap()
	for _, p := range s {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// clientIP returns the address of the caller / Retourne l'adresse de l'appelant
// Forwarding headers count only when the peer is a trusted proxy. X-Forwarded-For is
// read right to left and the first hop that is not a trusted proxy wins, X-Real-IP is the fallback.
func (s proxySet) clientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	peerAddr, err := netip.ParseAddr(peer)
	if err != nil || !s.trusts(peerAddr) {
		return peer
	}

	if forwarded := r.Header.Values("X-Forwarded-For"); len(forwarded) > 0 {
		hops := strings.Split(strings.Join(forwarded, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !s.trusts(hop) {
				return hop.Unmap().String()
			}
		}
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return realIP.Unmap().String()
	}
	return peer
}
