// Package clientip resolves a best-effort client IP for a request.
//
// The result is the canonical text form from net/netip: IPv4-mapped IPv6
// addresses are unmapped and IPv6 is compressed, so the same client always
// yields the same string. Login tokens are pinned to that string.
package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Resolver extracts the client IP from an *http.Request.
type Resolver struct {
	// TrustProxy enables X-Forwarded-For, X-Real-IP and REMOTE_ADDR headers.
	// Only enable it behind a proxy that sets or appends to these headers.
	TrustProxy bool

	// TrustedHops is the number of trusted proxies in front of the server.
	// The client address is the X-Forwarded-For entry that many positions
	// from the right; entries further left are client supplied. Zero means 1.
	TrustedHops int
}

// Resolve returns the client IP, or "" when nothing usable is present.
// It never fails.
func (res Resolver) Resolve(r *http.Request) string {
	if r == nil {
		return ""
	}

	if res.TrustProxy {
		hops := res.TrustedHops
		if hops <= 0 {
			hops = 1
		}
		if ip := forwardedFromRight(r.Header.Values("X-Forwarded-For"), hops); ip != "" {
			return ip
		}
		if ip := canonical(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}

	if ip := remoteHost(r.RemoteAddr); ip != "" {
		return ip
	}

	if res.TrustProxy {
		return canonical(r.Header.Get("REMOTE_ADDR"))
	}
	return ""
}

// forwardedFromRight returns the X-Forwarded-For entry added by the
// outermost trusted proxy, counting hops from the right across all header
// lines. A list shorter than hops or an unparseable entry yields "".
func forwardedFromRight(values []string, hops int) string {
	var entries []string
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				entries = append(entries, p)
			}
		}
	}
	if len(entries) < hops {
		return ""
	}
	addr, err := netip.ParseAddr(entries[len(entries)-hops])
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}

func remoteHost(remoteAddr string) string {
	remoteAddr = strings.TrimSpace(remoteAddr)
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return canonical(host)
}

// canonical normalises an address; unparseable input is kept trimmed so a
// stable but odd value still pins consistently.
func canonical(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	addr, err := netip.ParseAddr(strings.Trim(raw, "[]"))
	if err != nil {
		return raw
	}
	return addr.Unmap().String()
}
