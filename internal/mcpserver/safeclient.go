package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/G-USI/wirecrab/internal/httputil"
)

const maxRedirects = 10

// extraBlocked lists ranges the netip classifiers miss.
var extraBlocked = []netip.Prefix{
	netip.MustParsePrefix("100.64.0.0/10"), // carrier-grade NAT
	netip.MustParsePrefix("198.18.0.0/15"), // benchmarking
}

// isBlockedIP reports whether ip is somewhere a document URL must not reach:
// private, loopback, link-local, multicast, unspecified, or one of
// extraBlocked. IPv4-mapped IPv6 addresses are judged as IPv4.
func isBlockedIP(ip net.IP) bool {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return true
	}
	addr = addr.Unmap()
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsMulticast() || addr.IsUnspecified() {
		return true
	}
	for _, p := range extraBlocked {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ipGuard resolves hosts and refuses any whose addresses are blocked.
type ipGuard struct {
	resolver *net.Resolver
	dialer   *net.Dialer
}

// allowedAddr returns the first address of host after checking all of them.
func (g ipGuard) allowedAddr(ctx context.Context, host string) (net.IP, error) {
	addrs, err := g.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no IP addresses found for host: %s", host)
	}
	for _, a := range addrs {
		if isBlockedIP(a.IP) {
			return nil, fmt.Errorf("blocked request to private/loopback IP: %s (%s)", host, a.IP)
		}
	}
	return addrs[0].IP, nil
}

// dial connects to the checked address rather than letting the dialer
// resolve host a second time.
func (g ipGuard) dial(ctx context.Context, network, hostport string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return nil, err
	}
	ip, err := g.allowedAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	return g.dialer.DialContext(ctx, network, net.JoinHostPort(ip.String(), port))
}

func (g ipGuard) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	_, err := g.allowedAddr(req.Context(), req.URL.Hostname())
	return err
}

// newSafeHTTPClient returns the client used for spec URLs and remote $ref
// targets named by MCP callers. Every dial and every redirect hop goes
// through an ipGuard.
func newSafeHTTPClient() *http.Client {
	g := ipGuard{
		resolver: net.DefaultResolver,
		dialer:   &net.Dialer{Timeout: 10 * time.Second},
	}
	return &http.Client{
		Timeout:       httputil.DefaultTimeout,
		Transport:     &http.Transport{DialContext: g.dial},
		CheckRedirect: g.checkRedirect,
	}
}
