package server

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/adfharrison1/cpaas-admin/pkg/api"
)

// idleLimiterTTL is how long an unused per-client limiter is kept
const idleLimiterTTL = 10 * time.Minute

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter applies a token bucket per client IP
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	limit   rate.Limit
	burst   int
	trusted []*net.IPNet
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewClientLimiter allows rps requests per second per client with the given
// burst and starts a janitor that forgets idle clients. Clients are keyed by
// socket address unless the peer is one of the trusted proxies.
func NewClientLimiter(rps float64, burst int, trusted ...*net.IPNet) *ClientLimiter {
	l := &ClientLimiter{
		clients: make(map[string]*clientEntry),
		limit:   rate.Limit(rps),
		burst:   burst,
		trusted: trusted,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.janitor(time.Minute)
	return l
}

// Allow reports whether the client may make a request now
func (l *ClientLimiter) Allow(client string) bool {
	l.mu.Lock()
	entry, ok := l.clients[client]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = entry
	}
	now := l.now()
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Middleware rejects clients over their budget with 429
func (l *ClientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r, l.trusted)) {
			retry := 1
			if l.limit > 0 {
				retry = int(1/float64(l.limit)) + 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			api.WriteJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stop ends the janitor goroutine
func (l *ClientLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *ClientLimiter) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.stop:
			return
		}
	}
}

func (l *ClientLimiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-idleLimiterTTL)
	for client, entry := range l.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(l.clients, client)
		}
	}
}

// ParseTrustedProxies turns IP and CIDR strings into networks
func ParseTrustedProxies(entries []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 128
			if ip4 := ip.To4(); ip4 != nil {
				ip, bits = ip4, 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// clientIP is the socket peer address. When the peer is a trusted proxy the
// X-Forwarded-For chain is walked from the right and the first address that
// is not itself a trusted proxy wins.
func clientIP(r *http.Request, trusted []*net.IPNet) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if len(trusted) == 0 || !isTrusted(net.ParseIP(host), trusted) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		ip := net.ParseIP(strings.TrimSpace(hops[i]))
		if ip == nil {
			break
		}
		if !isTrusted(ip, trusted) {
			return ip.String()
		}
	}
	return host
}

func isTrusted(ip net.IP, trusted []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, n := range trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
