// Package netprobe implements driven.ConnectivityProbe by dialling the
// catalog host over TCP.
package netprobe

import (
	"net"
	"sync"
	"time"

	"github.com/custodia-labs/imgscout/internal/core/ports/driven"
	"github.com/custodia-labs/imgscout/internal/logger"
)

const (
	// DefaultDialTimeout bounds a single probe.
	DefaultDialTimeout = 2 * time.Second

	// DefaultTTL is how long a probe result is reused.
	DefaultTTL = 5 * time.Second
)

// Ensure Probe implements the interface.
var _ driven.ConnectivityProbe = (*Probe)(nil)

// Probe reports whether a TCP connection to an address can be opened.
//
// Only the first call dials synchronously. After that IsReachable always
// answers from the last known result; once the result is older than the TTL
// (or has been invalidated) the call that notices starts one background
// re-dial and still returns the previous answer.
type Probe struct {
	address string
	timeout time.Duration
	ttl     time.Duration
	dial    func(network, address string, timeout time.Duration) (net.Conn, error)
	now     func() time.Time

	mu         sync.Mutex
	known      bool
	checkedAt  time.Time
	reachable  bool
	refreshing bool
	refreshed  chan struct{} // closed when the current refresh finishes
}

// Option configures a Probe.
type Option func(*Probe)

// WithTimeout sets the dial timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Probe) { p.timeout = d }
}

// WithTTL sets how long a result is cached. Zero disables caching.
func WithTTL(d time.Duration) Option {
	return func(p *Probe) { p.ttl = d }
}

// New creates a probe for address ("host:port"). An empty address makes
// the probe always report reachable.
func New(address string, opts ...Option) *Probe {
	p := &Probe{
		address: address,
		timeout: DefaultDialTimeout,
		ttl:     DefaultTTL,
		dial:    net.DialTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsReachable returns the last known result, refreshing it in the background
// when stale. The first call has nothing to fall back on and dials inline.
func (p *Probe) IsReachable() bool {
	if p.address == "" {
		return true
	}

	p.mu.Lock()
	if !p.known {
		p.mu.Unlock()
		return p.check()
	}
	reachable := p.reachable
	if p.stale() && !p.refreshing {
		p.refreshing = true
		p.refreshed = make(chan struct{})
		go p.refresh(p.refreshed)
	}
	p.mu.Unlock()
	return reachable
}

// Warm starts a background dial so the first IsReachable call does not block.
func (p *Probe) Warm() {
	if p.address == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refreshing {
		return
	}
	p.refreshing = true
	p.refreshed = make(chan struct{})
	go p.refresh(p.refreshed)
}

// Invalidate marks the cached result stale. The next IsReachable call
// triggers a refresh.
func (p *Probe) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkedAt = time.Time{}
}

// stale reports whether the cached result has expired (caller must hold lock).
func (p *Probe) stale() bool {
	return p.checkedAt.IsZero() || p.now().Sub(p.checkedAt) >= p.ttl
}

func (p *Probe) refresh(done chan struct{}) {
	defer close(done)
	p.check()
	p.mu.Lock()
	p.refreshing = false
	p.mu.Unlock()
}

// check dials once and records the result.
func (p *Probe) check() bool {
	ok := true
	conn, err := p.dial("tcp", p.address, p.timeout)
	if err != nil {
		logger.Debug("netprobe: %s unreachable: %v", p.address, err)
		ok = false
	} else {
		_ = conn.Close()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.known = true
	p.reachable = ok
	p.checkedAt = p.now()
	return ok
}
