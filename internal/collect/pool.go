package collect

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/cephdash/internal/config"
	"github.com/rileyhilliard/cephdash/pkg/sshutil"
)

// Conn is a live connection to one node.
type Conn interface {
	sshutil.Runner
	Alive() bool
}

// DialFunc opens a connection to an ssh target.
type DialFunc func(target string, timeout time.Duration) (Conn, error)

// DialSSH is the production DialFunc.
func DialSSH(target string, timeout time.Duration) (Conn, error) {
	client, err := sshutil.Dial(target, timeout)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Pool manages SSH connections for reuse between refresh cycles.
// It keeps connections alive to avoid the overhead of reconnecting on each
// collection.
type Pool struct {
	mu          sync.Mutex
	hosts       map[string]config.Host
	connections map[string]*poolEntry
	timeout     time.Duration
	dial        DialFunc
}

type poolEntry struct {
	conn     Conn
	via      string
	lastUsed time.Time
}

// NewPool creates a connection pool over the configured hosts.
func NewPool(hosts map[string]config.Host, timeout time.Duration, dial DialFunc) *Pool {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if dial == nil {
		dial = DialSSH
	}
	return &Pool{
		hosts:       hosts,
		connections: make(map[string]*poolEntry),
		timeout:     timeout,
		dial:        dial,
	}
}

// Get returns the cached connection for alias, or dials its ssh targets in
// order until one answers. A dead cached connection is replaced.
func (p *Pool) Get(ctx context.Context, alias string) (Conn, error) {
	p.mu.Lock()
	entry, exists := p.connections[alias]
	p.mu.Unlock()

	if exists {
		if entry.conn.Alive() {
			p.mu.Lock()
			entry.lastUsed = time.Now()
			p.mu.Unlock()
			return entry.conn, nil
		}
		p.CloseOne(alias)
	}

	targets := p.hosts[alias].SSH
	if len(targets) == 0 {
		targets = []string{alias}
	}

	var lastErr error
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		conn, err := p.dial(target, p.timeout)
		if err != nil {
			lastErr = err
			continue
		}
		p.mu.Lock()
		p.connections[alias] = &poolEntry{conn: conn, via: target, lastUsed: time.Now()}
		p.mu.Unlock()
		return conn, nil
	}
	return nil, lastErr
}

// ConnectedVia returns the ssh target the cached connection for alias used.
func (p *Pool) ConnectedVia(alias string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if entry, ok := p.connections[alias]; ok {
		return entry.via
	}
	return ""
}

// Close closes all connections in the pool and clears it.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for alias, entry := range p.connections {
		_ = entry.conn.Close()
		delete(p.connections, alias)
	}
}

// CloseOne closes and removes a specific connection from the pool.
func (p *Pool) CloseOne(alias string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.connections[alias]; ok {
		_ = entry.conn.Close()
		delete(p.connections, alias)
	}
}

// Size returns the number of connections in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.connections)
}
