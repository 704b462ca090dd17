// Package collect gathers node and cluster metrics over SSH.
package collect

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/cephdash/internal/config"
	"github.com/rileyhilliard/cephdash/internal/errors"
	"github.com/rileyhilliard/cephdash/internal/logger"
	"github.com/rileyhilliard/cephdash/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// HostResult is the outcome of collecting one host.
type HostResult struct {
	Alias        string
	Sample       *metrics.HostSample
	Latency      time.Duration
	ConnectedVia string
	Err          error
}

// Collector gathers metrics from the configured nodes.
type Collector struct {
	hosts   map[string]config.Host
	monitor string
	pool    *Pool
	timeout time.Duration
	log     logger.Logger
	now     func() time.Time

	mu          sync.Mutex
	prevJiffies map[string]cpuTimes
}

// Option configures a Collector.
type Option func(*Collector)

// WithDialer replaces the SSH dialer.
func WithDialer(dial DialFunc) Option {
	return func(c *Collector) { c.pool.dial = dial }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Collector) { c.log = log }
}

// WithClock overrides the sample timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// NewCollector creates a collector for hosts. monitor names the host that
// runs ceph queries; empty disables them.
func NewCollector(hosts map[string]config.Host, monitor string, timeout time.Duration, opts ...Option) *Collector {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	c := &Collector{
		hosts:       hosts,
		monitor:     monitor,
		pool:        NewPool(hosts, timeout, nil),
		timeout:     timeout,
		log:         logger.Noop(),
		now:         time.Now,
		prevJiffies: make(map[string]cpuTimes),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hosts returns the aliases this collector covers, sorted.
func (c *Collector) Hosts() []string {
	cfg := config.Config{Hosts: c.hosts}
	return cfg.HostNames()
}

// Monitor returns the monitor alias, or "" when cluster queries are off.
func (c *Collector) Monitor() string {
	return c.monitor
}

// Close releases all pooled connections.
func (c *Collector) Close() {
	c.pool.Close()
}

// CollectStreaming gathers metrics from all hosts, streaming results as each
// completes. The channel is closed when every host has reported.
func (c *Collector) CollectStreaming(ctx context.Context) <-chan HostResult {
	hosts := c.Hosts()
	results := make(chan HostResult, len(hosts))

	var wg sync.WaitGroup
	for _, alias := range hosts {
		wg.Add(1)
		go func(alias string) {
			defer wg.Done()

			hostCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := c.now()
			sample, err := c.CollectOne(hostCtx, alias)
			results <- HostResult{
				Alias:        alias,
				Sample:       sample,
				Latency:      c.now().Sub(start),
				ConnectedVia: c.pool.ConnectedVia(alias),
				Err:          err,
			}
		}(alias)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// CollectOne runs the batched command on one host and parses its output.
func (c *Collector) CollectOne(ctx context.Context, alias string) (*metrics.HostSample, error) {
	out, err := c.run(ctx, alias, HostCommand())
	if err != nil {
		return nil, err
	}
	return c.parseHostOutput(alias, string(out))
}

// Cluster queries the monitor host for cluster status and pool rates. Both
// commands run concurrently; either failing fails the call.
func (c *Collector) Cluster(ctx context.Context) (*metrics.ClusterStatus, error) {
	if c.monitor == "" {
		return nil, errors.New(errors.ErrCollect,
			"No monitor host configured",
			"Set cluster.monitor in .cephdash.yaml to see cluster health.")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var statusOut, poolsOut []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := c.run(gctx, c.monitor, CephStatusCommand)
		statusOut = out
		return err
	})
	g.Go(func() error {
		out, err := c.run(gctx, c.monitor, CephPoolStatsCommand)
		poolsOut = out
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status, err := parseCephStatus(statusOut)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollect, "Couldn't read ceph status", "Check the ceph CLI works on "+c.monitor)
	}
	pools, err := parsePoolStats(poolsOut)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollect, "Couldn't read pool stats", "Check the ceph CLI works on "+c.monitor)
	}
	status.Pools = pools
	status.Timestamp = c.now()
	return status, nil
}

// run executes cmd on alias through the pool. A transport failure drops the
// pooled connection so the next cycle re-dials.
func (c *Collector) run(ctx context.Context, alias, cmd string) ([]byte, error) {
	conn, err := c.pool.Get(ctx, alias)
	if err != nil {
		return nil, err
	}
	stdout, stderr, code, err := conn.Exec(ctx, cmd)
	if err != nil {
		c.pool.CloseOne(alias)
		return nil, err
	}
	if code != 0 {
		return nil, errors.New(errors.ErrExec,
			fmt.Sprintf("'%s' exited %d on %s: %s", firstWord(cmd), code, alias, strings.TrimSpace(string(stderr))),
			"Run it by hand on the node to see what's wrong.")
	}
	return stdout, nil
}

func (c *Collector) parseHostOutput(alias, output string) (*metrics.HostSample, error) {
	sections := strings.Split(output, OutputSeparator+"\n")
	if len(sections) < numSections {
		return nil, errors.New(errors.ErrCollect,
			fmt.Sprintf("Incomplete output from %s (%d of %d sections)", alias, len(sections), numSections),
			"The node may not be Linux, or a command timed out.")
	}
	for i := range sections {
		sections[i] = strings.TrimSpace(sections[i])
	}

	sample := &metrics.HostSample{Timestamp: c.now()}

	times, cores, err := parseProcStat(sections[secStat])
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollect, "Bad /proc/stat from "+alias, "")
	}
	c.mu.Lock()
	prev, ok := c.prevJiffies[alias]
	c.prevJiffies[alias] = times
	c.mu.Unlock()
	if ok {
		sample.CPU = cpuPercents(&prev, times)
	} else {
		sample.CPU = cpuPercents(nil, times)
	}
	sample.CPU.Cores = cores

	// The remaining sections degrade to empty rather than failing the host.
	if load, err := parseLoadavg(sections[secLoadavg]); err == nil {
		sample.CPU.LoadAvg = load
	} else {
		c.log.Debug("%s: %v", alias, err)
	}
	if ram, err := parseMeminfo(sections[secMeminfo]); err == nil {
		sample.RAM = ram
	} else {
		c.log.Debug("%s: %v", alias, err)
	}
	if disks, err := parseDiskstats(sections[secDiskstats]); err == nil {
		sample.Disks = disks
	} else {
		c.log.Debug("%s: %v", alias, err)
	}
	if nics, err := parseNetDev(sections[secNetDev]); err == nil {
		sample.Network = nics
	} else {
		c.log.Debug("%s: %v", alias, err)
	}
	sample.Filesystems = parseDF(sections[secDFBytes], sections[secDFInodes])

	return sample, nil
}

func firstWord(cmd string) string {
	if i := strings.IndexByte(cmd, ' '); i > 0 {
		return cmd[:i]
	}
	return cmd
}
