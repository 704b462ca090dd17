package dashboard

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/cephdash/internal/collect"
	"github.com/rileyhilliard/cephdash/internal/errors"
	"github.com/rileyhilliard/cephdash/internal/reqres"
)

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// collectCmd starts a cycle unless one is still running. Host results
// stream in one message at a time; the cluster status runs alongside when a
// monitor host is configured.
func (m *Model) collectCmd() tea.Cmd {
	if m.parts > 0 {
		m.log.Debug("collect: previous cycle still running, skipping")
		return nil
	}
	ctx, cancel := context.WithTimeout(m.ctx, 2*m.opts.Timeout)
	m.cycleCancel = cancel
	m.parts = 1
	cmds := []tea.Cmd{pollCmd(m.collector.CollectStreaming(ctx))}

	if m.collector.Monitor() != "" {
		m.parts++
		c := m.collector
		cmds = append(cmds, func() tea.Msg {
			status, err := c.Cluster(ctx)
			return clusterMsg{status: status, err: err}
		})
	}
	return tea.Batch(cmds...)
}

func pollCmd(ch <-chan collect.HostResult) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return hostsDoneMsg{}
		}
		return hostResultMsg{result: res, ch: ch}
	}
}

func (m *Model) applyHost(r collect.HostResult) {
	st, ok := m.state[r.Alias]
	if !ok {
		return
	}
	st.latency = r.Latency
	st.via = r.ConnectedVia
	if r.Err != nil {
		st.err = errors.OneLine(r.Err)
		m.log.Debug("collect %s: %v", r.Alias, r.Err)
		return
	}
	st.err = ""
	st.sample = r.Sample
	m.history.Push(r.Alias, r.Sample)
	m.seen.mark(r.Alias)
}

func (m *Model) applyCluster(msg clusterMsg) {
	if msg.err != nil {
		m.clusterErr = errors.OneLine(msg.err)
		m.log.Warn("cluster status: %v", msg.err)
		return
	}
	m.cluster = msg.status
	m.clusterErr = ""
	m.history.PushCluster(msg.status)
}

// partDone closes the cycle once hosts and cluster both finished. The
// first finished cycle opens the ready latch. In graph mode the wall is
// rebuilt from the new samples.
func (m *Model) partDone() {
	m.parts--
	if m.parts > 0 {
		return
	}
	m.parts = 0
	if m.cycleCancel != nil {
		m.cycleCancel()
		m.cycleCancel = nil
	}
	m.cycles++
	m.lastUpdate = time.Now()
	if !m.ready.IsOpen() {
		m.log.Info("first collection finished")
		m.ready.Open()
	}
	m.ctrl.Refresh()
}

// seenHosts tracks which configured hosts have reported. It answers
// get:hosts from the request goroutine, hence the lock.
type seenHosts struct {
	mu         sync.Mutex
	configured []string
	seen       map[string]bool
}

func newSeenHosts(configured []string) *seenHosts {
	return &seenHosts{configured: configured, seen: make(map[string]bool)}
}

func (s *seenHosts) mark(alias string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[alias] = true
}

// list returns the hosts that reported, in configured order, or every
// configured host when none has yet.
func (s *seenHosts) list() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, h := range s.configured {
		if s.seen[h] {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		out = append(out, s.configured...)
	}
	return out
}

func (s *seenHosts) responder() reqres.Responder {
	return func(context.Context) (any, error) {
		return s.list(), nil
	}
}
