package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/cephdash/internal/collect"
	"github.com/rileyhilliard/cephdash/internal/fsm"
	"github.com/rileyhilliard/cephdash/internal/logger"
	"github.com/rileyhilliard/cephdash/internal/metrics"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeCollector struct {
	mu         sync.Mutex
	hosts      []string
	monitor    string
	failing    map[string]error
	clusterErr error
	cycle      int
}

func newFakeCollector(hosts ...string) *fakeCollector {
	return &fakeCollector{hosts: hosts, monitor: hosts[0], failing: map[string]error{}}
}

func (f *fakeCollector) Hosts() []string { return f.hosts }
func (f *fakeCollector) Monitor() string { return f.monitor }

func (f *fakeCollector) CollectStreaming(ctx context.Context) <-chan collect.HostResult {
	f.mu.Lock()
	f.cycle++
	cycle := f.cycle
	f.mu.Unlock()

	ch := make(chan collect.HostResult, len(f.hosts))
	for i, h := range f.hosts {
		res := collect.HostResult{Alias: h, Latency: 12 * time.Millisecond, ConnectedVia: h}
		if err := f.failing[h]; err != nil {
			res.Err = err
		} else {
			res.Sample = sampleFor(i, cycle)
		}
		ch <- res
	}
	close(ch)
	return ch
}

func (f *fakeCollector) Cluster(ctx context.Context) (*metrics.ClusterStatus, error) {
	if f.clusterErr != nil {
		return nil, f.clusterErr
	}
	return &metrics.ClusterStatus{
		Timestamp:  base,
		Health:     "HEALTH_OK",
		BytesUsed:  3 << 40,
		BytesTotal: 10 << 40,
		OSDsTotal:  6,
		OSDsUp:     6,
		OSDsIn:     6,
		PGsTotal:   128,
		PGStates:   map[string]int{"active+clean": 128},
		Pools: []metrics.PoolStats{
			{ID: 1, Name: "rbd", ReadOpsPerSec: 12, WriteOpsPerSec: 30},
		},
	}, nil
}

func (f *fakeCollector) Cycles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cycle
}

func sampleFor(i, cycle int) *metrics.HostSample {
	c := int64(cycle)
	return &metrics.HostSample{
		Timestamp: base.Add(time.Duration(cycle) * 2 * time.Second),
		CPU: metrics.CPUStats{
			Percent: 20 + float64(10*i),
			User:    15,
			System:  5,
			Cores:   8,
			LoadAvg: [3]float64{0.5, 0.4, 0.3},
		},
		RAM: metrics.RAMStats{UsedBytes: 4 << 30, TotalBytes: 16 << 30},
		Disks: []metrics.DiskStats{{
			Device:          "sda",
			ReadsCompleted:  100 * c,
			WritesCompleted: 50 * c,
			ReadBytes:       c << 20,
			WriteBytes:      c << 19,
		}},
		Network: []metrics.NetworkInterface{{
			Name:      "eth0",
			BytesIn:   1000 * c,
			BytesOut:  500 * c,
			PacketsIn: 10 * c,
		}},
	}
}

func newTestModel(t *testing.T, mode fsm.Mode, route string) (*Model, *fakeCollector) {
	t.Helper()
	fc := newFakeCollector("cephnode1", "cephnode2")
	m := New(fc, Options{
		Name:     "lab",
		Interval: time.Hour,
		Timeout:  time.Second,
		Mode:     mode,
		Route:    route,
		Log:      logger.NewBufferLogger(),
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	t.Cleanup(m.Close)
	return m, fc
}

// drive runs cmd the way the Bubble Tea runtime would: every command on its
// own goroutine, every message back through Update. It returns once no
// message arrives for a short while. Interval ticks are dropped so only one
// collection cycle runs per call.
func drive(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	msgs := make(chan tea.Msg, 256)
	launch := func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() { msgs <- c() }()
	}
	launch(cmd)

	for steps := 0; ; steps++ {
		require.Less(t, steps, 2000, "dashboard kept producing work")
		select {
		case msg := <-msgs:
			switch msg := msg.(type) {
			case tea.BatchMsg:
				for _, c := range msg {
					launch(c)
				}
			case tickMsg, nil:
			default:
				_, next := m.Update(msg)
				launch(next)
			}
		case <-time.After(300 * time.Millisecond):
			return
		}
	}
}

func press(t *testing.T, m *Model, k string) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEscape}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	drive(t, m, cmd)
}
