package app

import (
	"context"
	"sync"
	"testing"

	"github.com/rileyhilliard/cephdash/internal/fsm"
	"github.com/rileyhilliard/cephdash/internal/graphwall"
	"github.com/rileyhilliard/cephdash/internal/layout"
	"github.com/rileyhilliard/cephdash/internal/logger"
	"github.com/rileyhilliard/cephdash/internal/reqres"
	"github.com/rileyhilliard/cephdash/internal/vent"
	"github.com/stretchr/testify/require"
)

// fakeWall records the calls the controller makes. Make functions run on
// command goroutines, so everything goes through the mutex.
type fakeWall struct {
	mu    sync.Mutex
	calls []string
	made  []string
	errs  map[string]error

	rendered bool
	title    string
	graphs   []graphwall.Descriptor
}

func newFakeWall() *fakeWall {
	return &fakeWall{errs: map[string]error{}}
}

func (w *fakeWall) record(call string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, call)
}

func (w *fakeWall) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.calls...)
}

func (w *fakeWall) Made() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.made...)
}

func (w *fakeWall) Render() {
	w.record("Render")
	w.rendered = true
}

func (w *fakeWall) Close() {
	w.record("Close")
	w.rendered = false
	w.title = ""
	w.graphs = nil
}

func (w *fakeWall) HideGraphs() {
	w.record("HideGraphs")
	w.graphs = nil
}

func (w *fakeWall) ShowButtons()             { w.record("ShowButtons") }
func (w *fakeWall) HideButtons()             { w.record("HideButtons") }
func (w *fakeWall) UpdateSelect(host string) { w.record("UpdateSelect(" + host + ")") }
func (w *fakeWall) UpdateBtns(mode string)   { w.record("UpdateBtns(" + mode + ")") }
func (w *fakeWall) Loading(title string)     { w.record("Loading(" + title + ")") }

func (w *fakeWall) RenderGraphs(title string, graphs []graphwall.Descriptor) {
	w.record("RenderGraphs(" + title + ")")
	w.title = title
	w.graphs = graphs
}

func (w *fakeWall) ShowError(title string, err error) {
	w.record("ShowError(" + title + ")")
	w.title = title
	w.graphs = nil
}

func (w *fakeWall) build(key string) (graphwall.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.made = append(w.made, key)
	if err := w.errs[key]; err != nil {
		return nil, err
	}
	return graphwall.Result{{{Title: key}}}, nil
}

func (w *fakeWall) MakeClusterWideMetrics(ctx context.Context) (graphwall.Result, error) {
	return w.build("cluster")
}

func (w *fakeWall) MakePoolIOPS(ctx context.Context) (graphwall.Result, error) {
	return w.build("pools")
}

func (w *fakeWall) MakeHostOverview(ctx context.Context, host string) (graphwall.Result, error) {
	return w.build("overview:" + host)
}

func (w *fakeWall) MakeCPUDetail(ctx context.Context, host string) (graphwall.Result, error) {
	return w.build("cpudetail:" + host)
}

func (w *fakeWall) MakeHostIOPS(ctx context.Context, host string) (graphwall.Result, error) {
	return w.build("iops:" + host)
}

func (w *fakeWall) MakeRWBytes(ctx context.Context, host string) (graphwall.Result, error) {
	return w.build("rwbytes:" + host)
}

func (w *fakeWall) MakeRWAwait(ctx context.Context, host string) (graphwall.Result, error) {
	return w.build("rwawait:" + host)
}

func (w *fakeWall) MakeDiskInodes(ctx context.Context, host string) (graphwall.Result, error) {
	return w.build("diskinodes:" + host)
}

func (w *fakeWall) MakeDiskBytes(ctx context.Context, host string) (graphwall.Result, error) {
	return w.build("diskbytes:" + host)
}

func (w *fakeWall) MakeNetPackets(ctx context.Context, host string) (graphwall.Result, error) {
	return w.build("netpackets:" + host)
}

func (w *fakeWall) MakeNetBytes(ctx context.Context, host string) (graphwall.Result, error) {
	return w.build("netbytes:" + host)
}

var _ Wall = (*fakeWall)(nil)

type harness struct {
	bus     *vent.Bus
	rr      *reqres.Service
	latch   *reqres.Latch
	wall    *fakeWall
	page    *layout.Page
	log     *logger.BufferLogger
	ctrl    *Controller
	machine *fsm.Machine
	topics  []string
}

func newHarness(t *testing.T, initial fsm.Mode) *harness {
	t.Helper()

	h := &harness{
		bus:   vent.New(),
		latch: reqres.NewLatch(),
		wall:  newFakeWall(),
		page:  layout.New(),
		log:   logger.NewBufferLogger(),
	}
	h.page.Add("gauges", layout.ClassDashboardRow, layout.ClassInitialHide)
	h.page.Add("pools", layout.ClassDashboardRow, layout.ClassInitialHide)
	h.page.Add("wall")

	h.rr = reqres.New(h.log)
	h.rr.Handle(reqres.QueryReady, h.latch.Responder())
	h.rr.Handle(reqres.QueryHosts, func(context.Context) (any, error) {
		return []string{"cephnode1", "cephnode2"}, nil
	})
	h.latch.Open()

	h.ctrl = NewController(h.bus, h.rr, h.wall, h.page, h.log)
	h.machine = fsm.New(initial, h.ctrl, h.log)
	t.Cleanup(h.ctrl.Shutdown)
	return h
}

// watch records every publish on topics, in order. With invoke set the
// subscriber completes continuations immediately.
func (h *harness) watch(invoke bool, topics ...string) {
	for _, topic := range topics {
		topic := topic
		h.bus.Subscribe(topic, func(args ...any) {
			h.topics = append(h.topics, topic)
			if invoke {
				_ = vent.ContinuationArg(args).Invoke()
			}
		})
	}
}

// drain runs queued commands and feeds their messages back until the
// controller stops queueing work.
func drain(t *testing.T, c *Controller) {
	t.Helper()
	for i := 0; i < 10; i++ {
		cmds := c.pending
		c.pending = nil
		if len(cmds) == 0 {
			return
		}
		for _, cmd := range cmds {
			require.True(t, c.Update(cmd()))
		}
	}
	t.Fatal("controller kept queueing work")
}
