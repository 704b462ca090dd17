package app

import (
	"context"
	"testing"
	"time"

	"github.com/rileyhilliard/cephdash/internal/errors"
	"github.com/rileyhilliard/cephdash/internal/fsm"
	"github.com/rileyhilliard/cephdash/internal/layout"
	"github.com/rileyhilliard/cephdash/internal/reqres"
	"github.com/rileyhilliard/cephdash/internal/vent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_RegisteredMetric(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	require.True(t, h.machine.Start(fsm.Args{}))

	require.True(t, h.machine.Fire(fsm.ToGraph, fsm.Args{Host: "cephnode1", ID: "iops"}))
	drain(t, h.ctrl)

	assert.Equal(t, []string{
		"HideGraphs",
		"ShowButtons",
		"UpdateSelect(cephnode1)",
		"UpdateBtns(iops)",
		"Loading(Host cephnode1 IOPS Per Device)",
		"Render",
		"RenderGraphs(Host cephnode1 IOPS Per Device)",
	}, h.wall.Calls())
	assert.Equal(t, []string{"iops:cephnode1"}, h.wall.Made())
	assert.Equal(t, "Host cephnode1 IOPS Per Device", h.wall.title)
	require.Len(t, h.wall.graphs, 1)
	assert.Equal(t, "iops:cephnode1", h.wall.graphs[0].Title)
	assert.Equal(t, GraphTarget{Host: "cephnode1", ID: "iops"}, h.ctrl.LastTarget())
}

func TestDispatch_EveryMetricKind(t *testing.T) {
	for _, k := range Registry {
		t.Run(k.ID, func(t *testing.T) {
			h := newHarness(t, fsm.Dashboard)
			h.machine.Start(fsm.Args{})
			h.machine.Fire(fsm.ToGraph, fsm.Args{Host: "cephnode2", ID: k.ID})
			drain(t, h.ctrl)

			assert.Equal(t, []string{k.ID + ":cephnode2"}, h.wall.Made())
			assert.Equal(t, k.Title("cephnode2"), h.wall.title)
		})
	}
}

func TestDispatch_HostOverview(t *testing.T) {
	tests := []struct {
		name string
		args fsm.Args
	}{
		{"no id", fsm.Args{Host: "cephnode2"}},
		{"unregistered id", fsm.Args{Host: "cephnode2", ID: "bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, fsm.Dashboard)
			h.machine.Start(fsm.Args{})
			h.machine.Fire(fsm.ToGraph, tt.args)
			drain(t, h.ctrl)

			assert.Equal(t, []string{
				"HideGraphs",
				"Render",
				"ShowButtons",
				"UpdateSelect(cephnode2)",
				"UpdateBtns(overview)",
				"Loading(Host cephnode2 Overview)",
				"RenderGraphs(Host cephnode2 Overview)",
			}, h.wall.Calls())
			assert.Equal(t, []string{"overview:cephnode2"}, h.wall.Made())
		})
	}
}

func TestDispatch_UnknownHost(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	h.machine.Start(fsm.Args{})

	assert.NotPanics(t, func() {
		h.machine.Fire(fsm.ToGraph, fsm.Args{Host: "ghost"})
		drain(t, h.ctrl)
	})

	assert.Equal(t, []string{"HideGraphs", "Render"}, h.wall.Calls())
	assert.Empty(t, h.wall.Made())
	assert.Equal(t, fsm.Graph, h.machine.Current())
}

func TestDispatch_ClusterAndPools(t *testing.T) {
	tests := []struct {
		host  string
		title string
		made  string
	}{
		{TargetAll, TitleCluster, "cluster"},
		{TargetIOPS, TitlePoolIOPS, "pools"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			h := newHarness(t, fsm.Dashboard)
			h.machine.Start(fsm.Args{})
			h.machine.Fire(fsm.ToGraph, fsm.Args{Host: tt.host})
			drain(t, h.ctrl)

			assert.Equal(t, []string{
				"HideGraphs",
				"HideButtons",
				"Loading(" + tt.title + ")",
				"Render",
				"RenderGraphs(" + tt.title + ")",
			}, h.wall.Calls())
			assert.Equal(t, []string{tt.made}, h.wall.Made())
		})
	}
}

func TestDispatch_AllIsIdempotent(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	h.machine.Start(fsm.Args{})

	h.machine.Fire(fsm.ToGraph, fsm.Args{Host: TargetAll})
	drain(t, h.ctrl)
	first := h.wall.graphs
	firstTitle := h.wall.title

	h.machine.Fire(fsm.ToGraph, fsm.Args{Host: TargetAll})
	drain(t, h.ctrl)

	assert.Equal(t, firstTitle, h.wall.title)
	assert.Equal(t, first, h.wall.graphs)
	assert.True(t, h.wall.rendered)
}

func TestStartup_GraphRendersCluster(t *testing.T) {
	h := newHarness(t, fsm.Graph)
	require.True(t, h.machine.Start(fsm.Args{}))
	assert.False(t, h.page.Visible("gauges"))

	drain(t, h.ctrl)

	assert.Equal(t, []string{
		"Render",
		"HideGraphs",
		"HideButtons",
		"Loading(Cluster)",
		"RenderGraphs(Cluster)",
	}, h.wall.Calls())
	assert.Equal(t, TitleCluster, h.wall.title)
}

func TestStartup_WaitsForReady(t *testing.T) {
	h := newHarness(t, fsm.Graph)
	h.latch = reqres.NewLatch()
	h.rr.Handle(reqres.QueryReady, h.latch.Responder())
	h.machine.Start(fsm.Args{})

	require.Len(t, h.ctrl.pending, 1)
	cmd := h.ctrl.pending[0]
	h.ctrl.pending = nil
	done := make(chan any, 1)
	go func() { done <- cmd() }()

	select {
	case <-done:
		t.Fatal("ready resolved before the latch opened")
	default:
	}
	assert.Empty(t, h.wall.Calls())

	h.latch.Open()
	require.True(t, h.ctrl.Update(<-done))
	drain(t, h.ctrl)
	assert.Equal(t, TitleCluster, h.wall.title)
}

func TestDispatch_WaitsForFirstCollection(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	h.latch = reqres.NewLatch()
	h.rr.Handle(reqres.QueryReady, h.latch.Responder())
	h.machine.Start(fsm.Args{})

	h.machine.Fire(fsm.ToGraph, fsm.Args{Host: "cephnode2", ID: "cpudetail"})
	cmds := h.ctrl.pending
	h.ctrl.pending = nil
	require.Len(t, cmds, 2)
	done := make(chan any, len(cmds))
	for _, cmd := range cmds {
		cmd := cmd
		go func() { done <- cmd() }()
	}

	select {
	case <-done:
		t.Fatal("graph work resolved before the first collection")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Empty(t, h.wall.Made())

	h.latch.Open()
	for range cmds {
		require.True(t, h.ctrl.Update(<-done))
	}
	drain(t, h.ctrl)

	assert.Equal(t, []string{"cpudetail:cephnode2"}, h.wall.Made())
	assert.Contains(t, h.wall.Calls(), "RenderGraphs(Host cephnode2 CPU Detail)")
	assert.NotContains(t, h.wall.Calls(), "ShowError(Host cephnode2 CPU Detail)")
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name  string
		args  fsm.Args
		made  string
		title string
	}{
		{"cluster", fsm.Args{Host: TargetAll}, "cluster", TitleCluster},
		{"pools", fsm.Args{Host: TargetIOPS}, "pools", TitlePoolIOPS},
		{"metric", fsm.Args{Host: "cephnode1", ID: "netbytes"}, "netbytes:cephnode1", "Host cephnode1 Network Bytes Per Interface"},
		{"overview", fsm.Args{Host: "cephnode2"}, "overview:cephnode2", "Host cephnode2 Overview"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, fsm.Dashboard)
			h.machine.Start(fsm.Args{})
			h.machine.Fire(fsm.ToGraph, tt.args)
			drain(t, h.ctrl)
			gen := h.ctrl.Generation()
			before := len(h.wall.Calls())

			h.ctrl.Refresh()
			drain(t, h.ctrl)

			assert.Equal(t, []string{tt.made, tt.made}, h.wall.Made())
			assert.Greater(t, h.ctrl.Generation(), gen)
			assert.Equal(t, tt.title, h.wall.title)
			after := h.wall.Calls()[before:]
			assert.Contains(t, after, "RenderGraphs("+tt.title+")")
			assert.NotContains(t, after, "HideGraphs")
			assert.NotContains(t, after, "Loading("+tt.title+")")
		})
	}
}

func TestRefresh_OutsideGraph(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	h.machine.Start(fsm.Args{})
	h.ctrl.Refresh()
	assert.Empty(t, h.ctrl.pending)

	h.machine.Fire(fsm.ToGraph, fsm.Args{Host: TargetAll})
	drain(t, h.ctrl)
	h.machine.Fire(fsm.ToDashboard, fsm.Args{})
	drain(t, h.ctrl)
	gen := h.ctrl.Generation()

	h.ctrl.Refresh()
	assert.Empty(t, h.ctrl.pending)
	assert.Equal(t, gen, h.ctrl.Generation())
	assert.Equal(t, []string{"cluster"}, h.wall.Made())
}

func TestRefresh_BeforeWallShown(t *testing.T) {
	h := newHarness(t, fsm.Graph)
	h.latch = reqres.NewLatch()
	h.rr.Handle(reqres.QueryReady, h.latch.Responder())
	h.machine.Start(fsm.Args{})
	gen := h.ctrl.Generation()

	h.ctrl.Refresh()
	assert.Len(t, h.ctrl.pending, 1, "only the startup ready query is queued")
	assert.Equal(t, gen, h.ctrl.Generation())
}

func TestStartup_NavigationWinsOverClusterView(t *testing.T) {
	h := newHarness(t, fsm.Graph)
	h.machine.Start(fsm.Args{})
	h.machine.Fire(fsm.ToGraph, fsm.Args{Host: TargetIOPS})
	drain(t, h.ctrl)

	assert.Equal(t, []string{"pools"}, h.wall.Made())
	assert.Equal(t, TitlePoolIOPS, h.wall.title)
}

func TestDispatch_StaleResultsDropped(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	h.machine.Start(fsm.Args{})

	h.machine.Fire(fsm.ToGraph, fsm.Args{Host: TargetAll})
	h.machine.Fire(fsm.ToGraph, fsm.Args{Host: TargetIOPS})
	drain(t, h.ctrl)

	assert.ElementsMatch(t, []string{"cluster", "pools"}, h.wall.Made())
	assert.NotContains(t, h.wall.Calls(), "RenderGraphs(Cluster)")
	assert.Contains(t, h.wall.Calls(), "RenderGraphs(Per Pool IOPS)")
	assert.Equal(t, TitlePoolIOPS, h.wall.title)
	assert.True(t, h.log.HasLevel("debug"))
}

func TestLeaveGraph_DropsPendingWork(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	h.machine.Start(fsm.Args{})

	h.machine.Fire(fsm.ToGraph, fsm.Args{Host: TargetAll})
	assert.False(t, h.page.Visible("gauges"))
	h.machine.Fire(fsm.ToDashboard, fsm.Args{})
	drain(t, h.ctrl)

	calls := h.wall.Calls()
	assert.Contains(t, calls, "Close")
	assert.NotContains(t, calls, "Render")
	assert.NotContains(t, calls, "RenderGraphs(Cluster)")
	assert.True(t, h.page.Visible("gauges"))
	assert.True(t, h.page.Visible("pools"))
}

func TestDispatch_FetchErrorShown(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	h.machine.Start(fsm.Args{})
	h.wall.errs["iops:cephnode1"] = errors.New(errors.ErrRender, "No samples yet for host cephnode1", "")

	h.machine.Fire(fsm.ToGraph, fsm.Args{Host: "cephnode1", ID: "iops"})
	drain(t, h.ctrl)

	assert.Contains(t, h.wall.Calls(), "ShowError(Host cephnode1 IOPS Per Device)")
	assert.NotContains(t, h.wall.Calls(), "RenderGraphs(Host cephnode1 IOPS Per Device)")
	assert.True(t, h.log.HasLevel("error"))
}

func TestDispatch_HostQueryErrorShown(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	h.rr.Handle(reqres.QueryHosts, func(context.Context) (any, error) {
		return nil, errors.New(errors.ErrQuery, "hosts unavailable", "")
	})
	h.machine.Start(fsm.Args{})

	h.machine.Fire(fsm.ToGraph, fsm.Args{Host: "cephnode1"})
	drain(t, h.ctrl)

	assert.Contains(t, h.wall.Calls(), "ShowError(Host cephnode1 Overview)")
	assert.Empty(t, h.wall.Made())
	assert.True(t, h.log.HasLevel("error"))
}

func TestEnterDashboard_StripsInitialHide(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	h.watch(true, vent.DashboardRefresh, vent.VizDashboard, vent.GaugesExpand)

	h.machine.Start(fsm.Args{})
	assert.Empty(t, h.page.WithClass(layout.ClassInitialHide))
	assert.Empty(t, h.topics, "startup entry does not run the post hook")

	require.True(t, h.machine.Fire(fsm.ToVisualization, fsm.Args{}))
	require.True(t, h.machine.Fire(fsm.ToDashboard, fsm.Args{}))
	assert.False(t, h.machine.Fire(fsm.ToDashboard, fsm.Args{}))

	assert.Empty(t, h.page.WithClass(layout.ClassInitialHide))
	assert.Equal(t, []string{vent.VizDashboard, vent.GaugesExpand, vent.DashboardRefresh}, h.topics)
}

func TestEnterVisualization_WaitsForGauges(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	h.watch(true, vent.VizFullscreen, vent.GaugesCollapse)

	var held *vent.Continuation
	h.bus.Subscribe(vent.GaugesDisappear, func(args ...any) {
		h.topics = append(h.topics, vent.GaugesDisappear)
		held = vent.ContinuationArg(args)
	})

	h.machine.Start(fsm.Args{})
	require.True(t, h.machine.Fire(fsm.ToVisualization, fsm.Args{}))

	assert.Equal(t, []string{vent.GaugesDisappear}, h.topics)
	assert.False(t, h.page.HasClass(layout.ClassWorkbench))
	require.NotNil(t, held)

	require.NoError(t, held.Invoke())
	assert.True(t, h.page.HasClass(layout.ClassWorkbench))
	assert.Equal(t, []string{vent.GaugesDisappear, vent.VizFullscreen, vent.GaugesCollapse}, h.topics)

	assert.ErrorIs(t, held.Invoke(), vent.ErrAlreadyInvoked)
	assert.Len(t, h.topics, 3)
}

func TestEnterVisualization_LeftBeforeGauges(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	h.watch(false, vent.VizFullscreen)

	var held *vent.Continuation
	h.bus.Subscribe(vent.GaugesDisappear, func(args ...any) {
		held = vent.ContinuationArg(args)
	})

	h.machine.Start(fsm.Args{})
	h.machine.Fire(fsm.ToVisualization, fsm.Args{})
	h.machine.Fire(fsm.ToDashboard, fsm.Args{})
	require.NoError(t, held.Invoke())

	assert.False(t, h.page.HasClass(layout.ClassWorkbench))
	assert.Empty(t, h.topics)
}

func TestEnterVisualization_FromGraphSkipsGauges(t *testing.T) {
	h := newHarness(t, fsm.Graph)
	h.watch(false, vent.GaugesDisappear, vent.VizFullscreen)

	h.machine.Start(fsm.Args{})
	require.True(t, h.machine.Fire(fsm.ToVisualization, fsm.Args{}))

	assert.True(t, h.page.HasClass(layout.ClassWorkbench))
	assert.Equal(t, []string{vent.VizFullscreen}, h.topics)
	assert.Contains(t, h.wall.Calls(), "Close")
}

func TestEnterVisualization_NoSubscribers(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	h.machine.Start(fsm.Args{})

	require.True(t, h.machine.Fire(fsm.ToVisualization, fsm.Args{}))
	assert.True(t, h.page.HasClass(layout.ClassWorkbench))
}

func TestLeaveVisualization_ChainsGauges(t *testing.T) {
	h := newHarness(t, fsm.Visualization)
	h.watch(true, vent.VizDashboard, vent.GaugesExpand, vent.GaugesReappear, vent.DashboardRefresh)

	h.machine.Start(fsm.Args{})
	assert.True(t, h.page.HasClass(layout.ClassWorkbench))

	require.True(t, h.machine.Fire(fsm.ToDashboard, fsm.Args{}))
	assert.False(t, h.page.HasClass(layout.ClassWorkbench))
	assert.Equal(t, []string{
		vent.VizDashboard,
		vent.GaugesExpand,
		vent.GaugesReappear,
		vent.DashboardRefresh,
	}, h.topics)
}

func TestLeaveVisualization_ToGraph(t *testing.T) {
	h := newHarness(t, fsm.Visualization)
	h.watch(false, vent.VizDashboard, vent.GaugesExpand)

	h.machine.Start(fsm.Args{})
	require.True(t, h.machine.Fire(fsm.ToGraph, fsm.Args{Host: TargetAll}))

	assert.False(t, h.page.HasClass(layout.ClassWorkbench))
	assert.Equal(t, []string{vent.VizDashboard}, h.topics)
	assert.Equal(t, fsm.Graph, h.ctrl.Mode())
}

func TestRegistry(t *testing.T) {
	tests := []struct {
		id    string
		title string
	}{
		{"cpudetail", "Host n1 CPU Detail"},
		{"iops", "Host n1 IOPS Per Device"},
		{"rwbytes", "Host n1 Read/Write Bytes Per Device"},
		{"rwawait", "Host n1 Read/Write Await Per Device"},
		{"diskinodes", "Host n1 Inodes Per Device"},
		{"diskbytes", "Host n1 Bytes Per Device"},
		{"netpackets", "Host n1 Network Packets Per Interface"},
		{"netbytes", "Host n1 Network Bytes Per Interface"},
	}
	require.Len(t, Registry, len(tests))
	for i, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			k, ok := Lookup(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.title, k.Title("n1"))
			assert.Equal(t, tt.id, MetricIDs()[i])
		})
	}

	_, ok := Lookup("overview")
	assert.False(t, ok)
	_, ok = Lookup("")
	assert.False(t, ok)
	assert.Equal(t, "Host n1 Overview", Overview.Title("n1"))
}

func TestUpdate_IgnoresForeignMessages(t *testing.T) {
	h := newHarness(t, fsm.Dashboard)
	assert.False(t, h.ctrl.Update("tick"))
	assert.Nil(t, h.ctrl.Flush())
}
