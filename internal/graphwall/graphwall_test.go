package graphwall

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/cephdash/internal/errors"
	"github.com/rileyhilliard/cephdash/internal/metrics"
	"github.com/rileyhilliard/cephdash/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func sample(ts time.Time, cpu float64, reads, rx int64) *metrics.HostSample {
	return &metrics.HostSample{
		Timestamp: ts,
		CPU:       metrics.CPUStats{Percent: cpu, User: cpu / 2, System: cpu / 4, LoadAvg: [3]float64{1, 1, 1}},
		RAM:       metrics.RAMStats{UsedBytes: 50, TotalBytes: 100},
		Disks: []metrics.DiskStats{
			{Device: "sda", ReadsCompleted: reads, WritesCompleted: reads / 2, ReadBytes: reads * 4096},
			{Device: "sdb", ReadsCompleted: reads * 2},
		},
		Filesystems: []metrics.FSStats{{Device: "/dev/sda2", Mount: "/", BytesUsed: 25, BytesTotal: 100, InodesUsed: 1, InodesTotal: 10}},
		Network:     []metrics.NetworkInterface{{Name: "eth0", BytesIn: rx, BytesOut: rx / 2, PacketsIn: rx / 100}},
	}
}

func newHistory() *metrics.History {
	h := metrics.NewHistory(10)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h.Push("cephnode1", sample(t0, 10, 100, 1000))
	h.Push("cephnode1", sample(t0.Add(2*time.Second), 30, 300, 5000))
	h.Push("cephnode2", sample(t0, 50, 0, 0))
	h.PushCluster(&metrics.ClusterStatus{
		Timestamp:  t0,
		BytesUsed:  1,
		BytesTotal: 4,
		Pools: []metrics.PoolStats{
			{ID: 1, Name: "rbd", ReadOpsPerSec: 10, WriteOpsPerSec: 5},
			{ID: 2, Name: "cephfs.data", ReadOpsPerSec: 1},
		},
	})
	return h
}

func titles(ds []Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Title
	}
	return out
}

func TestFlatten(t *testing.T) {
	r := Result{{{Title: "a"}, {Title: "b"}}, nil, {{Title: "c"}}}
	assert.Equal(t, []string{"a", "b", "c"}, titles(r.Flatten()))
	assert.Empty(t, Result(nil).Flatten())
}

func TestDescriptorEmpty(t *testing.T) {
	assert.True(t, Descriptor{}.Empty())
	assert.True(t, Descriptor{Series: []Series{{Label: "x"}}}.Empty())
	assert.False(t, Descriptor{Series: []Series{{Points: []float64{1}}}}.Empty())
	assert.Equal(t, 0.0, Series{}.Last())
	assert.Equal(t, 2.0, Series{Points: []float64{1, 2}}.Last())
}

func TestMakeClusterWideMetrics(t *testing.T) {
	b := NewBuilder(newHistory(), 0)
	res, err := b.MakeClusterWideMetrics(context.Background())
	require.NoError(t, err)

	require.Len(t, res, 3, "cluster group plus one group per host")
	assert.Equal(t, []string{
		"Cluster Raw Usage",
		"cephnode1 CPU", "cephnode1 RAM", "cephnode1 Load",
		"cephnode2 CPU", "cephnode2 RAM", "cephnode2 Load",
	}, titles(res.Flatten()))
	assert.Equal(t, []float64{25}, res[0][0].Series[0].Points)
	assert.Equal(t, []float64{10, 30}, res[1][0].Series[0].Points)
}

func TestMakeClusterWideMetrics_NoHosts(t *testing.T) {
	b := NewBuilder(metrics.NewHistory(10), 0)
	_, err := b.MakeClusterWideMetrics(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrRender))
}

func TestMakePoolIOPS(t *testing.T) {
	b := NewBuilder(newHistory(), 0)
	res, err := b.MakePoolIOPS(context.Background())
	require.NoError(t, err)

	flat := res.Flatten()
	assert.Equal(t, []string{"Pool cephfs.data", "Pool rbd"}, titles(flat))
	assert.Equal(t, ui.UnitOpsPerSec, flat[1].Unit)
	assert.Equal(t, []float64{10}, flat[1].Series[0].Points)
	assert.Equal(t, []float64{5}, flat[1].Series[1].Points)

	_, err = NewBuilder(metrics.NewHistory(10), 0).MakePoolIOPS(context.Background())
	assert.Error(t, err)
}

func TestMakeHostOverview(t *testing.T) {
	b := NewBuilder(newHistory(), 0)
	res, err := b.MakeHostOverview(context.Background(), "cephnode1")
	require.NoError(t, err)

	flat := res.Flatten()
	assert.Equal(t, []string{
		"cephnode1 CPU", "cephnode1 RAM", "cephnode1 Load",
		"cephnode1 Disk Throughput", "cephnode1 Network Throughput",
	}, titles(flat))

	// sda read 200 ops * 4096 bytes over 2s; sdb has no byte counters.
	assert.Equal(t, []float64{200 * 4096 / 2}, flat[3].Series[0].Points)
	assert.Equal(t, []float64{2000}, flat[4].Series[0].Points)

	_, err = b.MakeHostOverview(context.Background(), "nope")
	assert.True(t, errors.IsCode(err, errors.ErrRender))
}

func TestMakeHostOverview_SingleSample(t *testing.T) {
	// Throughput needs two samples; the groups are still built, just empty.
	res, err := NewBuilder(newHistory(), 0).MakeHostOverview(context.Background(), "cephnode2")
	require.NoError(t, err)
	require.Len(t, res, 3)

	flat := res.Flatten()
	assert.Equal(t, []float64{50}, flat[0].Series[0].Points)
	assert.Empty(t, flat[3].Series[0].Points)
	assert.Empty(t, flat[4].Series[0].Points)
}

func TestMetricMakers(t *testing.T) {
	b := NewBuilder(newHistory(), 0)
	ctx := context.Background()

	tests := []struct {
		name   string
		make   func(context.Context, string) (Result, error)
		titles []string
		unit   ui.Unit
		labels []string
	}{
		{"cpudetail", b.MakeCPUDetail, []string{"CPU Time", "Load Average"}, ui.UnitPercent, []string{"user", "system", "iowait", "steal"}},
		{"iops", b.MakeHostIOPS, []string{"sda", "sdb"}, ui.UnitOpsPerSec, []string{"read", "write"}},
		{"rwbytes", b.MakeRWBytes, []string{"sda", "sdb"}, ui.UnitBytesPerSec, []string{"read", "write"}},
		{"rwawait", b.MakeRWAwait, []string{"sda", "sdb"}, ui.UnitMillis, []string{"read", "write"}},
		{"diskinodes", b.MakeDiskInodes, []string{"/dev/sda2"}, ui.UnitPercent, []string{"inodes used"}},
		{"diskbytes", b.MakeDiskBytes, []string{"/dev/sda2"}, ui.UnitPercent, []string{"bytes used"}},
		{"netpackets", b.MakeNetPackets, []string{"eth0"}, ui.UnitPktsPerSec, []string{"rx", "tx"}},
		{"netbytes", b.MakeNetBytes, []string{"eth0"}, ui.UnitBytesPerSec, []string{"rx", "tx"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.make(ctx, "cephnode1")
			require.NoError(t, err)
			flat := res.Flatten()
			assert.Equal(t, tt.titles, titles(flat))
			assert.Equal(t, tt.unit, flat[0].Unit)
			var labels []string
			for _, s := range flat[0].Series {
				labels = append(labels, s.Label)
			}
			assert.Equal(t, tt.labels, labels)

			_, err = tt.make(ctx, "ghost")
			assert.True(t, errors.IsCode(err, errors.ErrRender))
		})
	}
}

func TestMetricMakers_NoObjects(t *testing.T) {
	// cephnode2 has a single sample so no rates exist yet.
	b := NewBuilder(newHistory(), 0)
	_, err := b.MakeHostIOPS(context.Background(), "cephnode2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block devices on cephnode2")
}

func TestMakers_CanceledContext(t *testing.T) {
	b := NewBuilder(newHistory(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.MakeCPUDetail(ctx, "cephnode1")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = b.MakePoolIOPS(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = b.MakeClusterWideMetrics(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = b.MakeHostOverview(ctx, "cephnode1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWallLifecycle(t *testing.T) {
	w := New(newHistory(), 0)

	w.Close()
	assert.False(t, w.IsRendered(), "closing a never-rendered wall is a no-op")
	assert.Equal(t, "", w.View())

	w.Render()
	w.ShowButtons()
	w.UpdateSelect("cephnode1")
	w.UpdateBtns("overview")
	w.RenderGraphs("Cluster", []Descriptor{{Title: "x"}})
	assert.True(t, w.IsRendered())
	assert.True(t, w.ButtonsVisible())
	assert.Equal(t, "cephnode1", w.Selected())
	assert.Equal(t, "overview", w.ActiveButton())
	assert.Equal(t, "Cluster", w.Title())
	assert.Len(t, w.Graphs(), 1)

	w.HideGraphs()
	w.HideGraphs()
	assert.Empty(t, w.Graphs())
	assert.Equal(t, "", w.Title())
	assert.True(t, w.IsRendered())

	w.Loading("Per Pool IOPS")
	assert.True(t, w.IsLoading())
	w.ShowError("Per Pool IOPS", errors.New(errors.ErrRender, "No samples yet for pools", "wait"))
	assert.False(t, w.IsLoading())
	assert.Equal(t, "No samples yet for pools", w.Err())

	w.HideButtons()
	assert.False(t, w.ButtonsVisible())

	w.Close()
	assert.False(t, w.IsRendered())
	assert.Equal(t, "", w.Err())
}

func TestRenderGraphs_ScrollPosition(t *testing.T) {
	w := New(newHistory(), 0)
	w.SetSize(40, 12)
	w.Render()

	graphs := make([]Descriptor, 6)
	for i := range graphs {
		graphs[i] = Descriptor{Title: fmt.Sprintf("g%d", i), Series: []Series{{Label: "x", Points: []float64{1, 2, 3}}}}
	}
	w.RenderGraphs("Cluster", graphs)
	w.viewport.SetYOffset(3)
	require.Equal(t, 3, w.viewport.YOffset)

	w.RenderGraphs("Cluster", graphs)
	assert.Equal(t, 3, w.viewport.YOffset, "redrawing the same view keeps the scroll")

	w.RenderGraphs("Per Pool IOPS", graphs)
	assert.Equal(t, 0, w.viewport.YOffset)
}

func TestWallView(t *testing.T) {
	h := newHistory()
	w := New(h, 0)
	w.SetSize(100, 40)
	w.SetButtons([]string{"overview", "cpudetail", "iops"})
	w.Render()
	w.ShowButtons()
	w.UpdateSelect("cephnode1")
	w.UpdateBtns("iops")

	res, err := w.MakeHostIOPS(context.Background(), "cephnode1")
	require.NoError(t, err)
	w.RenderGraphs("Host cephnode1 IOPS Per Device", res.Flatten())

	out := w.View()
	assert.Contains(t, out, "Host cephnode1 IOPS Per Device")
	assert.Contains(t, out, "◀ cephnode1 ▶")
	assert.Contains(t, out, "2 iops")
	assert.Contains(t, out, "sda")
	assert.Contains(t, out, "● read")

	w.ShowError("Cluster", errors.New(errors.ErrRender, "boom", ""))
	assert.Contains(t, w.View(), "✗ boom")

	w.HideGraphs()
	assert.Contains(t, w.View(), "Pick a view")
}

func TestRenderCard_Width(t *testing.T) {
	d := Descriptor{Title: "sda", Unit: ui.UnitOpsPerSec, Series: []Series{{Label: "read", Points: []float64{1, 2, 3}}}}
	card := renderCard(d, 50)
	for _, line := range strings.Split(card, "\n") {
		assert.Equal(t, 50, lipgloss.Width(line))
	}

	empty := renderCard(Descriptor{Title: "sdb"}, 50)
	assert.Contains(t, empty, "no samples yet")
}
