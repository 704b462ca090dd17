package graphwall

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/cephdash/internal/errors"
	"github.com/rileyhilliard/cephdash/internal/metrics"
	"github.com/rileyhilliard/cephdash/internal/ui"
	"golang.org/x/sync/errgroup"
)

// DefaultPoints is how many samples each graph shows.
const DefaultPoints = 120

// Builder turns history into descriptors. Its make functions only read the
// Source, so they are safe to call from command goroutines.
type Builder struct {
	src    Source
	points int
}

// NewBuilder creates a Builder showing up to points samples per series.
func NewBuilder(src Source, points int) *Builder {
	if points <= 0 {
		points = DefaultPoints
	}
	return &Builder{src: src, points: points}
}

func (b *Builder) series(host, key, label string) Series {
	return Series{Label: label, Points: b.src.Series(host, key, b.points)}
}

// MakeClusterWideMetrics builds raw usage for the cluster and then CPU, RAM
// and load for every host, one group per host.
func (b *Builder) MakeClusterWideMetrics(ctx context.Context) (Result, error) {
	hosts := b.src.Hosts()
	if len(hosts) == 0 {
		return nil, noData("any host")
	}

	groups := make(Result, len(hosts)+1)
	if used := b.series(metrics.ClusterHost, metrics.Key(metrics.GroupUsed, "", metrics.FieldPercent), "raw used"); len(used.Points) > 0 {
		groups[0] = []Descriptor{{Title: "Cluster Raw Usage", Unit: ui.UnitPercent, Series: []Series{used}}}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, host := range hosts {
		i, host := i, host
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			groups[i+1] = b.hostSummary(host)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return groups, nil
}

func (b *Builder) hostSummary(host string) []Descriptor {
	return []Descriptor{
		{Title: host + " CPU", Unit: ui.UnitPercent, Series: []Series{
			b.series(host, metrics.Key(metrics.GroupCPU, "", metrics.FieldPercent), "cpu"),
		}},
		{Title: host + " RAM", Unit: ui.UnitPercent, Series: []Series{
			b.series(host, metrics.Key(metrics.GroupRAM, "", metrics.FieldPercent), "ram"),
		}},
		{Title: host + " Load", Unit: ui.UnitCount, Series: []Series{
			b.series(host, metrics.Key(metrics.GroupLoad, "", metrics.FieldLoad1), "1m"),
		}},
	}
}

// MakePoolIOPS builds one read/write ops graph per pool.
func (b *Builder) MakePoolIOPS(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pools := b.src.Objects(metrics.ClusterHost, metrics.GroupPool)
	if len(pools) == 0 {
		return nil, noData("pools")
	}
	var group []Descriptor
	for _, pool := range pools {
		group = append(group, Descriptor{
			Title: "Pool " + pool,
			Unit:  ui.UnitOpsPerSec,
			Series: []Series{
				b.series(metrics.ClusterHost, metrics.Key(metrics.GroupPool, pool, metrics.FieldReadOps), "read"),
				b.series(metrics.ClusterHost, metrics.Key(metrics.GroupPool, pool, metrics.FieldWriteOps), "write"),
			},
		})
	}
	return Result{group}, nil
}

// MakeHostOverview builds the summary graphs of one host plus its total
// disk and network throughput.
func (b *Builder) MakeHostOverview(ctx context.Context, host string) (Result, error) {
	if err := b.checkHost(ctx, host); err != nil {
		return nil, err
	}
	result := Result{b.hostSummary(host)}

	var diskIO, netIO []Descriptor
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		diskIO = []Descriptor{b.total(host, metrics.GroupDisk, "Disk Throughput", ui.UnitBytesPerSec,
			metrics.FieldReadBytes, "read", metrics.FieldWriteBytes, "write")}
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		netIO = []Descriptor{b.total(host, metrics.GroupNet, "Network Throughput", ui.UnitBytesPerSec,
			metrics.FieldRxBytes, "rx", metrics.FieldTxBytes, "tx")}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(result, diskIO, netIO), nil
}

// total sums two fields across every object of group, point by point.
func (b *Builder) total(host, group, title string, unit ui.Unit, fieldA, labelA, fieldB, labelB string) Descriptor {
	sum := func(field string) []float64 {
		var out []float64
		for _, obj := range b.src.Objects(host, group) {
			pts := b.src.Series(host, metrics.Key(group, obj, field), b.points)
			// Align on the newest point; objects seen later have shorter series.
			if len(pts) > len(out) {
				out = append(make([]float64, len(pts)-len(out)), out...)
			}
			off := len(out) - len(pts)
			for i, v := range pts {
				out[off+i] += v
			}
		}
		return out
	}
	return Descriptor{
		Title: host + " " + title,
		Unit:  unit,
		Series: []Series{
			{Label: labelA, Points: sum(fieldA)},
			{Label: labelB, Points: sum(fieldB)},
		},
	}
}

// MakeCPUDetail breaks CPU time down by kind.
func (b *Builder) MakeCPUDetail(ctx context.Context, host string) (Result, error) {
	if err := b.checkHost(ctx, host); err != nil {
		return nil, err
	}
	key := func(f string) string { return metrics.Key(metrics.GroupCPU, "", f) }
	return Result{{
		{Title: "CPU Time", Unit: ui.UnitPercent, Series: []Series{
			b.series(host, key(metrics.FieldUser), "user"),
			b.series(host, key(metrics.FieldSystem), "system"),
			b.series(host, key(metrics.FieldIOWait), "iowait"),
			b.series(host, key(metrics.FieldSteal), "steal"),
		}},
		{Title: "Load Average", Unit: ui.UnitCount, Series: []Series{
			b.series(host, metrics.Key(metrics.GroupLoad, "", metrics.FieldLoad1), "1m"),
		}},
	}}, nil
}

// MakeHostIOPS builds read/write operations per block device.
func (b *Builder) MakeHostIOPS(ctx context.Context, host string) (Result, error) {
	return b.perObject(ctx, host, metrics.GroupDisk, ui.UnitOpsPerSec,
		metrics.FieldReadOps, "read", metrics.FieldWriteOps, "write")
}

// MakeRWBytes builds read/write throughput per block device.
func (b *Builder) MakeRWBytes(ctx context.Context, host string) (Result, error) {
	return b.perObject(ctx, host, metrics.GroupDisk, ui.UnitBytesPerSec,
		metrics.FieldReadBytes, "read", metrics.FieldWriteBytes, "write")
}

// MakeRWAwait builds average read/write latency per block device.
func (b *Builder) MakeRWAwait(ctx context.Context, host string) (Result, error) {
	return b.perObject(ctx, host, metrics.GroupDisk, ui.UnitMillis,
		metrics.FieldReadAwait, "read", metrics.FieldWriteAwait, "write")
}

// MakeDiskInodes builds inode usage per filesystem.
func (b *Builder) MakeDiskInodes(ctx context.Context, host string) (Result, error) {
	return b.perObject(ctx, host, metrics.GroupFS, ui.UnitPercent,
		metrics.FieldInodesPct, "inodes used")
}

// MakeDiskBytes builds space usage per filesystem.
func (b *Builder) MakeDiskBytes(ctx context.Context, host string) (Result, error) {
	return b.perObject(ctx, host, metrics.GroupFS, ui.UnitPercent,
		metrics.FieldBytesPct, "bytes used")
}

// MakeNetPackets builds packet rates per interface.
func (b *Builder) MakeNetPackets(ctx context.Context, host string) (Result, error) {
	return b.perObject(ctx, host, metrics.GroupNet, ui.UnitPktsPerSec,
		metrics.FieldRxPackets, "rx", metrics.FieldTxPackets, "tx")
}

// MakeNetBytes builds throughput per interface.
func (b *Builder) MakeNetBytes(ctx context.Context, host string) (Result, error) {
	return b.perObject(ctx, host, metrics.GroupNet, ui.UnitBytesPerSec,
		metrics.FieldRxBytes, "rx", metrics.FieldTxBytes, "tx")
}

// perObject builds one descriptor per object of group. fieldLabels
// alternates series key field and legend label.
func (b *Builder) perObject(ctx context.Context, host, group string, unit ui.Unit, fieldLabels ...string) (Result, error) {
	if err := b.checkHost(ctx, host); err != nil {
		return nil, err
	}
	objects := b.src.Objects(host, group)
	if len(objects) == 0 {
		return nil, noData(fmt.Sprintf("%s on %s", groupNoun(group), host))
	}

	result := make(Result, 0, len(objects))
	for _, obj := range objects {
		d := Descriptor{Title: obj, Unit: unit}
		for i := 0; i+1 < len(fieldLabels); i += 2 {
			d.Series = append(d.Series, b.series(host, metrics.Key(group, obj, fieldLabels[i]), fieldLabels[i+1]))
		}
		result = append(result, []Descriptor{d})
	}
	return result, nil
}

func (b *Builder) checkHost(ctx context.Context, host string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := b.src.Last(host, metrics.Key(metrics.GroupCPU, "", metrics.FieldPercent)); !ok {
		return noData("host " + host)
	}
	return nil
}

func groupNoun(group string) string {
	switch group {
	case metrics.GroupDisk:
		return "block devices"
	case metrics.GroupFS:
		return "filesystems"
	case metrics.GroupNet:
		return "network interfaces"
	default:
		return group
	}
}

func noData(what string) error {
	return errors.New(errors.ErrRender,
		"No samples yet for "+what,
		"Wait for the next collection cycle, or check the node is reachable.")
}
