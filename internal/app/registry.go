package app

import (
	"context"
	"strings"
	"text/template"

	"github.com/rileyhilliard/cephdash/internal/graphwall"
)

// MakeFunc builds the graphs of one metric kind for a host.
type MakeFunc func(w Wall, ctx context.Context, host string) (graphwall.Result, error)

// MetricKind is one entry of the per-host metric registry.
type MetricKind struct {
	ID    string
	Make  MakeFunc
	title *template.Template
}

// Title renders the kind's title for host.
func (k MetricKind) Title(host string) string {
	var b strings.Builder
	if err := k.title.Execute(&b, struct{ Host string }{host}); err != nil {
		return k.ID
	}
	return b.String()
}

func kind(id string, fn MakeFunc, title string) MetricKind {
	return MetricKind{
		ID:    id,
		Make:  fn,
		title: template.Must(template.New(id).Parse(title)),
	}
}

// Registry lists the metric kinds in key order: the dashboard binds 1-8 to
// these entries.
var Registry = []MetricKind{
	kind("cpudetail", Wall.MakeCPUDetail, "Host {{.Host}} CPU Detail"),
	kind("iops", Wall.MakeHostIOPS, "Host {{.Host}} IOPS Per Device"),
	kind("rwbytes", Wall.MakeRWBytes, "Host {{.Host}} Read/Write Bytes Per Device"),
	kind("rwawait", Wall.MakeRWAwait, "Host {{.Host}} Read/Write Await Per Device"),
	kind("diskinodes", Wall.MakeDiskInodes, "Host {{.Host}} Inodes Per Device"),
	kind("diskbytes", Wall.MakeDiskBytes, "Host {{.Host}} Bytes Per Device"),
	kind("netpackets", Wall.MakeNetPackets, "Host {{.Host}} Network Packets Per Interface"),
	kind("netbytes", Wall.MakeNetBytes, "Host {{.Host}} Network Bytes Per Interface"),
}

// Lookup finds a metric kind by id.
func Lookup(id string) (MetricKind, bool) {
	for _, k := range Registry {
		if k.ID == id {
			return k, true
		}
	}
	return MetricKind{}, false
}

// MetricIDs returns the registered ids in key order.
func MetricIDs() []string {
	ids := make([]string, len(Registry))
	for i, k := range Registry {
		ids[i] = k.ID
	}
	return ids
}

// Overview is the default per-host view, shown when a graph target names a
// host without a registered metric id.
var Overview = kind(BtnOverview, Wall.MakeHostOverview, "Host {{.Host}} Overview")
