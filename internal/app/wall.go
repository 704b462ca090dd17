package app

import (
	"context"

	"github.com/rileyhilliard/cephdash/internal/graphwall"
)

// Wall is what the controller needs from the graph wall. *graphwall.Wall
// implements it; tests use a recording fake.
type Wall interface {
	Render()
	Close()
	HideGraphs()
	ShowButtons()
	HideButtons()
	UpdateSelect(host string)
	UpdateBtns(mode string)
	Loading(title string)
	RenderGraphs(title string, graphs []graphwall.Descriptor)
	ShowError(title string, err error)

	MakeClusterWideMetrics(ctx context.Context) (graphwall.Result, error)
	MakePoolIOPS(ctx context.Context) (graphwall.Result, error)
	MakeHostOverview(ctx context.Context, host string) (graphwall.Result, error)
	MakeCPUDetail(ctx context.Context, host string) (graphwall.Result, error)
	MakeHostIOPS(ctx context.Context, host string) (graphwall.Result, error)
	MakeRWBytes(ctx context.Context, host string) (graphwall.Result, error)
	MakeRWAwait(ctx context.Context, host string) (graphwall.Result, error)
	MakeDiskInodes(ctx context.Context, host string) (graphwall.Result, error)
	MakeDiskBytes(ctx context.Context, host string) (graphwall.Result, error)
	MakeNetPackets(ctx context.Context, host string) (graphwall.Result, error)
	MakeNetBytes(ctx context.Context, host string) (graphwall.Result, error)
}

var _ Wall = (*graphwall.Wall)(nil)
