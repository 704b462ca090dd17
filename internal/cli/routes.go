package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rileyhilliard/cephdash/internal/app"
	"github.com/rileyhilliard/cephdash/internal/fsm"
	"github.com/rileyhilliard/cephdash/internal/logger"
	"github.com/rileyhilliard/cephdash/internal/router"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List dashboard routes and metric kinds",
	Long: `List the routes accepted by 'cephdash dash --route' and the metric
kinds that can appear as the last segment of a graph route.

Examples:
  cephdash routes
  cephdash dash --route graph/cephnode1/rwbytes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeRoutes(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

// writeRoutes prints the registered route patterns followed by the metric
// kinds with their key and title.
func writeRoutes(out io.Writer) error {
	r := router.New()
	m := fsm.New(fsm.Dashboard, fsm.HandlerFunc(func(fsm.Effect, fsm.Change) {}), logger.Noop())
	app.Routes(r, m, logger.Noop())

	fmt.Fprintln(out, "Routes:")
	for _, p := range r.Patterns() {
		fmt.Fprintf(out, "  %s\n", p)
	}
	fmt.Fprintf(out, "  %s\n", app.GraphPath(app.GraphTarget{Host: app.TargetAll}))
	fmt.Fprintf(out, "  %s\n", app.GraphPath(app.GraphTarget{Host: app.TargetAll, ID: app.TargetIOPS}))

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Metric kinds (graph/<host>/<kind>):")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  key\tkind\ttitle\n")
	fmt.Fprintf(tw, "  o\t%s\t%s\n", app.Overview.ID, app.Overview.Title("<host>"))
	for i, k := range app.Registry {
		fmt.Fprintf(tw, "  %d\t%s\t%s\n", i+1, k.ID, k.Title("<host>"))
	}
	return tw.Flush()
}
