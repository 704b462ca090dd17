package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/cephdash/internal/collect"
	"github.com/rileyhilliard/cephdash/internal/config"
	"github.com/rileyhilliard/cephdash/internal/dashboard"
	"github.com/rileyhilliard/cephdash/internal/errors"
	"github.com/rileyhilliard/cephdash/internal/fsm"
	"github.com/rileyhilliard/cephdash/internal/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// DashOptions holds the flags of the dash command.
type DashOptions struct {
	Mode     string        // Initial mode, overrides dashboard.initial_mode
	Route    string        // Route navigated to after startup
	Hosts    string        // Comma-separated host filter
	Interval time.Duration // Overrides dashboard.interval when non-zero
	Remember bool          // Persist Mode as the config's initial mode
}

var dashOpts DashOptions

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Run the interactive cluster dashboard",
	Long: `Start the terminal dashboard for the configured Ceph cluster.

The dashboard has three modes: the dashboard (cluster and host gauges),
the workbench (gauges collapsed, per-host tiles and pool table) and the
graph wall (drill-down graphs for the cluster, pools or a single host).

Keyboard shortcuts:
  d / w / g     Dashboard / workbench / cluster graphs
  p             Pool IOPS graphs
  o, 1-8        Overview or metric graphs for the selected host
  Tab/Shift+Tab Select next / previous host
  b             Back to the previous route
  r             Refresh
  ?             Show help
  q / Ctrl+C    Quit

Examples:
  cephdash dash
  cephdash dash --mode graph
  cephdash dash --route graph/cephnode1/iops
  cephdash dash --hosts cephnode1,cephnode2 --interval 5s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashCommand(dashOpts)
	},
}

func init() {
	dashCmd.Flags().StringVar(&dashOpts.Mode, "mode", "", "initial mode: dashboard, workbench or graph")
	dashCmd.Flags().StringVar(&dashOpts.Route, "route", "", "route to open after startup, e.g. graph/all or graph/cephnode1/iops")
	dashCmd.Flags().StringVar(&dashOpts.Hosts, "hosts", "", "comma-separated list of hosts to show")
	dashCmd.Flags().DurationVar(&dashOpts.Interval, "interval", 0, "collection interval (default from config)")
	dashCmd.Flags().BoolVar(&dashOpts.Remember, "remember", false, "save --mode as the initial mode in the config file")
	rootCmd.AddCommand(dashCmd)
}

func dashCommand(opts DashOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrConfig,
			"cephdash dash needs a terminal",
			"Run it from an interactive shell rather than through a pipe.")
	}

	cfg, path, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	dashOptions, hosts, err := resolveDash(cfg, opts)
	if err != nil {
		return err
	}

	debug := verboseFlag || os.Getenv(logger.DebugEnv) != ""
	log, closer, err := logger.NewFileLogger(cfg.Log.File, "cephdash", debug)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't open the log file",
			"Check log.file in your config points somewhere writable.")
	}
	defer closer.Close()
	dashOptions.Log = log

	monitor := cfg.Cluster.Monitor
	if _, ok := hosts[monitor]; !ok && monitor != "" {
		log.Info("monitor %s filtered out, cluster view disabled", monitor)
		monitor = ""
	}

	collector := collect.NewCollector(hosts, monitor, cfg.Dashboard.Timeout, collect.WithLogger(log))
	model := dashboard.New(collector, dashOptions)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()

	model.Close()
	collector.Close()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrRender, "Dashboard exited with an error", "")
	}

	if opts.Remember && opts.Mode != "" {
		if path == "" {
			return errors.New(errors.ErrConfig,
				"No config file to remember the mode in",
				"Run 'cephdash init' first.")
		}
		if err := config.SetInitialMode(path, opts.Mode); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't save the initial mode", "")
		}
	}
	return nil
}

// resolveDash merges the flags over the config and returns the dashboard
// options and the hosts to collect from.
func resolveDash(cfg *config.Config, opts DashOptions) (dashboard.Options, map[string]config.Host, error) {
	modeName := cfg.Dashboard.InitialMode
	if opts.Mode != "" {
		if !slices.Contains(config.InitialModes, opts.Mode) {
			return dashboard.Options{}, nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown mode '%s'", opts.Mode),
				"Use one of: "+strings.Join(config.InitialModes, ", "))
		}
		modeName = opts.Mode
	}
	mode, ok := fsm.ParseMode(modeName)
	if !ok {
		return dashboard.Options{}, nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown mode '%s'", modeName),
			"Use one of: "+strings.Join(config.InitialModes, ", "))
	}

	interval := cfg.Dashboard.Interval
	if opts.Interval != 0 {
		if opts.Interval < 0 {
			return dashboard.Options{}, nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Invalid interval: %s", opts.Interval),
				"Use a positive duration like 2s or 500ms.")
		}
		interval = opts.Interval
	}

	hosts := filterHosts(cfg.Hosts, opts.Hosts)
	if len(hosts) == 0 {
		return dashboard.Options{}, nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("No hosts match '%s'", opts.Hosts),
			"Double-check your host names or try without the --hosts filter.")
	}

	return dashboard.Options{
		Name:        cfg.Cluster.Name,
		Interval:    interval,
		Timeout:     cfg.Dashboard.Timeout,
		HistorySize: cfg.Dashboard.HistorySize,
		Mode:        mode,
		Route:       strings.Trim(opts.Route, "/"),
	}, hosts, nil
}

// filterHosts returns only hosts that match the comma-separated filter.
func filterHosts(allHosts map[string]config.Host, filter string) map[string]config.Host {
	if filter == "" {
		return allHosts
	}

	names := make(map[string]bool)
	for _, name := range strings.Split(filter, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			names[name] = true
		}
	}

	result := make(map[string]config.Host)
	for name, host := range allHosts {
		if names[name] {
			result[name] = host
		}
	}
	return result
}
