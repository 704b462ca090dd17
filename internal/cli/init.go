package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/cephdash/internal/config"
	"github.com/rileyhilliard/cephdash/internal/errors"
	"github.com/rileyhilliard/cephdash/internal/ui"
	"github.com/rileyhilliard/cephdash/pkg/sshutil"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string   // Where to write; defaults to ./.cephdash.yaml
	Name           string   // Cluster name
	Hosts          []string // Host aliases, each used as its own SSH target
	Monitor        string   // Host that runs the ceph CLI
	Overwrite      bool     // Overwrite existing config without asking
	NonInteractive bool     // Skip prompts
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .cephdash.yaml config",
	Long: `Create a .cephdash.yaml in the current directory.

Interactively picks the cluster nodes from your SSH config and the monitor
node that runs 'ceph status'. Pass --non-interactive with --hosts to skip
the prompts.

Examples:
  cephdash init
  cephdash init --force
  cephdash init --non-interactive --name prod --hosts cephnode1,cephnode2 --monitor cephnode1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(cmd.OutOrStdout(), initOpts)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite an existing config")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt, use flags")
	initCmd.Flags().StringVar(&initOpts.Name, "name", "", "cluster name")
	initCmd.Flags().StringSliceVar(&initOpts.Hosts, "hosts", nil, "cluster node SSH aliases")
	initCmd.Flags().StringVar(&initOpts.Monitor, "monitor", "", "node that runs the ceph CLI")
	rootCmd.AddCommand(initCmd)
}

// Init writes a new config file.
func Init(out io.Writer, opts InitOptions) error {
	path := opts.Path
	if path == "" {
		path = filepath.Join(".", config.ConfigFileName)
	}

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if !opts.NonInteractive {
		if err := promptInit(&opts); err != nil {
			return err
		}
	}

	cfg := buildInitConfig(opts)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config",
			"Check you have write access to the current directory.")
	}

	fmt.Fprintf(out, "%s Wrote %s with %d hosts\n", ui.SymbolSuccess, path, len(cfg.Hosts))
	fmt.Fprintln(out, "  Run 'cephdash dash' to open the dashboard.")
	return nil
}

// promptInit fills opts from an interactive form. Hosts come from the SSH
// config when it declares any, otherwise they are typed in.
func promptInit(opts *InitOptions) error {
	aliases, err := sshutil.ConfigAliases("")
	if err != nil {
		aliases = nil
	}

	name := opts.Name
	if name == "" {
		name = "ceph"
	}

	var hostField huh.Field
	var typed string
	if len(aliases) > 0 {
		hostField = huh.NewMultiSelect[string]().
			Title("Cluster nodes").
			Description("Pick the SSH aliases of the nodes to watch").
			Options(huh.NewOptions(aliases...)...).
			Value(&opts.Hosts).
			Validate(func(s []string) error {
				if len(s) == 0 {
					return fmt.Errorf("pick at least one node")
				}
				return nil
			})
	} else {
		hostField = huh.NewInput().
			Title("Cluster nodes").
			Description("Comma-separated hostnames, user@host or SSH aliases").
			Placeholder("cephnode1,cephnode2,cephnode3").
			Value(&typed).
			Validate(func(s string) error {
				if len(splitList(s)) == 0 {
					return fmt.Errorf("at least one node is required")
				}
				return nil
			})
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster name").
				Description("Shown in the dashboard header").
				Value(&name),
		),
		huh.NewGroup(hostField),
	)
	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive.")
	}
	if typed != "" {
		opts.Hosts = splitList(typed)
	}
	opts.Name = name

	monitor := opts.Monitor
	if monitor == "" && len(opts.Hosts) > 0 {
		monitor = opts.Hosts[0]
	}
	options := append([]huh.Option[string]{huh.NewOption("none (skip cluster view)", "")}, huh.NewOptions(opts.Hosts...)...)
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Monitor node").
				Description("The node that runs 'ceph status' and 'ceph osd pool stats'").
				Options(options...).
				Value(&monitor),
		),
	)
	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive.")
	}
	opts.Monitor = monitor
	return nil
}

// buildInitConfig turns init options into a config with defaults.
func buildInitConfig(opts InitOptions) *config.Config {
	cfg := config.DefaultConfig()
	if opts.Name != "" {
		cfg.Cluster.Name = opts.Name
	}
	for _, h := range opts.Hosts {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		cfg.Hosts[hostKey(h)] = config.Host{SSH: []string{h}}
	}
	if opts.Monitor != "" {
		cfg.Cluster.Monitor = hostKey(opts.Monitor)
	}
	return cfg
}

// hostKey derives the config key for an SSH target: the hostname without
// the user, lowercased to match how the loader reads keys back.
func hostKey(target string) string {
	if i := strings.LastIndex(target, "@"); i >= 0 {
		target = target[i+1:]
	}
	return strings.ToLower(target)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
