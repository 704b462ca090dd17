package config

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/cephdash/internal/errors"
)

// InitialModes are the accepted values of dashboard.initial_mode.
var InitialModes = []string{"dashboard", "workbench", "graph"}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but cephdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade cephdash.")
	}

	if len(cfg.Hosts) == 0 {
		return errors.New(errors.ErrConfig,
			"No hosts configured",
			"Add cluster nodes under 'hosts', or run 'cephdash init'.")
	}

	for _, name := range cfg.HostNames() {
		if err := validateHost(name, cfg.Hosts[name]); err != nil {
			return err
		}
	}

	if cfg.Cluster.Monitor != "" {
		if _, ok := cfg.Hosts[cfg.Cluster.Monitor]; !ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Monitor host '%s' isn't in the hosts list", cfg.Cluster.Monitor),
				"Set cluster.monitor to one of: "+strings.Join(cfg.HostNames(), ", "))
		}
	}

	return validateDashboard(cfg.Dashboard)
}

func validateHost(name string, host Host) error {
	if strings.ContainsAny(name, "/ ") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Host alias '%s' can't contain spaces or slashes", name),
			"Aliases end up in graph routes like graph/<alias>; keep them simple.")
	}
	for _, target := range host.SSH {
		if strings.TrimSpace(target) == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Host '%s' has an empty ssh entry", name),
				"Remove the blank line from its ssh list.")
		}
	}
	return nil
}

func validateDashboard(d DashboardConfig) error {
	valid := false
	for _, m := range InitialModes {
		if d.InitialMode == m {
			valid = true
			break
		}
	}
	if !valid {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown dashboard.initial_mode '%s'", d.InitialMode),
			"Use one of: "+strings.Join(InitialModes, ", "))
	}
	if d.Interval <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("dashboard.interval must be positive, got %s", d.Interval),
			"Try something like 2s.")
	}
	if d.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("dashboard.timeout must be positive, got %s", d.Timeout),
			"Try something like 8s.")
	}
	if d.HistorySize <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("dashboard.history_size must be positive, got %d", d.HistorySize),
			"The default is 120 samples.")
	}
	return nil
}
