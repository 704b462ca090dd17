package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .cephdash.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Cluster   ClusterConfig   `yaml:"cluster" mapstructure:"cluster"`
	Hosts     map[string]Host `yaml:"hosts" mapstructure:"hosts"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ClusterConfig identifies the cluster and the node the ceph CLI runs on.
type ClusterConfig struct {
	Name string `yaml:"name" mapstructure:"name"`

	// Monitor is the host alias that runs `ceph status` and pool queries.
	// Empty disables cluster-wide collection.
	Monitor string `yaml:"monitor,omitempty" mapstructure:"monitor"`
}

// Host defines a cluster node and its connection settings.
type Host struct {
	// SSH connection strings, tried in order until one succeeds.
	// Can be: hostname, user@hostname, or SSH config alias.
	SSH []string `yaml:"ssh" mapstructure:"ssh"`

	// Tags are free-form labels shown next to the host on the workbench.
	Tags []string `yaml:"tags,omitempty" mapstructure:"tags"`
}

// DashboardConfig controls the TUI.
type DashboardConfig struct {
	// InitialMode is dashboard, workbench or graph.
	InitialMode string `yaml:"initial_mode" mapstructure:"initial_mode"`

	// Interval between collection cycles.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Timeout bounds one host's collection.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// HistorySize is the number of samples kept per series.
	HistorySize int `yaml:"history_size" mapstructure:"history_size"`
}

// LogConfig controls where the dashboard writes its log.
type LogConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Cluster: ClusterConfig{Name: "ceph"},
		Hosts:   make(map[string]Host),
		Dashboard: DashboardConfig{
			InitialMode: "dashboard",
			Interval:    2 * time.Second,
			Timeout:     8 * time.Second,
			HistorySize: 120,
		},
		Log: LogConfig{File: "/tmp/cephdash.log"},
	}
}

// HostNames returns the configured host aliases in sorted order.
func (c *Config) HostNames() []string {
	return sortedKeys(c.Hosts)
}
