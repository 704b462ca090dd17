// Package metrics holds the sample types produced by the collector and the
// History store the graph wall reads its time series from.
package metrics

import "time"

// HostSample is one collection from a cluster node.
type HostSample struct {
	Timestamp   time.Time
	CPU         CPUStats
	RAM         RAMStats
	Disks       []DiskStats
	Filesystems []FSStats
	Network     []NetworkInterface
}

// CPUStats contains CPU usage percentages since the previous sample.
type CPUStats struct {
	Percent float64
	User    float64
	System  float64
	IOWait  float64
	Steal   float64
	Cores   int
	LoadAvg [3]float64
}

// RAMStats contains memory usage information.
type RAMStats struct {
	UsedBytes  int64
	TotalBytes int64
	Cached     int64
	Available  int64
}

// Percent returns used/total as a percentage, 0 when total is unknown.
func (r RAMStats) Percent() float64 {
	if r.TotalBytes <= 0 {
		return 0
	}
	return float64(r.UsedBytes) / float64(r.TotalBytes) * 100
}

// DiskStats holds the cumulative counters of one block device from /proc/diskstats.
type DiskStats struct {
	Device          string
	ReadsCompleted  int64
	WritesCompleted int64
	ReadBytes       int64
	WriteBytes      int64
	ReadMillis      int64
	WriteMillis     int64
}

// FSStats holds usage of one mounted filesystem from df.
type FSStats struct {
	Device      string
	Mount       string
	BytesUsed   int64
	BytesTotal  int64
	InodesUsed  int64
	InodesTotal int64
}

// NetworkInterface contains cumulative network counters for one interface.
type NetworkInterface struct {
	Name       string
	BytesIn    int64
	BytesOut   int64
	PacketsIn  int64
	PacketsOut int64
}

// ClusterStatus is the cluster-wide view reported by the monitor host.
type ClusterStatus struct {
	Timestamp  time.Time
	FSID       string
	Health     string
	Checks     []string
	BytesUsed  int64
	BytesTotal int64
	OSDsTotal  int
	OSDsUp     int
	OSDsIn     int
	PGsTotal   int
	PGStates   map[string]int
	Pools      []PoolStats
}

// UsedPercent returns raw usage as a percentage of raw capacity.
func (c ClusterStatus) UsedPercent() float64 {
	if c.BytesTotal <= 0 {
		return 0
	}
	return float64(c.BytesUsed) / float64(c.BytesTotal) * 100
}

// PoolStats is the client I/O rate of one pool.
type PoolStats struct {
	ID               int
	Name             string
	ReadOpsPerSec    float64
	WriteOpsPerSec   float64
	ReadBytesPerSec  float64
	WriteBytesPerSec float64
}
