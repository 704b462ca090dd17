package collect

// OutputSeparator splits batched command output into sections.
const OutputSeparator = "---"

// Section indexes of the batched host command output.
const (
	secStat = iota
	secLoadavg
	secMeminfo
	secDiskstats
	secNetDev
	secDFBytes
	secDFInodes
	numSections
)

// HostCommand returns the single batched command that gathers everything a
// node reports per cycle, so collection costs one SSH exec per host.
func HostCommand() string {
	return `cat /proc/stat; echo "---"; cat /proc/loadavg; echo "---"; cat /proc/meminfo; echo "---"; cat /proc/diskstats; echo "---"; cat /proc/net/dev; echo "---"; df -B1 -P 2>/dev/null; echo "---"; df -i -P 2>/dev/null`
}

// Commands run on the monitor host.
const (
	CephStatusCommand    = "ceph status -f json"
	CephPoolStatsCommand = "ceph osd pool stats -f json"
)
