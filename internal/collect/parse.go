package collect

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/cephdash/internal/metrics"
)

// cpuTimes are the aggregate jiffy counters of the "cpu" line in /proc/stat.
type cpuTimes struct {
	user, nice, system, idle, iowait, irq, softirq, steal int64
}

func (c cpuTimes) total() int64 {
	return c.user + c.nice + c.system + c.idle + c.iowait + c.irq + c.softirq + c.steal
}

// parseProcStat returns the aggregate counters and the number of cores.
func parseProcStat(procStat string) (cpuTimes, int, error) {
	var times cpuTimes
	found := false
	cores := 0

	scanner := bufio.NewScanner(strings.NewReader(procStat))
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "cpu") && len(line) > 3 && line[3] >= '0' && line[3] <= '9' {
			cores++
			continue
		}
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		// cpu user nice system idle iowait irq softirq steal guest guest_nice
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return times, 0, fmt.Errorf("invalid /proc/stat cpu line: %s", line)
		}
		vals := make([]int64, 8)
		for i := 1; i < len(fields) && i <= 8; i++ {
			v, err := strconv.ParseInt(fields[i], 10, 64)
			if err != nil {
				return times, 0, fmt.Errorf("failed to parse cpu field %d: %w", i, err)
			}
			vals[i-1] = v
		}
		times = cpuTimes{vals[0], vals[1], vals[2], vals[3], vals[4], vals[5], vals[6], vals[7]}
		found = true
	}
	if err := scanner.Err(); err != nil {
		return times, 0, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	if !found {
		return times, 0, fmt.Errorf("no aggregate cpu line in /proc/stat")
	}
	return times, cores, nil
}

// cpuPercents computes usage over the interval since prev. With no previous
// sample the counters since boot are used.
func cpuPercents(prev *cpuTimes, cur cpuTimes) metrics.CPUStats {
	d := cur
	if prev != nil && cur.total() > prev.total() {
		d = cpuTimes{
			user:    cur.user - prev.user,
			nice:    cur.nice - prev.nice,
			system:  cur.system - prev.system,
			idle:    cur.idle - prev.idle,
			iowait:  cur.iowait - prev.iowait,
			irq:     cur.irq - prev.irq,
			softirq: cur.softirq - prev.softirq,
			steal:   cur.steal - prev.steal,
		}
	}

	total := float64(d.total())
	if total <= 0 {
		return metrics.CPUStats{}
	}
	pct := func(v int64) float64 { return float64(v) / total * 100 }
	return metrics.CPUStats{
		Percent: pct(d.total() - d.idle - d.iowait),
		User:    pct(d.user + d.nice),
		System:  pct(d.system + d.irq + d.softirq),
		IOWait:  pct(d.iowait),
		Steal:   pct(d.steal),
	}
}

func parseLoadavg(procLoadavg string) ([3]float64, error) {
	var load [3]float64
	fields := strings.Fields(strings.TrimSpace(procLoadavg))
	if len(fields) < 3 {
		return load, fmt.Errorf("invalid /proc/loadavg: %q", procLoadavg)
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return load, fmt.Errorf("failed to parse loadavg field %d: %w", i, err)
		}
		load[i] = v
	}
	return load, nil
}

func parseMeminfo(procMeminfo string) (metrics.RAMStats, error) {
	var stats metrics.RAMStats
	var memTotal, memFree, memAvailable, buffers, cached int64
	foundFields := 0

	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		val, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		// Values in /proc/meminfo are in kB
		valBytes := val * 1024

		switch strings.TrimSuffix(parts[0], ":") {
		case "MemTotal":
			memTotal = valBytes
		case "MemFree":
			memFree = valBytes
		case "MemAvailable":
			memAvailable = valBytes
		case "Buffers":
			buffers = valBytes
		case "Cached":
			cached = valBytes
		default:
			continue
		}
		foundFields++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}
	if foundFields < 3 {
		return stats, fmt.Errorf("insufficient memory info found in /proc/meminfo")
	}

	stats.TotalBytes = memTotal
	stats.Available = memAvailable
	stats.Cached = cached + buffers
	stats.UsedBytes = memTotal - memFree - buffers - cached
	return stats, nil
}

// sectorSize is the fixed unit of the sector counters in /proc/diskstats.
const sectorSize = 512

// parseDiskstats returns counters for whole block devices. Partitions and
// virtual devices (loop, ram, zram, sr) are skipped; dm devices are kept
// because OSDs usually sit on LVM.
func parseDiskstats(procDiskstats string) ([]metrics.DiskStats, error) {
	var disks []metrics.DiskStats

	scanner := bufio.NewScanner(strings.NewReader(procDiskstats))
	for scanner.Scan() {
		// major minor name reads merged sectors ms writes merged sectors ms ...
		fields := strings.Fields(scanner.Text())
		if len(fields) < 11 {
			continue
		}
		name := fields[2]
		if skipDevice(name) {
			continue
		}

		vals := make([]int64, 8)
		for i := range vals {
			v, err := strconv.ParseInt(fields[3+i], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse diskstats for %s: %w", name, err)
			}
			vals[i] = v
		}
		disks = append(disks, metrics.DiskStats{
			Device:          name,
			ReadsCompleted:  vals[0],
			ReadBytes:       vals[2] * sectorSize,
			ReadMillis:      vals[3],
			WritesCompleted: vals[4],
			WriteBytes:      vals[6] * sectorSize,
			WriteMillis:     vals[7],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/diskstats: %w", err)
	}
	return disks, nil
}

func skipDevice(name string) bool {
	for _, prefix := range []string{"loop", "ram", "zram", "sr", "fd"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return isPartition(name)
}

// isPartition matches sda1, vdb2, xvda1 and nvme0n1p1 style names.
func isPartition(name string) bool {
	if strings.HasPrefix(name, "nvme") || strings.HasPrefix(name, "mmcblk") {
		p := strings.LastIndex(name, "p")
		return p > 4 && p < len(name)-1 && isNumeric(name[p+1:])
	}
	for _, prefix := range []string{"sd", "vd", "hd", "xvd"} {
		if strings.HasPrefix(name, prefix) {
			last := name[len(name)-1]
			return last >= '0' && last <= '9'
		}
	}
	return false
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// parseNetDev parses interface counters from /proc/net/dev, skipping loopback.
func parseNetDev(procNetDev string) ([]metrics.NetworkInterface, error) {
	var interfaces []metrics.NetworkInterface

	scanner := bufio.NewScanner(strings.NewReader(procNetDev))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum <= 2 {
			continue
		}

		// "  iface: bytes packets errs drop fifo frame compressed multicast | bytes packets..."
		parts := strings.SplitN(scanner.Text(), ":", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		fields := strings.Fields(parts[1])
		if name == "lo" || len(fields) < 16 {
			continue
		}

		var vals [4]int64
		for i, idx := range []int{0, 1, 8, 9} {
			v, err := strconv.ParseInt(fields[idx], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse /proc/net/dev for %s: %w", name, err)
			}
			vals[i] = v
		}
		interfaces = append(interfaces, metrics.NetworkInterface{
			Name:       name,
			BytesIn:    vals[0],
			PacketsIn:  vals[1],
			BytesOut:   vals[2],
			PacketsOut: vals[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/net/dev: %w", err)
	}
	return interfaces, nil
}

// parseDF merges `df -B1 -P` and `df -i -P` output by mount point. Only
// filesystems backed by a device path are kept.
func parseDF(dfBytes, dfInodes string) []metrics.FSStats {
	var out []metrics.FSStats
	byMount := make(map[string]int)

	for _, row := range dfRows(dfBytes) {
		total, _ := strconv.ParseInt(row[1], 10, 64)
		used, _ := strconv.ParseInt(row[2], 10, 64)
		byMount[row[5]] = len(out)
		out = append(out, metrics.FSStats{
			Device:     row[0],
			Mount:      row[5],
			BytesTotal: total,
			BytesUsed:  used,
		})
	}
	for _, row := range dfRows(dfInodes) {
		i, ok := byMount[row[5]]
		if !ok {
			continue
		}
		out[i].InodesTotal, _ = strconv.ParseInt(row[1], 10, 64)
		out[i].InodesUsed, _ = strconv.ParseInt(row[2], 10, 64)
	}
	return out
}

// dfRows returns [device, total, used, free, pct, mount] rows, header dropped.
// Mount points containing spaces are rejoined.
func dfRows(output string) [][]string {
	var rows [][]string
	scanner := bufio.NewScanner(strings.NewReader(output))
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 || !strings.HasPrefix(fields[0], "/") {
			continue
		}
		row := append(fields[:5:5], strings.Join(fields[5:], " "))
		rows = append(rows, row)
	}
	return rows
}
