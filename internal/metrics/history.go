package metrics

import (
	"sort"
	"sync"
	"time"
)

// DefaultHistorySize is the default number of data points to retain per series.
const DefaultHistorySize = 120

// History stores per-host time series in fixed-size ring buffers.
//
// Counters (disk, network) are converted to per-second rates on Push using
// the previous sample of the same host, so readers only ever see gauges.
// It is safe for concurrent use: the shell pushes from the update loop while
// graph builders read from command goroutines.
type History struct {
	mu    sync.RWMutex
	size  int
	hosts map[string]*hostHistory
}

type hostHistory struct {
	series  map[string]*ringBuffer
	objects map[string]map[string]bool // group -> object set
	prev    *HostSample
	updated time.Time
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a new history store with the specified buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:  size,
		hosts: make(map[string]*hostHistory),
	}
}

// Push records a host sample.
func (h *History) Push(host string, s *HostSample) {
	if s == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	hist := h.getOrCreate(host)
	hist.updated = s.Timestamp

	h.put(hist, Key(GroupCPU, "", FieldPercent), s.CPU.Percent)
	h.put(hist, Key(GroupCPU, "", FieldUser), s.CPU.User)
	h.put(hist, Key(GroupCPU, "", FieldSystem), s.CPU.System)
	h.put(hist, Key(GroupCPU, "", FieldIOWait), s.CPU.IOWait)
	h.put(hist, Key(GroupCPU, "", FieldSteal), s.CPU.Steal)
	h.put(hist, Key(GroupLoad, "", FieldLoad1), s.CPU.LoadAvg[0])
	if s.RAM.TotalBytes > 0 {
		h.put(hist, Key(GroupRAM, "", FieldPercent), s.RAM.Percent())
	}

	for _, fs := range s.Filesystems {
		h.put(hist, Key(GroupFS, fs.Device, FieldBytesUsed), float64(fs.BytesUsed))
		h.put(hist, Key(GroupFS, fs.Device, FieldBytesPct), percent(fs.BytesUsed, fs.BytesTotal))
		h.put(hist, Key(GroupFS, fs.Device, FieldInodesUsed), float64(fs.InodesUsed))
		h.put(hist, Key(GroupFS, fs.Device, FieldInodesPct), percent(fs.InodesUsed, fs.InodesTotal))
	}

	if prev := hist.prev; prev != nil {
		secs := s.Timestamp.Sub(prev.Timestamp).Seconds()
		if secs > 0 {
			h.pushDiskRates(hist, prev, s, secs)
			h.pushNetRates(hist, prev, s, secs)
		}
	}

	sampleCopy := *s
	hist.prev = &sampleCopy
}

func (h *History) pushDiskRates(hist *hostHistory, prev, cur *HostSample, secs float64) {
	before := make(map[string]DiskStats, len(prev.Disks))
	for _, d := range prev.Disks {
		before[d.Device] = d
	}
	for _, d := range cur.Disks {
		p, ok := before[d.Device]
		if !ok {
			continue
		}
		reads := counterDelta(d.ReadsCompleted, p.ReadsCompleted)
		writes := counterDelta(d.WritesCompleted, p.WritesCompleted)

		h.put(hist, Key(GroupDisk, d.Device, FieldReadOps), reads/secs)
		h.put(hist, Key(GroupDisk, d.Device, FieldWriteOps), writes/secs)
		h.put(hist, Key(GroupDisk, d.Device, FieldReadBytes), counterDelta(d.ReadBytes, p.ReadBytes)/secs)
		h.put(hist, Key(GroupDisk, d.Device, FieldWriteBytes), counterDelta(d.WriteBytes, p.WriteBytes)/secs)
		h.put(hist, Key(GroupDisk, d.Device, FieldReadAwait), await(counterDelta(d.ReadMillis, p.ReadMillis), reads))
		h.put(hist, Key(GroupDisk, d.Device, FieldWriteAwait), await(counterDelta(d.WriteMillis, p.WriteMillis), writes))
	}
}

func (h *History) pushNetRates(hist *hostHistory, prev, cur *HostSample, secs float64) {
	before := make(map[string]NetworkInterface, len(prev.Network))
	for _, n := range prev.Network {
		before[n.Name] = n
	}
	for _, n := range cur.Network {
		p, ok := before[n.Name]
		if !ok {
			continue
		}
		h.put(hist, Key(GroupNet, n.Name, FieldRxBytes), counterDelta(n.BytesIn, p.BytesIn)/secs)
		h.put(hist, Key(GroupNet, n.Name, FieldTxBytes), counterDelta(n.BytesOut, p.BytesOut)/secs)
		h.put(hist, Key(GroupNet, n.Name, FieldRxPackets), counterDelta(n.PacketsIn, p.PacketsIn)/secs)
		h.put(hist, Key(GroupNet, n.Name, FieldTxPackets), counterDelta(n.PacketsOut, p.PacketsOut)/secs)
	}
}

// PushCluster records a cluster status under ClusterHost.
func (h *History) PushCluster(c *ClusterStatus) {
	if c == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	hist := h.getOrCreate(ClusterHost)
	hist.updated = c.Timestamp
	h.put(hist, Key(GroupUsed, "", FieldPercent), c.UsedPercent())
	for _, p := range c.Pools {
		h.put(hist, Key(GroupPool, p.Name, FieldReadOps), p.ReadOpsPerSec)
		h.put(hist, Key(GroupPool, p.Name, FieldWriteOps), p.WriteOpsPerSec)
	}
}

// Series returns the last count values of key for host, oldest first.
// Returns fewer values if not enough history is available, nil if none.
func (h *History) Series(host, key string, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.hosts[host]
	if !ok {
		return nil
	}
	rb, ok := hist.series[key]
	if !ok {
		return nil
	}
	return rb.getLast(count)
}

// Last returns the most recent value of key for host.
func (h *History) Last(host, key string) (float64, bool) {
	vals := h.Series(host, key, 1)
	if len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}

// Objects returns the sorted object names (devices, interfaces, pools) seen
// in group for host.
func (h *History) Objects(host, group string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.hosts[host]
	if !ok {
		return nil
	}
	set := hist.objects[group]
	out := make([]string, 0, len(set))
	for o := range set {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}

// Hosts returns the sorted hosts with recorded samples, excluding ClusterHost.
func (h *History) Hosts() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.hosts))
	for name := range h.hosts {
		if name != ClusterHost {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Updated returns the timestamp of the latest sample for host.
func (h *History) Updated(host string) time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if hist, ok := h.hosts[host]; ok {
		return hist.updated
	}
	return time.Time{}
}

// Count returns the number of data points stored for a host's CPU series.
func (h *History) Count(host string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.hosts[host]
	if !ok {
		return 0
	}
	rb, ok := hist.series[Key(GroupCPU, "", FieldPercent)]
	if !ok {
		return 0
	}
	return rb.count
}

// Clear removes all history for the specified host.
func (h *History) Clear(host string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.hosts, host)
}

// ClearAll removes all history.
func (h *History) ClearAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hosts = make(map[string]*hostHistory)
}

// getOrCreate returns the history for a host, creating it if needed.
// Must be called with h.mu held.
func (h *History) getOrCreate(host string) *hostHistory {
	hist, ok := h.hosts[host]
	if !ok {
		hist = &hostHistory{
			series:  make(map[string]*ringBuffer),
			objects: make(map[string]map[string]bool),
		}
		h.hosts[host] = hist
	}
	return hist
}

// put appends value to key, registering the key's object. Must be called with h.mu held.
func (h *History) put(hist *hostHistory, key string, value float64) {
	rb, ok := hist.series[key]
	if !ok {
		rb = newRingBuffer(h.size)
		hist.series[key] = rb
	}
	rb.push(value)

	if group, object := splitKey(key); object != "" {
		set, ok := hist.objects[group]
		if !ok {
			set = make(map[string]bool)
			hist.objects[group] = set
		}
		set[object] = true
	}
}

// counterDelta handles counter wraparound or reset by clamping to zero.
func counterDelta(cur, prev int64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur - prev)
}

// await is the average milliseconds per completed operation.
func await(millis, ops float64) float64 {
	if ops <= 0 {
		return 0
	}
	return millis / ops
}

func percent(used, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(used) / float64(total) * 100
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)
	// head points to the next write position, so the most recent value is at head-1
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
