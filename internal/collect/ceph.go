package collect

import (
	"fmt"
	"sort"

	"github.com/rileyhilliard/cephdash/internal/metrics"
	"github.com/tidwall/gjson"
)

// parseCephStatus reads the fields the dashboard shows from
// `ceph status -f json`. Both the nested (pre-Octopus) and flat osdmap
// layouts are accepted.
func parseCephStatus(data []byte) (*metrics.ClusterStatus, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("ceph status returned invalid JSON")
	}
	root := gjson.ParseBytes(data)

	status := &metrics.ClusterStatus{
		FSID:       root.Get("fsid").String(),
		Health:     root.Get("health.status").String(),
		BytesUsed:  root.Get("pgmap.bytes_used").Int(),
		BytesTotal: root.Get("pgmap.bytes_total").Int(),
		PGsTotal:   int(root.Get("pgmap.num_pgs").Int()),
		PGStates:   make(map[string]int),
	}
	if status.Health == "" {
		// Luminous and older
		status.Health = root.Get("health.overall_status").String()
	}

	root.Get("health.checks").ForEach(func(key, value gjson.Result) bool {
		msg := value.Get("summary.message").String()
		if msg == "" {
			msg = key.String()
		}
		status.Checks = append(status.Checks, msg)
		return true
	})
	sort.Strings(status.Checks)

	osd := root.Get("osdmap")
	if nested := osd.Get("osdmap"); nested.Exists() {
		osd = nested
	}
	status.OSDsTotal = int(osd.Get("num_osds").Int())
	status.OSDsUp = int(osd.Get("num_up_osds").Int())
	status.OSDsIn = int(osd.Get("num_in_osds").Int())

	root.Get("pgmap.pgs_by_state").ForEach(func(_, value gjson.Result) bool {
		status.PGStates[value.Get("state_name").String()] += int(value.Get("count").Int())
		return true
	})

	return status, nil
}

// parsePoolStats reads per-pool client I/O from `ceph osd pool stats -f json`.
// Idle pools report an empty client_io_rate and come out as zeros.
func parsePoolStats(data []byte) ([]metrics.PoolStats, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("ceph osd pool stats returned invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("ceph osd pool stats: expected a JSON array")
	}

	var pools []metrics.PoolStats
	root.ForEach(func(_, p gjson.Result) bool {
		io := p.Get("client_io_rate")
		pools = append(pools, metrics.PoolStats{
			ID:               int(p.Get("pool_id").Int()),
			Name:             p.Get("pool_name").String(),
			ReadOpsPerSec:    io.Get("read_op_per_sec").Float(),
			WriteOpsPerSec:   io.Get("write_op_per_sec").Float(),
			ReadBytesPerSec:  io.Get("read_bytes_sec").Float(),
			WriteBytesPerSec: io.Get("write_bytes_sec").Float(),
		})
		return true
	})
	sort.Slice(pools, func(i, j int) bool { return pools[i].ID < pools[j].ID })
	return pools, nil
}
