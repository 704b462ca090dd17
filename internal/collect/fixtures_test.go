package collect

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const procStatA = `cpu  1000 100 500 8000 200 50 50 100 0 0
cpu0 500 50 250 4000 100 25 25 50 0 0
cpu1 500 50 250 4000 100 25 25 50 0 0
intr 12345
ctxt 6789`

// procStatB is procStatA plus 1000 jiffies: 300 user, 100 system, 500 idle, 100 iowait.
const procStatB = `cpu  1300 100 600 8500 300 50 50 100 0 0
cpu0 650 50 300 4250 150 25 25 50 0 0
cpu1 650 50 300 4250 150 25 25 50 0 0`

const loadavg = `0.52 0.58 0.59 1/467 12345`

const meminfo = `MemTotal:       16384000 kB
MemFree:         4096000 kB
MemAvailable:    8192000 kB
Buffers:          512000 kB
Cached:          2048000 kB
SwapTotal:             0 kB`

const diskstats = `   7       0 loop0 10 0 20 5 0 0 0 0 0 4 5 0 0 0 0
   8       0 sda 1000 10 20000 500 2000 20 40000 1500 0 900 2000 0 0 0 0
   8       1 sda1 900 10 18000 450 1900 20 38000 1400 0 800 1850 0 0 0 0
 259       0 nvme0n1 5000 0 100000 2500 6000 0 120000 3000 0 2000 5500 0 0 0 0
 259       1 nvme0n1p1 4000 0 80000 2000 5000 0 100000 2500 0 1500 4500 0 0 0 0
 253       0 dm-0 3000 0 60000 1200 4000 0 80000 2400 0 1000 3600 0 0 0 0`

const netdev = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo:  123456     100    0    0    0     0          0         0   123456     100    0    0    0     0       0          0
  eth0: 9876543    5000    0    0    0     0          0         0  1234567    3000    0    0    0     0       0          0
  bond0: 500 5 0 0 0 0 0 0 600 6 0 0 0 0 0 0`

const dfBytes = `Filesystem     1-blocks        Used   Available Capacity Mounted on
/dev/sda2    100000000000 40000000000 60000000000      40% /
tmpfs          8000000000           0  8000000000       0% /dev/shm
/dev/nvme0n1 500000000000 50000000000 450000000000     10% /var/lib/ceph/osd/ceph 0`

const dfInodes = `Filesystem      Inodes   IUsed    IFree IUse% Mounted on
/dev/sda2      6000000  300000  5700000    5% /
tmpfs          2000000       1  1999999    1% /dev/shm
/dev/nvme0n1  30000000 3000000 27000000   10% /var/lib/ceph/osd/ceph 0`

func hostOutput(stat string) string {
	return strings.Join([]string{stat, loadavg, meminfo, diskstats, netdev, dfBytes, dfInodes}, "\n---\n") + "\n"
}

const cephStatusJSON = `{
  "fsid": "3a7e1c52-0b1e-4f7b-9a67-6d1f1b1f0c11",
  "health": {
    "status": "HEALTH_WARN",
    "checks": {
      "OSD_DOWN": {"severity": "HEALTH_WARN", "summary": {"message": "1 osds down"}},
      "POOL_NO_REDUNDANCY": {"severity": "HEALTH_WARN", "summary": {"message": "1 pool(s) have no replicas configured"}}
    }
  },
  "osdmap": {"epoch": 120, "num_osds": 6, "num_up_osds": 5, "num_in_osds": 6},
  "pgmap": {
    "pgs_by_state": [
      {"state_name": "active+clean", "count": 120},
      {"state_name": "active+undersized+degraded", "count": 8}
    ],
    "num_pgs": 128,
    "bytes_used": 250000000000,
    "bytes_total": 1000000000000
  }
}`

const cephStatusNestedJSON = `{
  "fsid": "abc",
  "health": {"overall_status": "HEALTH_OK"},
  "osdmap": {"osdmap": {"num_osds": 3, "num_up_osds": 3, "num_in_osds": 3}},
  "pgmap": {"num_pgs": 64, "bytes_used": 1, "bytes_total": 4}
}`

const poolStatsJSON = `[
  {"pool_name": "rbd", "pool_id": 2, "recovery": {}, "recovery_rate": {},
   "client_io_rate": {"read_bytes_sec": 4096000, "write_bytes_sec": 2048000, "read_op_per_sec": 120, "write_op_per_sec": 45}},
  {"pool_name": ".mgr", "pool_id": 1, "recovery": {}, "recovery_rate": {}, "client_io_rate": {}}
]`

// fakeConn answers commands from a table.
type fakeConn struct {
	mu       sync.Mutex
	replies  map[string]string
	exitCode int
	execErr  error
	dead     bool
	closed   bool
	calls    []string
}

func (f *fakeConn) Exec(ctx context.Context, cmd string) ([]byte, []byte, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
	if err := ctx.Err(); err != nil {
		return nil, nil, -1, err
	}
	if f.execErr != nil {
		return nil, nil, -1, f.execErr
	}
	if f.exitCode != 0 {
		return nil, []byte("boom"), f.exitCode, nil
	}
	out, ok := f.replies[cmd]
	if !ok {
		return nil, []byte("command not found"), 127, nil
	}
	return []byte(out), nil, 0, nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) Alive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.dead && !f.closed
}

// fakeDialer hands out per-target conns and records dial attempts.
type fakeDialer struct {
	mu      sync.Mutex
	conns   map[string]*fakeConn
	dialled []string
}

func (d *fakeDialer) dial(target string, _ time.Duration) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialled = append(d.dialled, target)
	conn, ok := d.conns[target]
	if !ok {
		return nil, fmt.Errorf("dial %s: connection refused", target)
	}
	conn.closed = false
	return conn, nil
}
