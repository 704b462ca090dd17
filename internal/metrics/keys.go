package metrics

import "strings"

// ClusterHost is the pseudo host cluster-wide series are stored under.
const ClusterHost = "_cluster"

// Series groups. A series key is "<group>.<object>.<field>" or, for
// host-level values, "<group>.<field>".
const (
	GroupCPU  = "cpu"
	GroupRAM  = "ram"
	GroupLoad = "load"
	GroupDisk = "disk"
	GroupFS   = "fs"
	GroupNet  = "net"
	GroupPool = "pool"
	GroupUsed = "used"
)

// Fields recorded per object.
const (
	FieldPercent    = "percent"
	FieldUser       = "user"
	FieldSystem     = "system"
	FieldIOWait     = "iowait"
	FieldSteal      = "steal"
	FieldLoad1      = "1m"
	FieldReadOps    = "read_ops"
	FieldWriteOps   = "write_ops"
	FieldReadBytes  = "read_bytes"
	FieldWriteBytes = "write_bytes"
	FieldReadAwait  = "read_await"
	FieldWriteAwait = "write_await"
	FieldBytesUsed  = "bytes_used"
	FieldBytesPct   = "bytes_pct"
	FieldInodesUsed = "inodes_used"
	FieldInodesPct  = "inodes_pct"
	FieldRxBytes    = "rx_bytes"
	FieldTxBytes    = "tx_bytes"
	FieldRxPackets  = "rx_packets"
	FieldTxPackets  = "tx_packets"
)

// Key builds a series key from its parts, skipping empty ones.
func Key(group, object, field string) string {
	parts := []string{group}
	if object != "" {
		parts = append(parts, object)
	}
	return strings.Join(append(parts, field), ".")
}

// splitKey returns group and object of a key; object is empty for
// host-level keys.
func splitKey(key string) (group, object string) {
	first := strings.IndexByte(key, '.')
	last := strings.LastIndexByte(key, '.')
	if first < 0 {
		return key, ""
	}
	if first == last {
		return key[:first], ""
	}
	return key[:first], key[first+1 : last]
}
