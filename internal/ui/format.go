package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Unit tells the formatter how to print a series value.
type Unit string

const (
	UnitPercent     Unit = "%"
	UnitBytes       Unit = "B"
	UnitBytesPerSec Unit = "B/s"
	UnitOpsPerSec   Unit = "ops/s"
	UnitPktsPerSec  Unit = "pkt/s"
	UnitMillis      Unit = "ms"
	UnitCount       Unit = ""
)

// IsPercent reports whether values of u live on a 0-100 scale.
func (u Unit) IsPercent() bool {
	return u == UnitPercent
}

// FormatValue prints v in unit u.
func FormatValue(v float64, u Unit) string {
	switch u {
	case UnitPercent:
		return fmt.Sprintf("%.1f%%", v)
	case UnitBytes:
		return humanize.IBytes(uint64(nonNegative(v)))
	case UnitBytesPerSec:
		return humanize.IBytes(uint64(nonNegative(v))) + "/s"
	case UnitOpsPerSec, UnitPktsPerSec:
		return humanize.SIWithDigits(v, 1, string(u))
	case UnitMillis:
		return fmt.Sprintf("%.1fms", v)
	default:
		return humanize.Comma(int64(v))
	}
}

// FormatBytes prints a byte count in IEC units (e.g. "1.5 GiB").
func FormatBytes(b int64) string {
	return humanize.IBytes(uint64(nonNegative(float64(b))))
}

// FormatAge renders how long ago t was, e.g. "3 seconds ago".
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
