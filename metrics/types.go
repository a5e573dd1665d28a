// Package metrics samples instantaneous host metrics and composes them into
// immutable snapshots for rendering.
package metrics

import (
	"fmt"
	"time"
)

// CPUStatus describes processor load and identity at sampling time.
type CPUStatus struct {
	// OverallPercent is the mean load across all logical cores, 0-100.
	OverallPercent float64
	// PerCore holds one load percentage per logical core. Its length always
	// equals Cores.
	PerCore []float64
	// Model is the processor model name, or "unknown" when unreadable.
	Model string
	// Cores is the logical core count.
	Cores int
	// FrequencyMHz is the reported clock frequency, 0 when unreadable.
	FrequencyMHz float64
}

// MemoryStatus describes physical memory usage.
type MemoryStatus struct {
	TotalBytes     uint64
	UsedBytes      uint64
	AvailableBytes uint64
	Percent        float64
}

// SwapStatus describes swap usage. Hosts without swap (containers, most
// notably) report all-zero values rather than an error.
type SwapStatus struct {
	TotalBytes uint64
	UsedBytes  uint64
	Percent    float64
}

// DiskStatus describes usage of a single mounted filesystem.
type DiskStatus struct {
	Mount      string
	TotalBytes uint64
	UsedBytes  uint64
	Percent    float64
}

// NetworkStatus describes cumulative traffic counters and the transfer rates
// observed between the two most recent samples. Rates are zero on the first
// sample after process start.
type NetworkStatus struct {
	BytesSent uint64
	BytesRecv uint64
	// SendRate and RecvRate are bytes per second.
	SendRate float64
	RecvRate float64
}

// HostStatus describes the host itself.
type HostStatus struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
	Arch            string
	UptimeSeconds   uint64
}

// Snapshot is one immutable point-in-time reading of system metrics.
// Network and ProcessCount are present only when the corresponding render
// option requested them.
type Snapshot struct {
	Timestamp    time.Time
	CPU          CPUStatus
	Memory       MemoryStatus
	Swap         SwapStatus
	Disk         []DiskStatus
	Network      *NetworkStatus
	ProcessCount *int
	Host         HostStatus
}

// CollectionError indicates the OS metrics layer was unavailable or refused
// access. It is terminal for the request; callers surface a degraded message
// instead of retrying.
type CollectionError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *CollectionError) Error() string {
	return fmt.Sprintf("metrics: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CollectionError) Unwrap() error {
	return e.Err
}

// clampPercent bounds a percentage to [0, 100].
func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
