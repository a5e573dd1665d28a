package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/status-pulse/config"
)

// errNoCores is returned when the OS reports an empty per-core sample set.
var errNoCores = errors.New("no per-core samples returned")

// defaultSampleInterval is the blocking window for per-core CPU sampling.
// Instantaneous reads report zero on most platforms, so a non-zero window is
// required for a meaningful load figure. This cost is exactly what the
// artifact cache amortizes.
const defaultSampleInterval = 500 * time.Millisecond

// Collector samples host metrics through a Source and composes Snapshots.
// It retains the previous network counters so transfer rates can be derived
// from two time-separated readings. Safe for concurrent use.
type Collector struct {
	source   Source
	logger   *slog.Logger
	interval time.Duration

	// timeNow is wrapped for testing.
	timeNow func() time.Time

	mu      sync.Mutex
	prevNet *netSample
}

// netSample is one network counter reading with its timestamp.
type netSample struct {
	counters NetCounters
	at       time.Time
}

// NewCollector creates a Collector reading from the given source.
// If logger is nil, a no-op logger is used.
func NewCollector(source Source, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Collector{
		source:   source,
		logger:   logger,
		interval: defaultSampleInterval,
		timeNow:  time.Now,
	}
}

// SetSampleInterval overrides the blocking CPU sampling window. Intended for
// tests; intervals below 100ms produce noisy readings on real hosts.
func (c *Collector) SetSampleInterval(d time.Duration) {
	c.interval = d
}

// Sample collects one Snapshot. CPU, memory, and disk are always sampled;
// network and process count only when the options request them. A failure of
// the mandatory probes returns a *CollectionError; optional identity fields
// (model name, frequency, swap) degrade to zero values with a logged warning.
func (c *Collector) Sample(ctx context.Context, opts config.RenderOptions) (*Snapshot, error) {
	select {
	case <-ctx.Done():
		return nil, &CollectionError{Op: "sample", Err: ctx.Err()}
	default:
	}

	perCore, err := c.source.CPUPercents(ctx, c.interval)
	if err != nil {
		return nil, &CollectionError{Op: "sample cpu", Err: err}
	}
	if len(perCore) == 0 {
		return nil, &CollectionError{Op: "sample cpu", Err: errNoCores}
	}

	cpuStatus := CPUStatus{
		PerCore: make([]float64, len(perCore)),
		Cores:   len(perCore),
		Model:   "unknown",
	}
	var sum float64
	for i, v := range perCore {
		v = clampPercent(v)
		cpuStatus.PerCore[i] = v
		sum += v
	}
	cpuStatus.OverallPercent = clampPercent(sum / float64(len(perCore)))

	if id, err := c.source.CPUIdentity(ctx); err != nil {
		c.logger.Warn("cpu identity unavailable", slog.String("error", err.Error()))
	} else {
		if id.Model != "" {
			cpuStatus.Model = id.Model
		}
		cpuStatus.FrequencyMHz = id.FrequencyMHz
		if id.Cores != len(perCore) && id.Cores > 0 {
			// The per-core sample is authoritative; Cores must match it.
			c.logger.Warn("core count mismatch",
				slog.Int("reported", id.Cores),
				slog.Int("sampled", len(perCore)),
			)
		}
	}

	memory, err := c.source.Memory(ctx)
	if err != nil {
		return nil, &CollectionError{Op: "sample memory", Err: err}
	}

	swap, err := c.source.Swap(ctx)
	if err != nil {
		c.logger.Warn("swap unavailable", slog.String("error", err.Error()))
		swap = SwapStatus{}
	}

	disks, err := c.source.Disks(ctx)
	if err != nil {
		return nil, &CollectionError{Op: "sample disk", Err: err}
	}

	snap := &Snapshot{
		Timestamp: c.timeNow(),
		CPU:       cpuStatus,
		Memory:    memory,
		Swap:      swap,
		Disk:      disks,
	}

	if opts.ShowNetwork {
		snap.Network = c.sampleNetwork(ctx)
	}

	if opts.ShowProcessCount {
		count, err := c.source.ProcessCount(ctx)
		if err != nil {
			c.logger.Warn("process count unavailable", slog.String("error", err.Error()))
		} else {
			snap.ProcessCount = &count
		}
	}

	hostStatus, err := c.source.Host(ctx)
	if err != nil {
		c.logger.Warn("host info unavailable", slog.String("error", err.Error()))
		hostStatus = HostStatus{Hostname: "unknown", OS: "unknown"}
	}
	snap.Host = hostStatus

	c.logger.Debug("snapshot collected",
		slog.Float64("cpu", snap.CPU.OverallPercent),
		slog.Float64("memory", snap.Memory.Percent),
		slog.Int("disks", len(snap.Disk)),
		slog.Bool("network", snap.Network != nil),
	)

	return snap, nil
}

// sampleNetwork reads the counters and derives rates against the previous
// reading. The first reading since process start yields zero rates.
func (c *Collector) sampleNetwork(ctx context.Context) *NetworkStatus {
	counters, err := c.source.NetCounters(ctx)
	if err != nil {
		c.logger.Warn("network counters unavailable", slog.String("error", err.Error()))
		return &NetworkStatus{}
	}

	now := c.timeNow()
	status := &NetworkStatus{
		BytesSent: counters.BytesSent,
		BytesRecv: counters.BytesRecv,
	}

	c.mu.Lock()
	prev := c.prevNet
	c.prevNet = &netSample{counters: counters, at: now}
	c.mu.Unlock()

	if prev == nil {
		return status
	}

	elapsed := now.Sub(prev.at).Seconds()
	if elapsed <= 0 {
		return status
	}
	if counters.BytesSent >= prev.counters.BytesSent {
		status.SendRate = float64(counters.BytesSent-prev.counters.BytesSent) / elapsed
	}
	if counters.BytesRecv >= prev.counters.BytesRecv {
		status.RecvRate = float64(counters.BytesRecv-prev.counters.BytesRecv) / elapsed
	}
	return status
}
