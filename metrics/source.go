package metrics

import (
	"context"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// CPUIdentity describes the processor independent of its current load.
type CPUIdentity struct {
	Model        string
	Cores        int
	FrequencyMHz float64
}

// NetCounters holds cumulative interface byte counters summed across NICs.
type NetCounters struct {
	BytesSent uint64
	BytesRecv uint64
}

// Source is the OS metrics capability consumed by the Collector. The
// production implementation reads through gopsutil; tests substitute fakes.
type Source interface {
	// CPUPercents blocks for the given interval and returns one load
	// percentage per logical core.
	CPUPercents(ctx context.Context, interval time.Duration) ([]float64, error)
	CPUIdentity(ctx context.Context) (CPUIdentity, error)
	Memory(ctx context.Context) (MemoryStatus, error)
	Swap(ctx context.Context) (SwapStatus, error)
	Disks(ctx context.Context) ([]DiskStatus, error)
	NetCounters(ctx context.Context) (NetCounters, error)
	ProcessCount(ctx context.Context) (int, error)
	Host(ctx context.Context) (HostStatus, error)
}

// SystemSource reads live metrics from the operating system via gopsutil.
type SystemSource struct{}

// NewSystemSource returns a Source backed by the local OS.
func NewSystemSource() *SystemSource {
	return &SystemSource{}
}

// CPUPercents samples per-core load over the given blocking interval.
func (s *SystemSource) CPUPercents(ctx context.Context, interval time.Duration) ([]float64, error) {
	return cpu.PercentWithContext(ctx, interval, true)
}

// CPUIdentity reads the processor model, logical core count, and frequency.
func (s *SystemSource) CPUIdentity(ctx context.Context) (CPUIdentity, error) {
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return CPUIdentity{}, err
	}

	id := CPUIdentity{Cores: cores}

	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return id, err
	}
	if len(infos) > 0 {
		id.Model = infos[0].ModelName
		id.FrequencyMHz = infos[0].Mhz
	}
	return id, nil
}

// Memory reads physical memory usage.
func (s *SystemSource) Memory(ctx context.Context) (MemoryStatus, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryStatus{}, err
	}
	return MemoryStatus{
		TotalBytes:     vm.Total,
		UsedBytes:      vm.Used,
		AvailableBytes: vm.Available,
		Percent:        clampPercent(vm.UsedPercent),
	}, nil
}

// Swap reads swap usage.
func (s *SystemSource) Swap(ctx context.Context) (SwapStatus, error) {
	sw, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return SwapStatus{}, err
	}
	return SwapStatus{
		TotalBytes: sw.Total,
		UsedBytes:  sw.Used,
		Percent:    clampPercent(sw.UsedPercent),
	}, nil
}

// Disks reads usage for every physical mount, ordered by mount point.
func (s *SystemSource) Disks(ctx context.Context) ([]DiskStatus, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(parts))
	var disks []DiskStatus
	for _, p := range parts {
		if seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true

		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			// A single unreadable mount (stale NFS, permissions) should not
			// fail the whole sample.
			continue
		}
		if usage.Total == 0 {
			continue
		}
		disks = append(disks, DiskStatus{
			Mount:      p.Mountpoint,
			TotalBytes: usage.Total,
			UsedBytes:  usage.Used,
			Percent:    clampPercent(usage.UsedPercent),
		})
	}

	sort.Slice(disks, func(i, j int) bool { return disks[i].Mount < disks[j].Mount })
	return disks, nil
}

// NetCounters reads cumulative traffic counters summed across interfaces.
func (s *SystemSource) NetCounters(ctx context.Context) (NetCounters, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return NetCounters{}, err
	}

	var total NetCounters
	for _, c := range counters {
		total.BytesSent += c.BytesSent
		total.BytesRecv += c.BytesRecv
	}
	return total, nil
}

// ProcessCount returns the number of live processes.
func (s *SystemSource) ProcessCount(ctx context.Context) (int, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return len(pids), nil
}

// Host reads host identity and uptime.
func (s *SystemSource) Host(ctx context.Context) (HostStatus, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return HostStatus{}, err
	}
	return HostStatus{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		Arch:            info.KernelArch,
		UptimeSeconds:   info.Uptime,
	}, nil
}

// Compile-time interface compliance check.
var _ Source = (*SystemSource)(nil)
