package sysinfo

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"syscall"
)

// Metrics represents host metrics for the system info endpoint
type Metrics struct {
	CPUCount        int     `json:"cpu_count"`
	MemoryTotalGB   float64 `json:"memory_total_gb"`
	MemoryUsedGB    float64 `json:"memory_used_gb"`
	MemoryFreeGB    float64 `json:"memory_free_gb"`
	DiskTotalGB     float64 `json:"disk_total_gb"`
	DiskUsedGB      float64 `json:"disk_used_gb"`
	DiskAvailableGB float64 `json:"disk_available_gb"`
	DiskUsedPercent float64 `json:"disk_used_percent"`
}

// GetMetrics returns host metrics. dataPath is the filesystem the service
// stores its database and content under.
func GetMetrics(dataPath string) (Metrics, error) {
	metrics := Metrics{
		CPUCount: runtime.NumCPU(),
	}

	// Get memory info
	if err := getMemoryInfo(&metrics); err != nil {
		return metrics, fmt.Errorf("failed to get memory info: %w", err)
	}

	// Get disk info for the data filesystem
	if err := getDiskInfo(dataPath, &metrics); err != nil {
		return metrics, fmt.Errorf("failed to get disk info: %w", err)
	}

	return metrics, nil
}

// getMemoryInfo reads memory information from /proc/meminfo
func getMemoryInfo(metrics *Metrics) error {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return fmt.Errorf("failed to open /proc/meminfo: %w", err)
	}
	defer file.Close()

	var memTotal, memAvailable float64
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			memTotal = value / (1024 * 1024) // KB to GB
		case strings.HasPrefix(line, "MemAvailable:"):
			memAvailable = value / (1024 * 1024) // KB to GB
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading /proc/meminfo: %w", err)
	}

	metrics.MemoryTotalGB = memTotal
	metrics.MemoryFreeGB = memAvailable
	metrics.MemoryUsedGB = memTotal - memAvailable

	return nil
}

// getDiskInfo retrieves filesystem usage for the given path
func getDiskInfo(path string, metrics *Metrics) error {
	if path == "" {
		path = "."
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return fmt.Errorf("failed to statfs %s: %w", path, err)
	}

	const gb = 1024 * 1024 * 1024
	blockSize := float64(stat.Bsize)

	metrics.DiskTotalGB = float64(stat.Blocks) * blockSize / gb
	metrics.DiskAvailableGB = float64(stat.Bavail) * blockSize / gb
	metrics.DiskUsedGB = metrics.DiskTotalGB - float64(stat.Bfree)*blockSize/gb
	if metrics.DiskTotalGB > 0 {
		metrics.DiskUsedPercent = (metrics.DiskUsedGB / metrics.DiskTotalGB) * 100
	}

	return nil
}
