package stats

import (
	"bufio"
	"context"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	BYTE = 1 << (10 * iota)
	KILOBYTE
	MEGABYTE
	GIGABYTE
	TERABYTE

	namespace = "addressd"
)

var (
	derivations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derivations_total",
			Help:      "Number of address derivations by address type and outcome.",
		},
		[]string{"type", "outcome"},
	)
	derivationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "derivation_duration_seconds",
			Help:      "Time spent deriving an address, by address type.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(derivations, derivationDuration)
}

// ObserveDerivation records the outcome and duration of the derivation of an
// address of the given type.
func ObserveDerivation(addressType string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	derivations.WithLabelValues(addressType, outcome).Inc()
	derivationDuration.WithLabelValues(addressType).Observe(
		time.Since(start).Seconds(),
	)
}

// EnableMemoryStatistics periodically prints memory usage of the go process
// until ctx is done. Prometheus metrics are then dumped into statsFile.
func EnableMemoryStatistics(
	ctx context.Context, interval time.Duration, statsFile string,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			PrintMemoryStatistics()
			PrintNumOfRoutines()
		case <-ctx.Done():
			if err := DumpPrometheusDefaults(statsFile); err != nil {
				log.WithError(err).Warn("failed to dump prometheus metrics")
			}
			return
		}
	}
}

// toGigabytes returns given memory in bytes to gigabytes.
func toGigabytes(bytes uint64) float64 {
	return float64(bytes) / GIGABYTE
}

// PrintMemoryStatistics prints memory statistics using go runtime library.
func PrintMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.Infof(
		"Total allocated: %.3fGB, Heap allocated: %.3fGB, "+
			"Allocated objects count: %v, Freed objects count: %v",
		toGigabytes(memStats.TotalAlloc),
		toGigabytes(memStats.HeapAlloc),
		memStats.Mallocs,
		memStats.Frees,
	)
}

// DumpPrometheusDefaults appends the metrics of the default prometheus
// registry to the given file
func DumpPrometheusDefaults(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	metricFamily, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(file)
	for _, v := range metricFamily {
		if _, err := writer.WriteString(v.String() + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// PrintNumOfRoutines prints number of go routines currently running
func PrintNumOfRoutines() {
	log.Infof("Num of go routines: %v", runtime.NumGoroutine())
}
