// Package metrics exposes the fusion engine and per-module acquisition
// counters as a Prometheus custom Collector, grounded on
// runZeroInc-sockstats/pkg/exporter's Describe/Collect pattern.
package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rmingon/EchoGuard-8/internal/fusion"
	"github.com/rmingon/EchoGuard-8/internal/modulestate"
)

// Source supplies the data points Collect reads on every scrape. The
// fusion/modulestate goroutines own the underlying state; Collect never
// blocks on it for longer than building these two value copies takes.
type Source interface {
	FusionSnapshot() fusion.Result
	ModuleSnapshot() [8]modulestate.State
	FaultScore(idx int) int
}

// Collector implements prometheus.Collector over a Source.
type Collector struct {
	mu     sync.Mutex
	source Source

	fusionStatus      *prometheus.Desc
	fusionUsed        *prometheus.Desc
	fusionRejected    *prometheus.Desc
	fusionMaxResidual *prometheus.Desc
	fusionAvgHDOP     *prometheus.Desc
	moduleFaultScore  *prometheus.Desc
	moduleHasFix      *prometheus.Desc
	moduleSentences   *prometheus.Desc
	moduleChecksumErr *prometheus.Desc
}

// NewCollector builds a Collector reading from source on every scrape.
func NewCollector(source Source) *Collector {
	return &Collector{
		source: source,
		fusionStatus: prometheus.NewDesc(
			"echoguard_fusion_status", "Fused status: 0=NO_FIX 1=OK 2=DEGRADED 3=INTERFERENCE", nil, nil),
		fusionUsed: prometheus.NewDesc(
			"echoguard_fusion_used_modules", "Number of modules used in the latest fusion cycle", nil, nil),
		fusionRejected: prometheus.NewDesc(
			"echoguard_fusion_rejected_modules", "Number of modules rejected in the latest fusion cycle", nil, nil),
		fusionMaxResidual: prometheus.NewDesc(
			"echoguard_fusion_max_residual_cm", "Largest residual among used modules, in centimetres", nil, nil),
		fusionAvgHDOP: prometheus.NewDesc(
			"echoguard_fusion_avg_hdop_centi", "Average HDOP of used modules, x100", nil, nil),
		moduleFaultScore: prometheus.NewDesc(
			"echoguard_module_fault_score", "Per-module fault score, 0-500", []string{"module"}, nil),
		moduleHasFix: prometheus.NewDesc(
			"echoguard_module_has_fix", "1 if the module currently reports a fix", []string{"module"}, nil),
		moduleSentences: prometheus.NewDesc(
			"echoguard_module_nmea_sentences_total", "NMEA sentences ingested per module", []string{"module"}, nil),
		moduleChecksumErr: prometheus.NewDesc(
			"echoguard_module_nmea_checksum_errors_total", "NMEA checksum failures per module", []string{"module"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- c.fusionStatus
	descs <- c.fusionUsed
	descs <- c.fusionRejected
	descs <- c.fusionMaxResidual
	descs <- c.fusionAvgHDOP
	descs <- c.moduleFaultScore
	descs <- c.moduleHasFix
	descs <- c.moduleSentences
	descs <- c.moduleChecksumErr
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(metrics chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := c.source.FusionSnapshot()
	metrics <- prometheus.MustNewConstMetric(c.fusionStatus, prometheus.GaugeValue, float64(result.Status))
	metrics <- prometheus.MustNewConstMetric(c.fusionUsed, prometheus.GaugeValue, float64(result.UsedModules))
	metrics <- prometheus.MustNewConstMetric(c.fusionRejected, prometheus.GaugeValue, float64(result.RejectedModules))
	metrics <- prometheus.MustNewConstMetric(c.fusionMaxResidual, prometheus.GaugeValue, float64(result.MaxResidualCm))
	metrics <- prometheus.MustNewConstMetric(c.fusionAvgHDOP, prometheus.GaugeValue, float64(result.AvgHDOPCenti))

	modules := c.source.ModuleSnapshot()
	for i, m := range modules {
		idx := i + 1
		label := moduleLabel(idx)
		metrics <- prometheus.MustNewConstMetric(c.moduleFaultScore, prometheus.GaugeValue, float64(c.source.FaultScore(idx)), label)
		hasFix := 0.0
		if m.HasFix {
			hasFix = 1.0
		}
		metrics <- prometheus.MustNewConstMetric(c.moduleHasFix, prometheus.GaugeValue, hasFix, label)
		metrics <- prometheus.MustNewConstMetric(c.moduleSentences, prometheus.CounterValue, float64(m.NMEASentences), label)
		metrics <- prometheus.MustNewConstMetric(c.moduleChecksumErr, prometheus.CounterValue, float64(m.NMEAChecksumErrors), label)
	}
}

func moduleLabel(idx int) string {
	return "module-" + strconv.Itoa(idx)
}
