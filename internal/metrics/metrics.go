package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"einnames/internal/cache"
	"einnames/internal/store"
)

var (
	recordsDesc = prometheus.NewDesc(
		"einnames_records",
		"Number of EIN records loaded",
		nil,
		nil,
	)
	editedDesc = prometheus.NewDesc(
		"einnames_edited_records",
		"Number of EIN records with an assigned representative name",
		nil,
		nil,
	)
	namesDesc = prometheus.NewDesc(
		"einnames_names_total",
		"Total name variants across all records",
		nil,
		nil,
	)
	pendingDesc = prometheus.NewDesc(
		"einnames_pending_mappings",
		"Cross-record name mappings whose target EIN is not loaded",
		nil,
		nil,
	)
	statusDesc = prometheus.NewDesc(
		"einnames_records_by_status",
		"Number of EIN records by completion status",
		[]string{"status"},
		nil,
	)
	cacheHitsDesc = prometheus.NewDesc(
		"einnames_cache_hits_total",
		"View cache hits",
		nil,
		nil,
	)
	cacheMissesDesc = prometheus.NewDesc(
		"einnames_cache_misses_total",
		"View cache misses",
		nil,
		nil,
	)
)

// StoreCollector is a custom Prometheus collector that reads store and cache
// statistics on each scrape.
type StoreCollector struct {
	store *store.Store
	cache *cache.ViewCache
}

// Describe sends the metric descriptors to the channel.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- recordsDesc
	ch <- editedDesc
	ch <- namesDesc
	ch <- pendingDesc
	ch <- statusDesc
	ch <- cacheHitsDesc
	ch <- cacheMissesDesc
}

// Collect reads store statistics and emits them as gauges.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.store.Stats()
	if err == nil {
		ch <- prometheus.MustNewConstMetric(recordsDesc, prometheus.GaugeValue, float64(stats.TotalRecords))
		ch <- prometheus.MustNewConstMetric(editedDesc, prometheus.GaugeValue, float64(stats.EditedRecords))
		ch <- prometheus.MustNewConstMetric(namesDesc, prometheus.GaugeValue, float64(stats.TotalNames))
		ch <- prometheus.MustNewConstMetric(pendingDesc, prometheus.GaugeValue, float64(stats.TotalMappings))
		ch <- prometheus.MustNewConstMetric(statusDesc, prometheus.GaugeValue, float64(stats.DoneCount), "done")
		ch <- prometheus.MustNewConstMetric(statusDesc, prometheus.GaugeValue, float64(stats.PartiallyDoneCount), "partially_done")
		ch <- prometheus.MustNewConstMetric(statusDesc, prometheus.GaugeValue, float64(stats.NotStartedCount), "not_started")
	}
	if c.cache != nil {
		ch <- prometheus.MustNewConstMetric(cacheHitsDesc, prometheus.CounterValue, float64(c.cache.Hits()))
		ch <- prometheus.MustNewConstMetric(cacheMissesDesc, prometheus.CounterValue, float64(c.cache.Misses()))
	}
}

var (
	savesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "einnames_saves_total",
		Help: "Record updates applied through the editor",
	})
	transfersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "einnames_name_transfers_total",
		Help: "Names transferred to another record",
	})
	persistFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "einnames_persist_failures_total",
		Help: "Snapshot writes that failed after an in-memory update",
	})
	suggestionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "einnames_suggestions_total",
		Help: "Name suggestion requests by outcome",
	}, []string{"outcome"})
)

var initOnce sync.Once

// Init registers the collectors. Must be called once at startup.
func Init(s *store.Store, vc *cache.ViewCache) {
	initOnce.Do(func() {
		prometheus.MustRegister(&StoreCollector{store: s, cache: vc})
		prometheus.MustRegister(savesTotal, transfersTotal, persistFailuresTotal, suggestionsTotal)
	})
}

// RecordSave counts an applied update and its transferred names.
func RecordSave(transferred int) {
	savesTotal.Inc()
	transfersTotal.Add(float64(transferred))
}

// RecordPersistFailure counts a snapshot write failure.
func RecordPersistFailure() {
	persistFailuresTotal.Inc()
}

// RecordSuggestion counts a suggestion request outcome ("ok", "invalid",
// "unconfigured", "upstream_error").
func RecordSuggestion(outcome string) {
	suggestionsTotal.WithLabelValues(outcome).Inc()
}
