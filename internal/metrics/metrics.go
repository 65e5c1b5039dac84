package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counts section parsers that stopped early, by section.
var SectionDegraded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "aion2_section_degraded_total",
	Help: "Total number of section parses that returned partial data",
}, []string{"section"})

// Counts records replaced by the minimal fallback record.
var FallbackRecords = promauto.NewCounter(prometheus.CounterOpts{
	Name: "aion2_fallback_records_total",
	Help: "Total number of character records built from caller identity only",
})

// Single character fetches by outcome (ok, error).
var (
	CharacterFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aion2_character_fetches_total",
		Help: "Total number of single character fetches",
	}, []string{"outcome"})

	CharacterFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aion2_character_fetch_duration_seconds",
		Help:    "Time taken by one character fetch including browser startup",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s to ~64s
	})
)

// Ranking batch metrics
var (
	RankingTargetsCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aion2_ranking_targets_collected_total",
		Help: "Total number of ranking targets read from leaderboards",
	})

	BatchTargetsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aion2_batch_targets_dropped_total",
		Help: "Total number of ranking targets whose detail fetch failed",
	})
)

// Lookup cache metrics
var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aion2_record_cache_hits_total",
		Help: "Total number of lookups served from the record cache",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aion2_record_cache_misses_total",
		Help: "Total number of lookups that required a scrape",
	})

	StoreFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aion2_record_store_failures_total",
		Help: "Total number of records that could not be persisted",
	})
)
