package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "job_matcher_match_requests_total",
		Help: "Number of CV match requests handled.",
	})

	MatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "job_matcher_match_duration_seconds",
		Help:    "End-to-end duration of the match pipeline.",
		Buckets: prometheus.DefBuckets,
	})

	RescoreFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "job_matcher_rescore_fallbacks_total",
		Help: "Match requests served with the raw vector ranking because LLM rescoring failed.",
	})

	ChatRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "job_matcher_chat_requests_total",
		Help: "Number of advisor chat requests handled.",
	})

	JobsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "job_matcher_jobs_ingested_total",
		Help: "Job postings successfully upserted into the store.",
	})
)
