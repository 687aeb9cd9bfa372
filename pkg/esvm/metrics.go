package esvm

import "github.com/prometheus/client_golang/prometheus"

// The small set of process gauges/counters a host scrapes to watch a VM:
// scripts run, microtasks drained, generators live, uncaught throws.
// Registered once per process on prometheus.DefaultRegisterer, the
// zero-config default.
var (
	scriptsRun = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "esvm_scripts_run_total",
		Help: "Total number of evaluateScript invocations.",
	})
	microtasksDrained = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "esvm_microtasks_drained_total",
		Help: "Total number of microtask-queue jobs run across all drains.",
	})
	generatorsLive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "esvm_generators_live",
		Help: "Number of generator/async-function coroutines currently suspended.",
	})
	uncaughtThrows = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "esvm_uncaught_throws_total",
		Help: "Total number of scripts that completed with an uncaught throw.",
	})
)

func init() {
	prometheus.MustRegister(scriptsRun, microtasksDrained, generatorsLive, uncaughtThrows)
}
