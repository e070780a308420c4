// Package metrics exposes gateway counters and pool health to Prometheus.
//
// Collectors live on a private registry so tests can create as many
// instances as they like. Mount Handler on /metrics.
package metrics
