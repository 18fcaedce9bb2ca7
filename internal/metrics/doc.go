// Package metrics exposes Prometheus counters for channel calls and alarm
// deliveries, plus a scrape-time gauge of pending alarms.
package metrics
