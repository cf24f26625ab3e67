// Package monitor provides driven.ActivityMonitor implementations.
//
// LoggingMonitor writes events through the logger, MetricsMonitor records
// Prometheus metrics and EventMonitor publishes events to NATS. Multi fans
// events out to several monitors.
package monitor
