// Package metrics exposes Prometheus instruments for runs, deliveries and
// HTTP traffic on a private registry served at /metrics by mashupd.
package metrics
