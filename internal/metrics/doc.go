// Package metrics records probe outcomes as Prometheus gauges and writes
// them in the node_exporter textfile collector format.
package metrics
