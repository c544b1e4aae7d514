// Package metrics defines the sinks that record scheduling activity. Sinks
// like PromSink and InfluxSink live in infra/metrics and can be combined
// with NewMultiSink. NewSink returns a MultiSink automatically when several
// sinks are configured.
package metrics
