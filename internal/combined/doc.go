// Package combined provides benchmarks that exercise the relay building
// blocks together: signal checks, bus traffic and event tracing.
//
// These are more representative than the per-package benchmarks because
// they capture what one producer iteration actually costs.
package combined
