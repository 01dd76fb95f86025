// Package telemetry provides structured logging and trace export for
// dockstrap. Logging is always on; tracing is opt-in and records one span
// per bootstrap stage so a slow or failing install can be inspected after
// the fact.
package telemetry
