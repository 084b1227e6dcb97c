// Package tracing wraps OpenTelemetry so kernel services can open spans
// around dispatches and syscalls without importing the SDK themselves.
// Until Init is called every span is a no-op.
package tracing
