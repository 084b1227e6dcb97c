// Package task defines the schedulable unit of the kernel core: a Thread with
// its stride accounting, status and saved execution Context.
//
// A Context is a parked goroutine. Switching from one context to another
// resumes the target and parks the caller, so exactly one context on a
// processor makes progress at a time.
package task
