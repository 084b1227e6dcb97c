// Package progress keeps aggregated dispatch counters for a running kernel.
// The processor and syscall layer report increments through Delta; observers
// read a Snapshot or register an OnChange callback.
package progress
