// Package clock is the kernel's single source of wall time.
package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Millis returns the current time in milliseconds since the Unix epoch.
func Millis() uint64 { return uint64(NowFunc().UnixMilli()) }

// Since returns the milliseconds elapsed since the supplied millisecond stamp.
// A stamp in the future yields zero.
func Since(stampMs uint64) uint64 {
	now := Millis()
	if now < stampMs {
		return 0
	}
	return now - stampMs
}
