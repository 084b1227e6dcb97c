// Package processor runs the single-core dispatch loop. The loop owns an
// idle context; every suspension point of a thread switches back to it and
// the loop resumes the next thread chosen by the scheduler.
package processor
