// Package kcore is a teaching kernel core: a stride scheduler driving
// goroutine-backed threads, mutex, semaphore and condition variable
// primitives, and per-process Banker's-algorithm deadlock avoidance.
//
// Programs are plain Go functions receiving a syscall.Caller. They are
// registered by image name and launched as processes:
//
//	srv, _ := kcore.New(kcore.WithProgram("hello", hello, 0))
//	rt := srv.Runtime()
//	_ = rt.Start(ctx)
//	_, wait, _ := rt.StartProcess(ctx, "hello")
//	out, _ := wait(ctx, time.Second)
//
// Only one thread runs at a time. Every syscall returns a non-negative
// result or a negative code; -0xDEAD reports a request refused because
// granting it could deadlock.
package kcore
