package hwio

import (
	"runtime"
	"syscall"
	"unsafe"
)

// Realtime locks the calling goroutine to its own kernel thread and
// elevates that thread to the round-robin realtime scheduling class. This
// is a best-effort stand-in for spec.md section 5's hard real-time timer
// ISR deadline: the soft-UART ticker goroutine calls this once at start-up
// so the Linux scheduler preempts it promptly instead of letting it queue
// behind unrelated goroutines at the 8x-baud tick rate.
//
// Adapted from tve-devices/thread/thread.go.
func Realtime() error {
	runtime.LockOSThread()
	tid := syscall.Gettid()
	res, _, err := syscall.RawSyscall(syscall.SYS_SCHED_SETSCHEDULER, uintptr(tid),
		uintptr(schedRR), uintptr(unsafe.Pointer(&schedParam{priority: 10})))
	if res == 0 {
		return nil
	}
	return err
}

const (
	schedFIFO = 1
	schedRR   = 2
)

type schedParam struct {
	priority int
}
