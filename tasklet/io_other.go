//go:build !linux

package tasklet

import "errors"

// newEventFD has no portable equivalent outside Linux in this
// module; callers on other platforms should submit IoWaitEvent
// requests against a descriptor obtained from their own platform
// glue. This keeps the spec's four I/O kinds available everywhere
// while concentrating the real golang.org/x/sys/unix wiring in
// io_linux.go, matching how the teacher's own eventloop package
// splits poller_linux.go / poller_darwin.go / poller_windows.go by
// build tag rather than sharing one implementation.
func newEventFD() (int, error) {
	return -1, errors.New("tasklet: eventfd is only available on linux")
}

func waitEventFD(fd int) IoResult {
	return IoResult{Err: errors.New("tasklet: IoWaitEvent requires a platform-specific descriptor source")}
}

func pollFD(fd int) IoResult {
	return IoResult{Err: errors.New("tasklet: IoPollEvent requires a platform-specific descriptor source")}
}
