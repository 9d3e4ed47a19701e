//go:build linux

package tasklet

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// newEventFD creates a Linux eventfd usable as the FD for an
// IoWaitEvent request, grounded on eventloop/poller_linux.go's use of
// golang.org/x/sys/unix for its epoll instance.
func newEventFD() (int, error) {
	return unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
}

// waitEventFD blocks until fd (an eventfd) is posted to, then returns
// the accumulated counter value, clearing it per eventfd semantics.
func waitEventFD(fd int) IoResult {
	var pfds = []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(pfds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return IoResult{Err: err}
		}
		if n == 0 {
			continue
		}
		break
	}
	var buf [8]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil || n != 8 {
		return IoResult{Err: err}
	}
	return IoResult{Value: int64(binary.LittleEndian.Uint64(buf[:]))}
}

// pollFD checks fd for readability once, without blocking past the
// first readiness notification.
func pollFD(fd int) IoResult {
	pfds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	_, err := unix.Poll(pfds, -1)
	if err != nil {
		return IoResult{Err: err}
	}
	return IoResult{}
}
