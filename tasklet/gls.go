package tasklet

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// taskletByGoroutine maps a running goroutine's runtime ID to the
// *Tasklet currently executing on it. The scheduler's teacher package
// (joeycumines/goroutineid) was retrieved with an empty source tree
// (go.mod only, no importable code), so there is nothing in the pack
// to ground a goroutine-ID helper on; this ~15-line parse of
// runtime.Stack's header line is the standard minimal substitute and
// is small enough that reaching for an unlisted external dependency
// for it would be disproportionate. See DESIGN.md.
var taskletByGoroutine sync.Map // map[uint64]*Tasklet

func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		if id, err := strconv.ParseUint(string(b[:i]), 10, 64); err == nil {
			return id
		}
	}
	return 0
}

// currentTasklet returns the Tasklet bound to the calling goroutine,
// or nil if none is bound (i.e. the caller is not running inside a
// scheduled tasklet).
func currentTasklet() *Tasklet {
	v, ok := taskletByGoroutine.Load(goroutineID())
	if !ok {
		return nil
	}
	return v.(*Tasklet)
}

func bindCurrentTasklet(t *Tasklet) { taskletByGoroutine.Store(goroutineID(), t) }

func unbindCurrentTasklet() { taskletByGoroutine.Delete(goroutineID()) }
