// system.go attaches process state to crash failures.

package report

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// Metadata keys written by WithSystemState.
const (
	MetaGoroutines = "sys.goroutines"
	MetaHeapAlloc  = "sys.heap_alloc_bytes"
	MetaUptimeMs   = "sys.uptime_ms"
	MetaHostname   = "sys.hostname"
)

// systemState returns the process state as failure metadata. Uptime is
// measured from started and clamped at zero.
func systemState(started time.Time) map[string]string {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	uptime := time.Since(started).Milliseconds()
	if uptime < 0 {
		uptime = 0
	}

	state := map[string]string{
		MetaGoroutines: strconv.Itoa(runtime.NumGoroutine()),
		MetaHeapAlloc:  strconv.FormatUint(mem.Alloc, 10),
		MetaUptimeMs:   strconv.FormatInt(uptime, 10),
	}
	if host, err := os.Hostname(); err == nil {
		state[MetaHostname] = host
	}
	return state
}
