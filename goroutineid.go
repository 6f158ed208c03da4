package actorloop

import (
	"bytes"
	"runtime"
	"strconv"
)

// getGoroutineID extracts the calling goroutine's id by parsing the header
// line of runtime.Stack. It exists solely to back isLoopThread's
// assertion that Reset/Spawn are invoked from the loop's own worker
// goroutine; it is never used to drive scheduling decisions.
func getGoroutineID() int64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		buf = buf[:i]
	}
	id, _ := strconv.ParseInt(string(buf), 10, 64)
	return id
}
