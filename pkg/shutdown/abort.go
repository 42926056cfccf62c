package shutdown

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"tinyhttpd/pkg/state/logger"
)

var (
	osExit = os.Exit
	// exit is replaced in tests.
	exit = osExit
)

// Abort reports a fatal startup error and exits with status 2 after the
// optional delay in seconds.
func Abort(contextMsg string, err error, delaySeconds ...int) {
	delay := 0
	if len(delaySeconds) > 0 && delaySeconds[0] > 0 {
		delay = delaySeconds[0]
	}
	logger.Error("startup_fatal", "msg", contextMsg, "error", err)
	fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", contextMsg, err)

	buf := make([]byte, 64<<10)
	n := runtime.Stack(buf, true)
	logger.Debug("goroutine_stack_dump", "dump", string(buf[:n]))

	for i := delay; i > 0; i-- {
		logger.Info("exiting_in_seconds", "seconds", i)
		time.Sleep(time.Second)
	}
	logger.Sync()
	exit(2)
}
