// Package debug prints verbose tracing when debug mode is switched on.
package debug

import (
	"fmt"
	"log"
	"os"
	"path"
	"runtime"
	"strings"
	"sync/atomic"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("DEBUG") == "debug")
}

// Enable switches debug output on or off.
func Enable(on bool) {
	enabled.Store(on)
}

// Enabled reports whether debug output is on.
func Enabled() bool {
	return enabled.Load()
}

// Debugf logs a formatted line prefixed with the calling file when debug mode is on.
func Debugf(format string, v ...any) {
	if !enabled.Load() {
		return
	}
	log.Printf("DEBUG(%s): %s", caller(), fmt.Sprintf(format, v...))
}

func caller() string {
	_, filename, _, _ := runtime.Caller(2)
	return strings.Split(path.Base(filename), ".")[0]
}
