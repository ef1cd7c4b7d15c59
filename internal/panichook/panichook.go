// Package panichook provides the boundary-dispatch panic containment: a
// wrapper that never lets a panic unwind across an externally-callable
// entry point, plus a global hook that records the last-entered function
// name and logs panic details to the zap.Logger installed by SetLogger.
package panichook

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var lastEntered atomic.Value // string

func init() {
	lastEntered.Store("")
}

// Enter records name as the last-entered boundary function, for the
// panic hook to report if name's body panics before returning.
func Enter(name string) {
	lastEntered.Store(name)
}

// LastEntered returns the most recently Enter-ed function name.
func LastEntered() string {
	return lastEntered.Load().(string)
}

var (
	logMu sync.Mutex
	log   = zap.NewNop()
)

// SetLogger installs the zap.Logger panic details are appended to. Safe
// to call concurrently with Guard.
func SetLogger(l *zap.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	log = l
}

// Guard runs name as an entry point label, invoking fn and recovering
// any panic: on panic, it logs the last-entered function name and panic
// value, then returns "<fallback>: <panic value>" as fn's result in place
// of a propagated panic. Boundary entry points call this so they never
// unwind into the caller.
func Guard(name string, fallback string, fn func() string) (result string) {
	Enter(name)
	defer func() {
		if r := recover(); r != nil {
			logMu.Lock()
			l := log
			logMu.Unlock()
			l.Error("panic recovered at boundary",
				zap.String("entry_point", LastEntered()),
				zap.Any("panic", r),
			)
			result = fmt.Sprintf("%s: %v", fallback, r)
		}
	}()
	return fn()
}
