package observability

import (
	"fmt"
	"runtime/debug"
)

// RecoverPanic recovers from a panic and logs it with structured logging.
// It must be called directly in a defer statement.
//
// onPanic, when non-nil, runs after logging and receives the recovered value.
// HTTP middleware uses it to write a 500 response. The panic is not re-raised.
func RecoverPanic(logger *Logger, context string, onPanic func(recovered interface{})) {
	if r := recover(); r != nil {
		logger.WithField("panic", fmt.Sprint(r)).
			WithField("stack", string(debug.Stack())).
			WithField("context", context).
			Error("PANIC recovered")
		if onPanic != nil {
			onPanic(r)
		}
	}
}
