package main

import (
	"os"

	"github.com/loykin/apiprobe/internal/common"
)

// ExitHandler provides a testable way to handle program termination
type ExitHandler interface {
	Exit(code int)
	LogFatalError(err error, msg string, keyvals ...any)
}

// DefaultExitHandler exits the process after logging.
type DefaultExitHandler struct {
	exit func(code int)
}

// NewDefaultExitHandler creates a new default exit handler
func NewDefaultExitHandler() *DefaultExitHandler {
	return &DefaultExitHandler{exit: os.Exit}
}

// Exit terminates the program with the given exit code
func (h *DefaultExitHandler) Exit(code int) {
	h.exit(code)
}

// LogFatalError logs a fatal error and exits with status 1. The logger is
// resolved at call time so it honors --log-level and --log-format.
func (h *DefaultExitHandler) LogFatalError(err error, msg string, keyvals ...any) {
	allKeyvals := append([]any{"error", err}, keyvals...)
	common.GetLogger().WithComponent("main").Error(msg, allKeyvals...)
	h.Exit(1)
}

// Global exit handler (can be replaced for testing)
var exitHandler ExitHandler = NewDefaultExitHandler()
