package util

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/emoji-mirror/pkg/errors"
)

// Mocked out for unit testing.
var exit = os.Exit

// HandleFatalError prints the error and exits. If the error has a friendly
// message, only that message is shown to the user, and the full error is
// logged at debug level.
func HandleFatalError(err error) {
	if msg, ok := errors.GetFriendlyMessage(err); ok {
		log.WithError(err).Debug("Fatal error")
		fmt.Fprintln(os.Stderr, msg)
	} else {
		log.WithError(err).Error("Fatal error")
	}
	exit(1)
}

// HandlePanic logs the panic and its stack trace before exiting. It should
// be deferred at the top of each goroutine.
func HandlePanic() {
	if r := recover(); r != nil {
		log.WithField("stack", string(debug.Stack())).Errorf("Unexpected panic: %v", r)
		exit(1)
	}
}

// SetupLogging enables debug logs if verbose is true.
func SetupLogging(verbose bool) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}
