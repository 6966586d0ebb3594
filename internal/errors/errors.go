package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/soulsync/internal/logger"
)

// userFacing is implemented by domain errors that carry their own
// explanation for the person at the keyboard.
type userFacing interface {
	UserMessage() string
}

// Format formats an error message with a consistent "Error: " prefix.
// Domain errors anywhere in the chain contribute their user message.
func Format(err error) string {
	if err == nil {
		return ""
	}
	var uf userFacing
	if stderrors.As(err, &uf) {
		return "Error: " + uf.UserMessage()
	}
	return fmt.Sprintf("Error: %v", err)
}

func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits with code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
