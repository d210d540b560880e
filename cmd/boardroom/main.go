package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/boardroom-ai/boardroom/internal/council"
)

// Exit codes for different failure modes
const (
	ExitSuccess            = 0 // Deliberation completed
	ExitDeliberationFailed = 1 // The board could not produce an answer
	ExitError              = 2 // Configuration or runtime error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var delibErr *council.DeliberationError
		if errors.As(err, &delibErr) {
			os.Exit(ExitDeliberationFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
