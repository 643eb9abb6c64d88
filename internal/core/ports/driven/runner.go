package driven

import "context"

// CommandRunner executes external commands and returns their output.
// Used by the crawler's PDF path to run pdftotext; mockable in tests.
type CommandRunner interface {
	// Run executes the named command with the given arguments and
	// returns its combined standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
