package ports

import (
	"fmt"
	"strings"
)

// ProbeError means the source file could not be read or understood by the prober.
type ProbeError struct {
	Path   string
	Output string
	Err    error
}

func (e *ProbeError) Error() string {
	return formatToolError("probe "+e.Path, e.Err, e.Output)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// TranscodeError carries the diagnostic output of a failed transcoder run.
type TranscodeError struct {
	Op     string
	Output string
	Err    error
}

func (e *TranscodeError) Error() string {
	return formatToolError(e.Op, e.Err, e.Output)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

func formatToolError(op string, err error, output string) string {
	out := strings.TrimSpace(output)
	if out == "" {
		return fmt.Sprintf("%s: %v", op, err)
	}
	return fmt.Sprintf("%s: %v\n%s", op, err, tail(out, 2000))
}

// tail keeps the end of long tool output, where ffmpeg prints the actual failure.
func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
