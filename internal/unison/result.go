package unison

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Status classifies one finished job.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "failure"
}

// Result is the outcome of one unison invocation.
type Result struct {
	Label    string
	Status   Status
	ExitCode int
	Elapsed  time.Duration
}

// NewResult classifies exitCode: zero is success, anything else is failure.
func NewResult(label string, exitCode int, elapsed time.Duration) Result {
	status := StatusSuccess
	if exitCode != 0 {
		status = StatusFailure
	}
	return Result{Label: label, Status: status, ExitCode: exitCode, Elapsed: elapsed}
}

func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

func (r Result) String() string {
	return fmt.Sprintf("%s exited with returncode=%d", r.Label, r.ExitCode)
}

// FormatElapsed renders d as minutes with one decimal, e.g. `Elapsed time: 1,234.5 minutes`.
func FormatElapsed(d time.Duration) string {
	return "Elapsed time: " + humanize.FormatFloat("#,###.#", d.Minutes()) + " minutes"
}
