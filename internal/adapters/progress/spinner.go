package progress

import (
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows activity while the CLI waits on the backend
type Spinner struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	out     io.Writer
	enabled bool
}

// NewSpinner creates a spinner writing to out. A disabled spinner never writes.
func NewSpinner(out io.Writer, enabled bool) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false
	return &Spinner{spinner: s, out: out, enabled: enabled}
}

// Start shows the spinner with message as suffix
func (s *Spinner) Start(message string) {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spinner.Suffix = " " + message
	if !s.spinner.Active() {
		s.spinner.Start()
	}
}

// Stop hides the spinner
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spinner.Active() {
		s.spinner.Stop()
	}
}
