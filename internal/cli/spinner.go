package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner draws an animated status line on stderr while a slow step runs.
// Nothing is drawn unless stderr is a terminal.
type spinner struct {
	out   io.Writer
	quiet bool

	mu      sync.Mutex
	message string
	width   int // widest line drawn so far

	stopping    bool
	interrupted bool

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	exited   chan struct{}
}

// startSpinner starts a spinner that runs until Stop is called or ctx ends.
func startSpinner(ctx context.Context, message string) *spinner {
	return runSpinner(ctx, os.Stderr, !isTerminal(os.Stderr), message)
}

func runSpinner(ctx context.Context, out io.Writer, quiet bool, message string) *spinner {
	s := &spinner{out: out, quiet: quiet, message: message, exited: make(chan struct{})}
	s.ctx, s.cancel = context.WithCancel(ctx)
	go s.loop()
	return s
}

func (s *spinner) loop() {
	defer close(s.exited)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			s.mu.Lock()
			s.interrupted = !s.stopping
			s.mu.Unlock()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quiet {
		return
	}
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	s.width = max(s.width, len(s.message)+2)
	fmt.Fprintf(s.out, "\r%s", line)
}

// Update replaces the message drawn next to the spinner.
func (s *spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop ends the animation and erases the line. It is safe to call more
// than once.
func (s *spinner) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopping = true
		s.mu.Unlock()
		s.cancel()
		<-s.exited
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.quiet && s.width > 0 {
			fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// Fail stops the spinner and reports message as an error.
func (s *spinner) Fail(message string) {
	s.Stop()
	printError("%s", message)
}

// Interrupted reports whether the spinner ended because its context was
// cancelled rather than through Stop.
func (s *spinner) Interrupted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interrupted
}
