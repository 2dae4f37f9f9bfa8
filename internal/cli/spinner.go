package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a status line on w until stopped or until its context
// ends. The message may change while it runs, and a done/total pair is
// appended once [spinner.Progress] has been called.
type spinner struct {
	w      io.Writer
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	message string
	width   int // widest line drawn, for clearing

	done, total atomic.Int64

	started  bool
	stopOnce sync.Once
	stopped  chan struct{}
}

// newSpinner creates a spinner that stops drawing when ctx is cancelled. A
// nil w discards output.
func newSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	if w == nil {
		w = io.Discard
	}
	ctx, cancel := context.WithCancel(ctx)
	return &spinner{
		w:       w,
		ctx:     ctx,
		cancel:  cancel,
		message: message,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation. It must be called at most once.
func (s *spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// SetMessage replaces the status text.
func (s *spinner) SetMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
}

// Progress records done of total units. It is safe for concurrent use, so it
// can be handed to the adjacency builder directly.
func (s *spinner) Progress(done, total int) {
	s.total.Store(int64(total))
	s.done.Store(int64(done))
}

// line returns the current status text.
func (s *spinner) line() string {
	s.mu.Lock()
	msg := s.message
	s.mu.Unlock()
	if total := s.total.Load(); total > 0 {
		return fmt.Sprintf("%s %d/%d", msg, s.done.Load(), total)
	}
	return msg
}

func (s *spinner) draw(frame string) {
	text := s.line()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(text)+2)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
}

// Stop ends the animation and clears the line. It is idempotent and safe to
// call on a spinner that was never started.
func (s *spinner) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// Cancelled reports whether the spinner's context has ended.
func (s *spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
