package preflight

import (
	"context"
	"sync"
	"time"
)

// Display is the operator-facing message sink. Nothing it returns feeds back
// into negotiation.
type Display interface {
	Markdown(text string)
}

// DisplayFunc adapts a plain function to Display.
type DisplayFunc func(text string)

func (f DisplayFunc) Markdown(text string) {
	if f != nil {
		f(text)
	}
}

// PauseFunc holds the UI still for roughly d. Pauses are pacing only.
type PauseFunc func(ctx context.Context, d time.Duration)

// SleepPause waits for d or until ctx is done.
func SleepPause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// NoPause skips pacing entirely.
func NoPause(context.Context, time.Duration) {}

const welcomePause = 1500 * time.Millisecond

// WelcomeGate shows the introductory banner at most once over its lifetime.
// Construct one per process and share it with every negotiator.
type WelcomeGate struct {
	mu      sync.Mutex
	shown   bool
	display Display
	pause   PauseFunc
}

// NewWelcomeGate returns a gate that has not been shown yet.
func NewWelcomeGate(display Display, pause PauseFunc) *WelcomeGate {
	if display == nil {
		display = DisplayFunc(func(string) {})
	}
	if pause == nil {
		pause = SleepPause
	}
	return &WelcomeGate{display: display, pause: pause}
}

// ShowOnce displays the banner on the first call and does nothing afterwards.
func (g *WelcomeGate) ShowOnce(ctx context.Context) {
	g.mu.Lock()
	if g.shown {
		g.mu.Unlock()
		return
	}
	g.shown = true
	g.mu.Unlock()

	g.display.Markdown(welcomeMessage)
	g.pause(ctx, welcomePause)
}

// Shown reports whether the banner has been displayed.
func (g *WelcomeGate) Shown() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shown
}
