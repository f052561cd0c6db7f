package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// fakeScroller replays a fixed height sequence; the last height repeats once
// the sequence is exhausted.
type fakeScroller struct {
	heights []int64
	scrolls int
	reads   int
	err     error
}

func (f *fakeScroller) ScrollToBottom() error {
	if f.err != nil {
		return f.err
	}
	f.scrolls++
	return nil
}

func (f *fakeScroller) Height() (int64, error) {
	i := f.reads
	if i >= len(f.heights) {
		i = len(f.heights) - 1
	}
	f.reads++
	return f.heights[i], nil
}

func newScrollEngine() *Engine {
	return &Engine{limiter: engine.NewHumanLimiter(0, 0)}
}

func TestScrollHeightStabilization(t *testing.T) {
	engine.Init(engine.Config{})
	e := newScrollEngine()

	// Budget for 200 results is 10 attempts; the page stops growing after
	// the second scroll, so the loop must exit at the third.
	page := &fakeScroller{heights: []int64{100, 200, 200}}
	if err := e.scroll(context.Background(), page, 200); err != nil {
		t.Fatalf("scroll: %v", err)
	}
	if page.scrolls != 3 {
		t.Errorf("scrolled %d times, want exit at attempt 3 of 10", page.scrolls)
	}
}

func TestScrollBudget(t *testing.T) {
	engine.Init(engine.Config{})
	e := newScrollEngine()

	// Monotonically growing page: the attempt budget ceil(60/20) = 3 bounds
	// the loop.
	page := &fakeScroller{heights: []int64{100, 200, 300, 400, 500, 600}}
	if err := e.scroll(context.Background(), page, 60); err != nil {
		t.Fatalf("scroll: %v", err)
	}
	if page.scrolls != 3 {
		t.Errorf("scrolled %d times, want budget of 3", page.scrolls)
	}
}

func TestScrollDefaultTarget(t *testing.T) {
	engine.Init(engine.Config{})
	e := newScrollEngine()

	// target <= 0 falls back to one scroll's worth of results.
	page := &fakeScroller{heights: []int64{100, 200, 300}}
	if err := e.scroll(context.Background(), page, 0); err != nil {
		t.Fatalf("scroll: %v", err)
	}
	if page.scrolls != 1 {
		t.Errorf("scrolled %d times, want 1", page.scrolls)
	}
}

func TestScrollWallClockCeiling(t *testing.T) {
	engine.Init(engine.Config{ScrollCeiling: time.Nanosecond})
	defer engine.Init(engine.Config{})
	e := newScrollEngine()

	page := &fakeScroller{heights: []int64{100, 200, 300, 400, 500}}
	if err := e.scroll(context.Background(), page, 100); err != nil {
		t.Fatalf("scroll: %v", err)
	}
	if page.scrolls >= 5 {
		t.Errorf("scrolled %d times, ceiling did not bound the loop", page.scrolls)
	}
}

func TestNeedsWarmup(t *testing.T) {
	tests := []struct {
		name    string
		session *engine.Session
		want    bool
	}{
		{"no session", nil, true},
		{"empty cookie jar", &engine.Session{}, true},
		{"stored cookies", &engine.Session{Cookies: []engine.Cookie{{Name: "SID", Value: "x"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsWarmup(tt.session); got != tt.want {
				t.Errorf("needsWarmup = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScrollErrorPropagates(t *testing.T) {
	engine.Init(engine.Config{})
	e := newScrollEngine()

	wantErr := errors.New("tab gone")
	page := &fakeScroller{err: wantErr}
	if err := e.scroll(context.Background(), page, 40); !errors.Is(err, wantErr) {
		t.Errorf("scroll error = %v, want %v", err, wantErr)
	}
}
