package dashboard

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/cephdash/internal/logger"
	"github.com/rileyhilliard/cephdash/internal/vent"
)

// Widget transitions run for animFrames ticks of animInterval.
const (
	animFrames   = 4
	animInterval = 60 * time.Millisecond
)

// animMsg advances widget transitions by one frame.
type animMsg time.Time

func animCmd() tea.Cmd {
	return tea.Tick(animInterval, func(t time.Time) tea.Msg {
		return animMsg(t)
	})
}

// transition is one in-flight widget animation. apply runs on the last
// frame, then the continuation is invoked.
type transition struct {
	name   string
	frame  int
	shrink bool
	apply  func()
	done   *vent.Continuation
}

// animator runs at most one transition at a time. Starting a new one
// completes the current one first.
type animator struct {
	cur *transition
	log logger.Logger
}

func (a *animator) start(name string, shrink bool, done *vent.Continuation, apply func()) {
	a.finish()
	a.cur = &transition{name: name, shrink: shrink, apply: apply, done: done}
}

func (a *animator) step() {
	if a.cur == nil {
		return
	}
	a.cur.frame++
	if a.cur.frame >= animFrames {
		a.finish()
	}
}

func (a *animator) finish() {
	t := a.cur
	if t == nil {
		return
	}
	a.cur = nil
	t.apply()
	if err := t.done.Invoke(); err != nil {
		a.log.Warn("%s: %v", t.name, err)
	}
}

func (a *animator) active() bool {
	return a.cur != nil
}

// visible returns the share of content lines to draw this frame.
func (a *animator) visible() float64 {
	if a.cur == nil {
		return 1
	}
	p := float64(a.cur.frame) / animFrames
	if a.cur.shrink {
		return 1 - p
	}
	return p
}

// clip keeps the leading share of s's lines, at least one.
func clip(s string, share float64) string {
	if share >= 1 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	keep := max(1, int(float64(len(lines))*share))
	return strings.Join(lines[:keep], "\n")
}
