package trackers

import (
	"github.com/edaniels/golog"
	ts "github.com/samuelfneumann/soarm/timestep"
)

// Log logs the reward of every timestep and the end of every episode.
// Log saves nothing.
type Log struct {
	logger golog.Logger
}

// NewLog returns a new Log Tracker
func NewLog(logger golog.Logger) *Log {
	return &Log{logger}
}

// Track logs the timestep
func (l *Log) Track(t ts.TimeStep) {
	if t.First() {
		l.logger.Infow("episode started")
		return
	}

	l.logger.Infow("step", "step", t.Number, "reward", t.Reward,
		"terminated", t.Terminated(), "truncated", t.Truncated())
	if t.Last() {
		l.logger.Infow("episode ended", "steps", t.Number, "end",
			t.EndType().String())
	}
}

// Save does nothing
func (l *Log) Save() error {
	return nil
}
