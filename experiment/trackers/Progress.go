package trackers

import (
	"fmt"
	"io"
	"strings"
	"time"

	ts "github.com/samuelfneumann/soarm/timestep"
)

// Progress draws a progress bar of the number of steps taken in an
// experiment. The bar is redrawn on the same terminal line at every
// tracked timestep.
type Progress struct {
	out       io.Writer
	width     int
	steps     int
	maxSteps  int
	episodes  int
	startTime time.Time
	bar       strings.Builder
}

// NewProgress returns a new Progress Tracker which is full after
// maxSteps environmental steps and width characters wide
func NewProgress(out io.Writer, width, maxSteps int) *Progress {
	if maxSteps <= 0 {
		panic(fmt.Sprintf("newProgress: maxSteps must be positive, have %v",
			maxSteps))
	}
	return &Progress{
		out:       out,
		width:     width,
		maxSteps:  maxSteps,
		startTime: time.Now(),
	}
}

// Track counts the timestep and redraws the bar
func (p *Progress) Track(t ts.TimeStep) {
	if t.First() {
		p.episodes++
	} else if p.steps < p.maxSteps {
		p.steps++
	}
	fmt.Fprintf(p.out, "\r\033[K%v", p.String())
}

// String returns the current bar
func (p *Progress) String() string {
	p.bar.Reset()
	p.bar.WriteString("|")

	filled := p.steps * p.width / p.maxSteps
	p.bar.WriteString(strings.Repeat("█", filled))
	p.bar.WriteString(strings.Repeat(" ", p.width-filled))

	fmt.Fprintf(&p.bar, "| [%.2f%% | episodes: %v | elapsed: %v]",
		float64(p.steps)/float64(p.maxSteps)*100, p.episodes,
		time.Since(p.startTime).Truncate(time.Second))
	return p.bar.String()
}

// Save ends the line of the bar
func (p *Progress) Save() error {
	_, err := fmt.Fprintln(p.out)
	return err
}
