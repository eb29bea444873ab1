package trackers

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"
	"github.com/samuelfneumann/soarm/experiment/tracker"
	ts "github.com/samuelfneumann/soarm/timestep"
	"go.viam.com/test"
)

// episode returns the timesteps of an episode with the argument rewards
// after the first timestep, ending with endType
func episode(rewards []float64, endType ts.EndType) []ts.TimeStep {
	steps := []ts.TimeStep{ts.New(ts.First, 0, 1, nil, 0)}
	for i, r := range rewards {
		step := ts.New(ts.Mid, r, 1, nil, i+1)
		if i == len(rewards)-1 && endType != ts.Nil {
			step.SetEnd(endType)
		}
		steps = append(steps, step)
	}
	return steps
}

func TestReturn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "returns.bin")
	r := NewReturn(path)

	var steps []ts.TimeStep
	steps = append(steps, episode([]float64{0, 0.3, 0.6}, ts.Timeout)...)
	steps = append(steps, episode([]float64{0.3}, ts.Nil)...)
	steps = append(steps, episode([]float64{0.6, 1}, ts.TerminalStateReached)...)
	for _, step := range steps {
		r.Track(step)
	}

	// The unfinished second episode is discarded
	test.That(t, r.Returns(), test.ShouldHaveLength, 2)
	test.That(t, r.Returns()[0], test.ShouldAlmostEqual, 0.9)
	test.That(t, r.Returns()[1], test.ShouldAlmostEqual, 1.6)

	test.That(t, r.Save(), test.ShouldBeNil)
	data, err := tracker.LoadData(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data, test.ShouldResemble, r.Returns())

	test.That(t, func() { r.Track(ts.New(ts.Mid, 0, 1, nil, 5)) },
		test.ShouldPanic)
}

func TestEpisodeLength(t *testing.T) {
	e := NewEpisodeLength(filepath.Join(t.TempDir(), "lengths.bin"))
	for _, step := range episode([]float64{0, 0, 0}, ts.Timeout) {
		e.Track(step)
	}
	for _, step := range episode([]float64{0, 1}, ts.TerminalStateReached) {
		e.Track(step)
	}

	test.That(t, e.Lengths(), test.ShouldResemble, []float64{3, 2})
	test.That(t, e.Successes(), test.ShouldEqual, 1)
	test.That(t, e.Save(), test.ShouldBeNil)
}

func TestLog(t *testing.T) {
	l := NewLog(golog.NewTestLogger(t))
	for _, step := range episode([]float64{0, 1}, ts.TerminalStateReached) {
		l.Track(step)
	}
	test.That(t, l.Save(), test.ShouldBeNil)

	_, err := tracker.LoadData(filepath.Join(t.TempDir(), "missing.bin"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestProgress(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress(&out, 10, 4)
	for _, step := range episode([]float64{0, 0.3}, ts.Nil) {
		p.Track(step)
	}
	test.That(t, p.String(), test.ShouldStartWith, "|█████     | [50.00%")
	test.That(t, p.String(), test.ShouldContainSubstring, "episodes: 1")

	for _, step := range episode([]float64{0, 0, 1}, ts.TerminalStateReached) {
		p.Track(step)
	}
	test.That(t, p.String(), test.ShouldContainSubstring, "[100.00%")
	test.That(t, p.String(), test.ShouldContainSubstring, "episodes: 2")
	test.That(t, p.Save(), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldEndWith, "\n")

	test.That(t, func() { NewProgress(&out, 10, 0) }, test.ShouldPanic)
}
