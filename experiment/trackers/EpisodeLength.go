package trackers

import (
	"fmt"

	"github.com/samuelfneumann/soarm/experiment/tracker"
	"github.com/samuelfneumann/soarm/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment together with how each episode ended.
// Note that an episode must finish for this Tracker to save its data.
// If the last episode in an experiment does not finish, that episode's
// length will not be saved.
type EpisodeLength struct {
	episodeLengths []float64
	successes      int
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength saver which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track tracks the episode lengths in an experiment. When this function
// is called, it caches the episode length if the timestep passed to it
// is the last timestep in the episode. Otherwise, it waits to receive
// the last timestep in an episode before caching and storing the
// episode lengths, for saving later.
func (e *EpisodeLength) Track(t timestep.TimeStep) {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, float64(t.Number))
		if t.Terminated() {
			e.successes++
		}
	}
}

// Lengths returns the lengths of all finished episodes
func (e *EpisodeLength) Lengths() []float64 {
	return append([]float64(nil), e.episodeLengths...)
}

// Successes returns the number of finished episodes which reached a
// terminal state rather than timing out
func (e *EpisodeLength) Successes() int {
	return e.successes
}

// Save saves the data tracked by the EpisodeLength Tracker to disk.
func (e *EpisodeLength) Save() error {
	if err := tracker.SaveData(e.filename, e.episodeLengths); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return nil
}
