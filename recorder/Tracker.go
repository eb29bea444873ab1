package recorder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	ts "github.com/samuelfneumann/soarm/timestep"
)

// Tracker records the timesteps of an experiment in a Store. Tracker
// satisfies the tracker.Tracker interface.
//
// Track cannot return errors, so the first error encountered is kept
// and returned by Save. Timesteps tracked after an error are dropped.
type Tracker struct {
	ctx   context.Context
	store *Store

	// template describes the episodes to record, it is copied for
	// every new episode
	template Episode

	episode uuid.UUID
	ret     float64
	err     error
}

// NewTracker returns a Tracker recording into store. Every episode is
// recorded with the fields of template, except for its ID.
func NewTracker(ctx context.Context, store *Store, template Episode) *Tracker {
	template.ID = uuid.Nil
	return &Tracker{ctx: ctx, store: store, template: template}
}

// SetCell sets the grid cell recorded with the following episodes
func (r *Tracker) SetCell(cell *int) {
	if cell == nil {
		r.template.Cell = nil
		return
	}
	c := *cell
	r.template.Cell = &c
}

// Episode returns the ID of the episode being recorded
func (r *Tracker) Episode() uuid.UUID {
	return r.episode
}

// Track records the timestep
func (r *Tracker) Track(t ts.TimeStep) {
	if r.err != nil {
		return
	}

	if t.First() {
		id, err := r.store.BeginEpisode(r.ctx, r.template)
		if err != nil {
			r.err = fmt.Errorf("track: %w", err)
			return
		}
		r.episode = id
		r.ret = 0
	}
	if r.episode == uuid.Nil {
		r.err = fmt.Errorf("track: timestep %v tracked before the first "+
			"timestep of an episode", t.Number)
		return
	}

	r.ret += t.Reward
	if err := r.store.RecordStep(r.ctx, r.episode, t); err != nil {
		r.err = fmt.Errorf("track: %w", err)
		return
	}

	if t.Last() {
		err := r.store.EndEpisode(r.ctx, r.episode, t.Number, r.ret,
			t.EndType())
		if err != nil {
			r.err = fmt.Errorf("track: %w", err)
		}
		r.episode = uuid.Nil
	}
}

// Save returns the first error encountered while recording. The store
// writes every timestep as it is tracked.
func (r *Tracker) Save() error {
	return r.err
}
