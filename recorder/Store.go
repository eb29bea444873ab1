// Package recorder stores rollouts of SO-ARM environments in a SQLite
// database. Each episode gets a row in the episodes table and each of
// its timesteps a row in the steps table.
package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	ts "github.com/samuelfneumann/soarm/timestep"
	"gonum.org/v1/gonum/mat"

	_ "modernc.org/sqlite"
)

// ErrClosed is returned by a closed Store
var ErrClosed = errors.New("recorder: store is closed")

// Episode describes a recorded episode
type Episode struct {
	ID          uuid.UUID
	Environment string
	Task        string
	Seed        uint64

	// Cell is the grid cell the object was placed in, if it was fixed
	Cell *int

	StartedAt time.Time
	Steps     int
	Return    float64
	EndType   string
	Finished  bool
}

// Step is a recorded timestep
type Step struct {
	Episode  uuid.UUID
	Number   int
	Reward   float64
	AgentPos []float64
	EnvState []float64
}

// Store records episodes in a SQLite database
type Store struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// Open opens the database at path, creating its tables if needed
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("open: sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open: could not create tables: %w", err)
	}

	return &Store{path: path, db: db}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			environment TEXT NOT NULL,
			task TEXT NOT NULL,
			seed INTEGER NOT NULL,
			cell INTEGER,
			started_at INTEGER NOT NULL,
			steps INTEGER NOT NULL DEFAULT 0,
			total_return REAL NOT NULL DEFAULT 0,
			end_type TEXT NOT NULL DEFAULT '',
			finished INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS steps (
			episode_id TEXT NOT NULL,
			number INTEGER NOT NULL,
			reward REAL NOT NULL,
			agent_pos TEXT NOT NULL,
			env_state TEXT NOT NULL,
			PRIMARY KEY (episode_id, number)
		)
	`)
	return err
}

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}

// Path returns the path of the database
func (s *Store) Path() string {
	return s.path
}

// BeginEpisode records the start of an episode. If ep has no ID, a new
// one is generated. The ID of the episode is returned.
func (s *Store) BeginEpisode(ctx context.Context,
	ep Episode) (uuid.UUID, error) {
	db, err := s.getDB()
	if err != nil {
		return uuid.Nil, err
	}

	if ep.ID == uuid.Nil {
		ep.ID = uuid.New()
	}
	if ep.StartedAt.IsZero() {
		ep.StartedAt = time.Now()
	}

	var cell sql.NullInt64
	if ep.Cell != nil {
		cell = sql.NullInt64{Int64: int64(*ep.Cell), Valid: true}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO episodes (id, environment, task, seed, cell, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			environment = excluded.environment,
			task = excluded.task,
			seed = excluded.seed,
			cell = excluded.cell,
			started_at = excluded.started_at
	`, ep.ID.String(), ep.Environment, ep.Task, int64(ep.Seed), cell,
		ep.StartedAt.UnixNano())
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginEpisode: %w", err)
	}
	return ep.ID, nil
}

// RecordStep records a timestep of the episode with the argument id
func (s *Store) RecordStep(ctx context.Context, id uuid.UUID,
	t ts.TimeStep) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	var agentPos, envState []float64
	if obs := t.Observation; obs != nil {
		agentPos = vectorData(obs.AgentPos)
		if agentPos == nil {
			agentPos = vectorData(obs.QPos)
		}
		envState = obs.EnvState
	}

	agentJSON, err := encodeFloats(agentPos)
	if err != nil {
		return fmt.Errorf("recordStep: %w", err)
	}
	stateJSON, err := encodeFloats(envState)
	if err != nil {
		return fmt.Errorf("recordStep: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO steps (episode_id, number, reward, agent_pos, env_state)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(episode_id, number) DO UPDATE SET
			reward = excluded.reward,
			agent_pos = excluded.agent_pos,
			env_state = excluded.env_state
	`, id.String(), t.Number, t.Reward, agentJSON, stateJSON)
	if err != nil {
		return fmt.Errorf("recordStep: %w", err)
	}
	return nil
}

// EndEpisode records the end of the episode with the argument id
func (s *Store) EndEpisode(ctx context.Context, id uuid.UUID, steps int,
	ret float64, end ts.EndType) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE episodes
		SET steps = ?, total_return = ?, end_type = ?, finished = 1
		WHERE id = ?
	`, steps, ret, end.String(), id.String())
	if err != nil {
		return fmt.Errorf("endEpisode: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("endEpisode: no episode %v", id)
	}
	return nil
}

// Episodes returns all recorded episodes in the order they started
func (s *Store) Episodes(ctx context.Context) ([]Episode, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, environment, task, seed, cell, started_at, steps, total_return,
			end_type, finished
		FROM episodes
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var (
			ep        Episode
			id        string
			seed      int64
			cell      sql.NullInt64
			startedAt int64
		)
		err := rows.Scan(&id, &ep.Environment, &ep.Task, &seed, &cell,
			&startedAt, &ep.Steps, &ep.Return, &ep.EndType, &ep.Finished)
		if err != nil {
			return nil, fmt.Errorf("episodes: %w", err)
		}

		if ep.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("episodes: invalid id %q: %w", id, err)
		}
		ep.Seed = uint64(seed)
		if cell.Valid {
			c := int(cell.Int64)
			ep.Cell = &c
		}
		ep.StartedAt = time.Unix(0, startedAt)
		episodes = append(episodes, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("episodes: %w", err)
	}
	return episodes, nil
}

// Steps returns the recorded timesteps of the episode with the argument
// id in order
func (s *Store) Steps(ctx context.Context, id uuid.UUID) ([]Step, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT number, reward, agent_pos, env_state
		FROM steps
		WHERE episode_id = ?
		ORDER BY number
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		step := Step{Episode: id}
		var agentJSON, stateJSON string
		err := rows.Scan(&step.Number, &step.Reward, &agentJSON, &stateJSON)
		if err != nil {
			return nil, fmt.Errorf("steps: %w", err)
		}
		if step.AgentPos, err = decodeFloats(agentJSON); err != nil {
			return nil, fmt.Errorf("steps: %w", err)
		}
		if step.EnvState, err = decodeFloats(stateJSON); err != nil {
			return nil, fmt.Errorf("steps: %w", err)
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("steps: %w", err)
	}
	return steps, nil
}

// Close closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func vectorData(v *mat.VecDense) []float64 {
	if v == nil {
		return nil
	}
	data := make([]float64, v.Len())
	for i := range data {
		data[i] = v.AtVec(i)
	}
	return data
}

func encodeFloats(values []float64) (string, error) {
	if values == nil {
		values = []float64{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("could not encode vector: %w", err)
	}
	return string(data), nil
}

func decodeFloats(data string) ([]float64, error) {
	var values []float64
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("could not decode vector: %w", err)
	}
	return values, nil
}
