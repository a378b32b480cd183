package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/trackexo/internal/timeutil"
	"github.com/banshee-data/trackexo/internal/trace"
)

// ErrRunNotFound is returned by Get for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded conversion.
type Run struct {
	ID         string
	Source     string // input CSV path
	Output     string // written exo or CSV path, empty for preview-only runs
	CreatedAt  time.Time
	ConfigJSON string // effective export settings

	RawPoints        int
	CleanedPoints    int
	SimplifiedPoints int
	Segments         int
	Passes           int
}

// RunStore records runs and their simplified keyframes.
type RunStore struct {
	db    *DB
	clock timeutil.Clock
}

// NewRunStore returns a store backed by db using the wall clock.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db, clock: timeutil.RealClock{}}
}

// NewRunStoreWithClock returns a store that timestamps runs with clock.
func NewRunStoreWithClock(db *DB, clock timeutil.Clock) *RunStore {
	return &RunStore{db: db, clock: clock}
}

// Record inserts run and its keyframes in one transaction. Empty ID and
// zero CreatedAt are filled in; the stored run is returned.
func (s *RunStore) Record(run Run, keyframes []trace.TrackPoint) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.clock.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()
	if run.ConfigJSON == "" {
		run.ConfigJSON = "{}"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (
			run_id, source_path, output_path, created_at, config_json,
			raw_points, cleaned_points, simplified_points, segments, passes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Output, run.CreatedAt.UnixNano(), run.ConfigJSON,
		run.RawPoints, run.CleanedPoints, run.SimplifiedPoints, run.Segments, run.Passes,
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_keyframes (run_id, seq, frame, x, y, w, h, r, cost_state, cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("prepare keyframe insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range keyframes {
		var cost sql.NullFloat64
		if p.Cost.IsComputed() {
			cost = sql.NullFloat64{Float64: p.Cost.Value, Valid: true}
		}
		if _, err := stmt.Exec(run.ID, i, p.Frame, p.X, p.Y, p.W, p.H, p.R, p.Cost.State.String(), cost); err != nil {
			return Run{}, fmt.Errorf("insert keyframe %d of run %s: %w", i, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return run, nil
}

const runColumns = `run_id, source_path, output_path, created_at, config_json,
	raw_points, cleaned_points, simplified_points, segments, passes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		r       Run
		created int64
	)
	err := row.Scan(&r.ID, &r.Source, &r.Output, &created, &r.ConfigJSON,
		&r.RawPoints, &r.CleanedPoints, &r.SimplifiedPoints, &r.Segments, &r.Passes)
	if err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	return r, nil
}

// List returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *RunStore) List(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, run_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns the run with id, or ErrRunNotFound.
func (s *RunStore) Get(id string) (Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}

// Keyframes returns the simplified points recorded for run id in order.
func (s *RunStore) Keyframes(id string) ([]trace.TrackPoint, error) {
	rows, err := s.db.Query(`
		SELECT frame, x, y, w, h, r, cost_state, cost
		FROM run_keyframes WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query keyframes for %s: %w", id, err)
	}
	defer rows.Close()

	var points []trace.TrackPoint
	for rows.Next() {
		var (
			p     trace.TrackPoint
			state string
			cost  sql.NullFloat64
		)
		if err := rows.Scan(&p.Frame, &p.X, &p.Y, &p.W, &p.H, &p.R, &state, &cost); err != nil {
			return nil, fmt.Errorf("scan keyframe: %w", err)
		}
		p.Cost, err = parseCost(state, cost)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func parseCost(state string, v sql.NullFloat64) (trace.Cost, error) {
	switch state {
	case trace.CostUnset.String():
		return trace.Cost{}, nil
	case trace.CostProtected.String():
		return trace.Protected(), nil
	case trace.CostComputed.String():
		if !v.Valid {
			return trace.Cost{}, fmt.Errorf("computed keyframe cost is null")
		}
		return trace.Computed(v.Float64), nil
	default:
		return trace.Cost{}, fmt.Errorf("unknown cost state %q", state)
	}
}
