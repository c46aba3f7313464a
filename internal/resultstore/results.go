// FILE: results.go
package resultstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chidi150c/backtestlab/internal/metrics"
	"github.com/chidi150c/backtestlab/internal/sweep"
)

// RunRecord identifies one persisted sweep run.
type RunRecord struct {
	ID         uuid.UUID
	StartedAt  time.Time
	Objective  string
	PointCount int
}

// InsertRun records a sweep run's header and bulk-inserts its point results
// in a single transaction, so a crash mid-sweep never leaves a half-written
// run behind.
func (s *Store) InsertRun(run RunRecord, results []sweep.PointResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO sweep_runs (id, started_at, objective, point_count) VALUES (?,?,?,?)`,
		run.ID.String(), run.StartedAt.Format(time.RFC3339Nano), run.Objective, run.PointCount,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO sweep_points (
		run_id, task_id, parameters, metrics, objective, success, error
	) VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare point insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		paramsJSON, err := json.Marshal(r.Parameters)
		if err != nil {
			return fmt.Errorf("marshal parameters: %w", err)
		}
		metricsJSON, err := json.Marshal(r.Metrics)
		if err != nil {
			return fmt.Errorf("marshal metrics: %w", err)
		}
		var errText sql.NullString
		if r.Err != nil {
			errText = sql.NullString{String: r.Err.Error(), Valid: true}
		}
		success := 0
		if r.Success {
			success = 1
		}

		if _, err := stmt.Exec(
			run.ID.String(), r.TaskID.String(), string(paramsJSON), string(metricsJSON),
			r.Objective, success, errText,
		); err != nil {
			return fmt.Errorf("insert point task_id=%s: %w", r.TaskID, err)
		}
	}

	return tx.Commit()
}

// ListPoints retrieves every persisted point result for a run, ordered by
// objective descending (best first).
func (s *Store) ListPoints(runID uuid.UUID) ([]sweep.PointResult, error) {
	rows, err := s.db.Query(`
		SELECT task_id, parameters, metrics, objective, success, error
		FROM sweep_points WHERE run_id = ? ORDER BY objective DESC
	`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	var out []sweep.PointResult
	for rows.Next() {
		var (
			taskIDStr, paramsJSON, metricsJSON string
			objective                          float64
			success                            int
			errText                            sql.NullString
		)
		if err := rows.Scan(&taskIDStr, &paramsJSON, &metricsJSON, &objective, &success, &errText); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}

		taskID, err := uuid.Parse(taskIDStr)
		if err != nil {
			return nil, fmt.Errorf("parse task id: %w", err)
		}
		var params sweep.Point
		if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
			return nil, fmt.Errorf("unmarshal parameters: %w", err)
		}
		var summary metrics.Summary
		if err := json.Unmarshal([]byte(metricsJSON), &summary); err != nil {
			return nil, fmt.Errorf("unmarshal metrics: %w", err)
		}

		r := sweep.PointResult{
			TaskID:     taskID,
			Parameters: params,
			Metrics:    summary,
			Objective:  objective,
			Success:    success != 0,
		}
		if errText.Valid {
			r.Err = fmt.Errorf("%s", errText.String)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun retrieves a run's header row.
func (s *Store) GetRun(runID uuid.UUID) (RunRecord, error) {
	var (
		idStr, startedAtStr, objective string
		pointCount                    int
	)
	err := s.db.QueryRow(
		`SELECT id, started_at, objective, point_count FROM sweep_runs WHERE id = ?`,
		runID.String(),
	).Scan(&idStr, &startedAtStr, &objective, &pointCount)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return RunRecord{}, fmt.Errorf("parse run id: %w", err)
	}
	startedAt, err := time.Parse(time.RFC3339Nano, startedAtStr)
	if err != nil {
		return RunRecord{}, fmt.Errorf("parse started_at: %w", err)
	}

	return RunRecord{ID: id, StartedAt: startedAt, Objective: objective, PointCount: pointCount}, nil
}
