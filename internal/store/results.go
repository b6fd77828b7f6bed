package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/rehab/internal/model"
)

// Record stores a finished exercise result for a patient.
func (s *Store) Record(ctx context.Context, patientID string, level int, res model.ExerciseResult) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var known int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM patients WHERE id = ?`, patientID).Scan(&known); err != nil {
		return err
	}
	if known == 0 {
		err = fmt.Errorf("%w: %s", ErrPatientNotFound, patientID)
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO results (session_id, patient_id, level, level_name, completed, success, score, hits, misses,
			precision, max_combo, avg_velocity, movement_range, avg_reaction_ms, consistency, path_length,
			elapsed_ms, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.SessionID,
		patientID,
		level,
		res.LevelName,
		res.Completed,
		res.Success,
		res.Score,
		res.Hits,
		res.Misses,
		res.Precision,
		res.MaxCombo,
		res.AvgVelocity,
		res.MovementRange,
		res.AvgReactionMs,
		res.Consistency,
		res.PathLength,
		res.Elapsed.Milliseconds(),
		res.StartedAt.UTC().Format(timeLayout),
		res.EndedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	s.log.Info("result recorded",
		zap.String("patient", patientID),
		zap.String("session", res.SessionID),
		zap.Int("exercise_level", level),
		zap.Bool("success", res.Success))
	return nil
}

// ListResults returns results matching cfg ordered from oldest to newest.
// A positive Last keeps only the most recent results.
func (s *Store) ListResults(ctx context.Context, cfg model.HistoryConfig) ([]model.ResultRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.PatientID != "" {
		clauses = append(clauses, "patient_id = ?")
		args = append(args, cfg.PatientID)
	}
	if cfg.Level > 0 {
		clauses = append(clauses, "level = ?")
		args = append(args, cfg.Level)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	limit := -1
	if cfg.Last > 0 {
		limit = cfg.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT * FROM (
		SELECT id, session_id, patient_id, level, level_name, completed, success, score, hits, misses,
			precision, max_combo, avg_velocity, movement_range, avg_reaction_ms, consistency, path_length,
			elapsed_ms, started_at, ended_at
		FROM results
		WHERE %s
		ORDER BY ended_at DESC, id DESC
		LIMIT ?
	) ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.ResultRecord
	for rows.Next() {
		var rec model.ResultRecord
		var elapsedMs int64
		var startedAt, endedAt string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.PatientID, &rec.Level, &rec.LevelName,
			&rec.Completed, &rec.Success, &rec.Score, &rec.Hits, &rec.Misses,
			&rec.Precision, &rec.MaxCombo, &rec.AvgVelocity, &rec.MovementRange, &rec.AvgReactionMs,
			&rec.Consistency, &rec.PathLength, &elapsedMs, &startedAt, &endedAt); err != nil {
			return nil, err
		}
		rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		if rec.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// LevelAggregates summarizes a patient's results per level.
func (s *Store) LevelAggregates(ctx context.Context, patientID string) ([]model.LevelAggregate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT level, MAX(level_name), COUNT(*), SUM(success), MAX(score), AVG(precision),
			COALESCE(AVG(NULLIF(avg_reaction_ms, 0)), 0)
		FROM results
		WHERE patient_id = ?
		GROUP BY level
		ORDER BY level ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LevelAggregate
	for rows.Next() {
		var agg model.LevelAggregate
		if err := rows.Scan(&agg.Level, &agg.LevelName, &agg.Sessions, &agg.Successful, &agg.BestScore,
			&agg.AvgPrecision, &agg.AvgReaction); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
