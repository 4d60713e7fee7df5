package scheduler

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcdev12/tierdraft/go/internal/draft/jobs"
	"github.com/mcdev12/tierdraft/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

//go:embed schema.sql
var schema string

// PostgresJobStore keeps pending jobs in the scheduled_jobs table.
type PostgresJobStore struct {
	db *sql.DB
}

// NewPostgresJobStore creates a job store on db.
func NewPostgresJobStore(db *sql.DB) *PostgresJobStore {
	return &PostgresJobStore{db: db}
}

// Migrate creates the jobs table if it does not exist.
func (s *PostgresJobStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate scheduled_jobs: %w", err)
	}
	return nil
}

func (s *PostgresJobStore) Save(ctx context.Context, job jobs.Job) error {
	payload, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}

	const query = `
		INSERT INTO scheduled_jobs (id, kind, division_id, run_at, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET run_at = EXCLUDED.run_at, payload = EXCLUDED.payload`

	_, err = s.db.ExecContext(ctx, query,
		job.ID,
		string(job.Kind),
		job.DivisionID,
		job.RunAt,
		pqtype.NullRawMessage{RawMessage: payload, Valid: len(payload) > 0},
	)
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (s *PostgresJobStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scheduled_jobs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

func (s *PostgresJobStore) DeleteByKind(ctx context.Context, kind jobs.Kind, divisionID uuid.UUID) error {
	const query = `DELETE FROM scheduled_jobs WHERE kind = $1 AND division_id = $2`
	if _, err := s.db.ExecContext(ctx, query, string(kind), divisionID); err != nil {
		return fmt.Errorf("failed to delete jobs: %w", err)
	}
	return nil
}

// Claim marks every pending job as owned by instanceID and returns them ordered by run time.
// Rows locked by a concurrent claimer are skipped.
func (s *PostgresJobStore) Claim(ctx context.Context, instanceID string) ([]jobs.Job, error) {
	return sqlutil.Query(ctx, s.db, func(tx *sql.Tx) ([]jobs.Job, error) {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, kind, division_id, run_at, payload
			FROM scheduled_jobs
			ORDER BY run_at
			FOR UPDATE SKIP LOCKED`)
		if err != nil {
			return nil, fmt.Errorf("failed to select jobs: %w", err)
		}
		defer rows.Close()

		var (
			claimed []jobs.Job
			ids     []string
		)
		for rows.Next() {
			var (
				job     jobs.Job
				kind    string
				payload pqtype.NullRawMessage
			)
			if err := rows.Scan(&job.ID, &kind, &job.DivisionID, &job.RunAt, &payload); err != nil {
				return nil, fmt.Errorf("failed to scan job: %w", err)
			}
			job.Kind = jobs.Kind(kind)
			if payload.Valid {
				if err := json.Unmarshal(payload.RawMessage, &job.Payload); err != nil {
					return nil, fmt.Errorf("failed to unmarshal payload for job %s: %w", job.ID, err)
				}
			}
			claimed = append(claimed, job)
			ids = append(ids, job.ID.String())
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE scheduled_jobs
			SET claimed_by = $1, claimed_at = now()
			WHERE id = ANY($2::uuid[])`,
			sqlutil.NullString(instanceID), pq.Array(ids))
		if err != nil {
			return nil, fmt.Errorf("failed to claim jobs: %w", err)
		}
		return claimed, nil
	})
}
