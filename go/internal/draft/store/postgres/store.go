// Package postgres implements store.Store on PostgreSQL through a pgx connection pool.
// Division rows are locked with SELECT ... FOR UPDATE for the lifetime of a transaction,
// which gives one writer per division without any cross-division locking.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/tierdraft/go/internal/draft/store"
	"github.com/mcdev12/tierdraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schema string

var _ store.Store = (*Store)(nil)

// Store is a store.Store backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the tables the store needs if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply division schema: %w", err)
	}
	return nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) GetDivision(ctx context.Context, id uuid.UUID) (*models.Division, error) {
	return loadDivision(ctx, s.pool, id, false)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTx{tx: tx})
	})
}

func (s *Store) CreateDivision(ctx context.Context, div *models.Division) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		now := time.Now()
		_, err := tx.Exec(ctx, `
			INSERT INTO divisions (
			  id, name, draft_counter, draft_style, status, skip_time, remaining_ms,
			  timer_length, channel_id, random_order, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)`,
			div.ID, div.Name, div.DraftCounter, string(div.DraftStyle), string(div.Status),
			div.SkipTime, toMillis(div.RemainingTime), div.TimerLength, div.ChannelID,
			div.RandomOrder, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert division: %w", err)
		}

		for i, team := range div.Teams {
			if team.Coach.ID != "" {
				if _, err := tx.Exec(ctx, `
					INSERT INTO coaches (id, name) VALUES ($1, $2)
					ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
					team.Coach.ID, team.Coach.Name,
				); err != nil {
					return fmt.Errorf("failed to upsert coach: %w", err)
				}
			}
			draft, picks, err := encodeTeam(team)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO division_teams (id, division_id, position, name, coach_id, draft, picks, skip_count)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
				team.ID, div.ID, i, team.Name, team.Coach.ID, draft, picks, team.SkipCount,
			); err != nil {
				return fmt.Errorf("failed to insert team %s: %w", team.ID, err)
			}
		}

		log.Info().Str("division_id", div.ID.String()).Int("teams", len(div.Teams)).Msg("division created")
		return nil
	})
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetDivision(ctx context.Context, id uuid.UUID) (*models.Division, error) {
	return loadDivision(ctx, t.tx, id, true)
}

func (t *pgTx) UpdateDivision(ctx context.Context, div *models.Division) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE divisions SET
		  draft_counter = $2, status = $3, skip_time = $4, remaining_ms = $5, updated_at = now()
		WHERE id = $1`,
		div.ID, div.DraftCounter, string(div.Status), div.SkipTime, toMillis(div.RemainingTime),
	)
	if err != nil {
		return fmt.Errorf("failed to update division: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", store.ErrDivisionNotFound, div.ID)
	}
	return nil
}

func (t *pgTx) UpdateTeam(ctx context.Context, divisionID uuid.UUID, team *models.Team) error {
	draft, picks, err := encodeTeam(team)
	if err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `
		UPDATE division_teams SET draft = $3, picks = $4, skip_count = $5
		WHERE id = $1 AND division_id = $2`,
		team.ID, divisionID, draft, picks, team.SkipCount,
	)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("team %s is not in division %s", team.ID, divisionID)
	}
	return nil
}

func (t *pgTx) AppendTrade(ctx context.Context, divisionID uuid.UUID, trade models.Trade) error {
	side1, err := json.Marshal(trade.Side1)
	if err != nil {
		return fmt.Errorf("failed to marshal trade side: %w", err)
	}
	side2, err := json.Marshal(trade.Side2)
	if err != nil {
		return fmt.Errorf("failed to marshal trade side: %w", err)
	}
	_, err = t.tx.Exec(ctx, `
		INSERT INTO division_trades (id, division_id, side1, side2, stage, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO NOTHING`,
		trade.ID, divisionID, side1, side2, trade.Stage, trade.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

func loadDivision(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*models.Division, error) {
	query := `
		SELECT id, name, draft_counter, draft_style, status, skip_time, remaining_ms,
		       timer_length, channel_id, random_order, created_at, updated_at
		FROM divisions WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		div         models.Division
		style       string
		status      string
		remainingMs *int64
	)
	err := q.QueryRow(ctx, query, id).Scan(
		&div.ID, &div.Name, &div.DraftCounter, &style, &status, &div.SkipTime, &remainingMs,
		&div.TimerLength, &div.ChannelID, &div.RandomOrder, &div.CreatedAt, &div.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrDivisionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load division: %w", err)
	}
	div.DraftStyle = models.DraftStyle(style)
	div.Status = models.DivisionStatus(status)
	div.RemainingTime = fromMillis(remainingMs)

	if div.Teams, err = loadTeams(ctx, q, id); err != nil {
		return nil, err
	}
	if div.Trades, err = loadTrades(ctx, q, id); err != nil {
		return nil, err
	}
	return &div, nil
}

func loadTeams(ctx context.Context, q querier, divisionID uuid.UUID) ([]*models.Team, error) {
	rows, err := q.Query(ctx, `
		SELECT t.id, t.name, t.coach_id, COALESCE(c.name, ''), t.draft, t.picks, t.skip_count
		FROM division_teams t
		LEFT JOIN coaches c ON c.id = t.coach_id
		WHERE t.division_id = $1
		ORDER BY t.position`, divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var (
			team         models.Team
			draft, picks []byte
		)
		if err := rows.Scan(&team.ID, &team.Name, &team.Coach.ID, &team.Coach.Name, &draft, &picks, &team.SkipCount); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		if err := json.Unmarshal(draft, &team.Draft); err != nil {
			return nil, fmt.Errorf("failed to decode draft of team %s: %w", team.ID, err)
		}
		if err := json.Unmarshal(picks, &team.Picks); err != nil {
			return nil, fmt.Errorf("failed to decode staged picks of team %s: %w", team.ID, err)
		}
		teams = append(teams, &team)
	}
	return teams, rows.Err()
}

func loadTrades(ctx context.Context, q querier, divisionID uuid.UUID) ([]models.Trade, error) {
	rows, err := q.Query(ctx, `
		SELECT id, side1, side2, stage, created_at
		FROM division_trades WHERE division_id = $1
		ORDER BY created_at, id`, divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var (
			trade        models.Trade
			side1, side2 []byte
		)
		if err := rows.Scan(&trade.ID, &side1, &side2, &trade.Stage, &trade.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		if err := json.Unmarshal(side1, &trade.Side1); err != nil {
			return nil, fmt.Errorf("failed to decode trade %s: %w", trade.ID, err)
		}
		if err := json.Unmarshal(side2, &trade.Side2); err != nil {
			return nil, fmt.Errorf("failed to decode trade %s: %w", trade.ID, err)
		}
		trades = append(trades, trade)
	}
	return trades, rows.Err()
}

func encodeTeam(team *models.Team) (draft, picks []byte, err error) {
	d := team.Draft
	if d == nil {
		d = []models.Pick{}
	}
	p := team.Picks
	if p == nil {
		p = [][]models.StagedPick{}
	}
	if draft, err = json.Marshal(d); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal draft: %w", err)
	}
	if picks, err = json.Marshal(p); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal staged picks: %w", err)
	}
	return draft, picks, nil
}

func toMillis(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	ms := d.Milliseconds()
	return &ms
}

func fromMillis(ms *int64) *time.Duration {
	if ms == nil {
		return nil
	}
	d := time.Duration(*ms) * time.Millisecond
	return &d
}
