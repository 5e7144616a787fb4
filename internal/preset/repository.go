package preset

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"galaxy-server/internal/shared/database"
	apperrors "galaxy-server/internal/shared/errors"

	"github.com/lib/pq"
)

// uniqueViolation is the postgres error code for a duplicate key
const uniqueViolation = "23505"

type Repository struct {
	db     database.Executor
	logger *slog.Logger
}

func NewRepository(db database.Executor, logger *slog.Logger) *Repository {
	logger.Debug("Initializing preset repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Create(ctx context.Context, p *Preset) (*Preset, error) {
	logger := r.logger.With("component", "preset_repository", "operation", "create", "name", p.Name)
	logger.Debug("Creating preset")

	params, err := json.Marshal(p.Parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to encode parameters: %w", err)
	}

	query := `
		INSERT INTO presets (name, parameters, seed, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	created := *p
	// seeds span the full uint64 range; BIGINT stores the same bits
	err = r.db.QueryRowContext(ctx, query, p.Name, params, int64(p.Seed), p.CreatedBy).Scan(
		&created.ID,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperrors.Conflictf("preset %q already exists", p.Name)
		}
		logger.Error("Failed to create preset", "error", err)
		return nil, fmt.Errorf("failed to create preset: %w", err)
	}

	logger.Info("Preset created", "preset_id", created.ID)
	return &created, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Preset, error) {
	logger := r.logger.With("component", "preset_repository", "operation", "get_by_id", "preset_id", id)

	query := `
		SELECT id, name, parameters, seed, created_by, created_at, updated_at
		FROM presets
		WHERE id = $1
	`

	p, err := scanPreset(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("preset %d not found", id)
		}
		logger.Error("Database error getting preset", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}
	return p, nil
}

func (r *Repository) List(ctx context.Context) ([]Preset, error) {
	logger := r.logger.With("component", "preset_repository", "operation", "list")

	query := `
		SELECT id, name, parameters, seed, created_by, created_at, updated_at
		FROM presets
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query presets", "error", err)
		return nil, fmt.Errorf("failed to query presets: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var presets []Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			logger.Error("Failed to scan preset", "error", err)
			return nil, fmt.Errorf("failed to scan preset: %w", err)
		}
		presets = append(presets, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate presets: %w", err)
	}

	logger.Debug("Presets retrieved", "count", len(presets))
	return presets, nil
}

func (r *Repository) Delete(ctx context.Context, id int) error {
	logger := r.logger.With("component", "preset_repository", "operation", "delete", "preset_id", id)

	result, err := r.db.ExecContext(ctx, `DELETE FROM presets WHERE id = $1`, id)
	if err != nil {
		logger.Error("Failed to delete preset", "error", err)
		return fmt.Errorf("failed to delete preset: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return apperrors.NotFoundf("preset %d not found", id)
	}

	logger.Info("Preset deleted")
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(row scanner) (*Preset, error) {
	var (
		p      Preset
		params []byte
		seed   int64
	)
	if err := row.Scan(&p.ID, &p.Name, &params, &seed, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(params, &p.Parameters); err != nil {
		return nil, fmt.Errorf("preset %d has malformed parameters: %w", p.ID, err)
	}
	p.Seed = uint64(seed)
	return &p, nil
}
