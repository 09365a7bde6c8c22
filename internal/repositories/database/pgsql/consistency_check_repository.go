package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/finbook/reconcore/internal/apperrors"
	"github.com/finbook/reconcore/internal/core/domain"
	portsrepo "github.com/finbook/reconcore/internal/core/ports/repositories"
	"github.com/finbook/reconcore/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultCheckPageSize = 50

type PgxConsistencyCheckRepository struct {
	BaseRepository
}

// newPgxConsistencyCheckRepository creates a new repository for consistency findings.
func newPgxConsistencyCheckRepository(pool *pgxpool.Pool) portsrepo.ConsistencyCheckRepositoryFacade {
	return &PgxConsistencyCheckRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ConsistencyCheckRepositoryFacade = (*PgxConsistencyCheckRepository)(nil)

const checkColumns = `check_id, user_id, check_type, transaction_ids, severity, status, detail, resolution_note, detected_at, created_at, created_by, last_updated_at, last_updated_by`

// SaveChecks persists a batch of findings.
func (r *PgxConsistencyCheckRepository) SaveChecks(ctx context.Context, checks []domain.ConsistencyCheck) error {
	if len(checks) == 0 {
		return nil
	}
	query := `
		INSERT INTO consistency_checks (` + checkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	batch := &pgx.Batch{}
	for _, c := range checks {
		batch.Queue(query,
			c.CheckID,
			c.UserID,
			c.CheckType,
			c.TransactionIDs,
			c.Severity,
			c.Status,
			c.Detail,
			c.ResolutionNote,
			c.DetectedAt,
			c.CreatedAt,
			c.CreatedBy,
			c.LastUpdatedAt,
			c.LastUpdatedBy,
		)
	}
	if err := r.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert consistency checks", err)
	}
	return nil
}

// ListPendingByUser retrieves one page of unresolved findings using keyset
// pagination over (detected_at, check_id).
func (r *PgxConsistencyCheckRepository) ListPendingByUser(ctx context.Context, userID string, limit int, nextToken string) ([]domain.ConsistencyCheck, string, error) {
	if limit <= 0 {
		limit = defaultCheckPageSize
	}

	var afterAt time.Time
	var afterID string
	if nextToken != "" {
		var err error
		afterAt, afterID, err = pagination.DecodeToken(nextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	}

	query := `
		SELECT ` + checkColumns + ` FROM consistency_checks
		WHERE user_id = $1 AND status = $2
		  AND ($3::timestamptz IS NULL OR (detected_at, check_id) > ($3, $4))
		ORDER BY detected_at, check_id
		LIMIT $5;
	`
	var afterAtArg any
	if nextToken != "" {
		afterAtArg = afterAt
	}
	rows, err := r.Pool.Query(ctx, query, userID, domain.CheckPending, afterAtArg, afterID, limit+1)
	if err != nil {
		return nil, "", apperrors.NewAppError(500, "failed to query consistency checks", err)
	}
	defer rows.Close()

	var checks []domain.ConsistencyCheck
	for rows.Next() {
		var c domain.ConsistencyCheck
		err := rows.Scan(
			&c.CheckID,
			&c.UserID,
			&c.CheckType,
			&c.TransactionIDs,
			&c.Severity,
			&c.Status,
			&c.Detail,
			&c.ResolutionNote,
			&c.DetectedAt,
			&c.CreatedAt,
			&c.CreatedBy,
			&c.LastUpdatedAt,
			&c.LastUpdatedBy,
		)
		if err != nil {
			return nil, "", apperrors.NewAppError(500, "failed to scan consistency check", err)
		}
		checks = append(checks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, "", apperrors.NewAppError(500, "failed to read consistency checks", err)
	}

	var token string
	if len(checks) > limit {
		checks = checks[:limit]
		last := checks[len(checks)-1]
		token = pagination.EncodeToken(last.DetectedAt, last.CheckID)
	}
	return checks, token, nil
}

// ResolveCheck records a human or automated resolution.
func (r *PgxConsistencyCheckRepository) ResolveCheck(ctx context.Context, userID string, checkID string, status domain.CheckStatus, note string, resolvedBy string) error {
	query := `
		UPDATE consistency_checks
		SET status = $3, resolution_note = $4, last_updated_at = $5, last_updated_by = $6
		WHERE check_id = $1 AND user_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, checkID, userID, status, note, time.Now(), resolvedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to resolve check "+checkID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: consistency check %s", apperrors.ErrNotFound, checkID)
	}
	return nil
}
