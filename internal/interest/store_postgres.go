package interest

import (
	"context"
	"database/sql"
	"fmt"

	"lifelink/pkg/platform/sentinel"
)

// PostgresStore persists the interest ledger in PostgreSQL. Uniqueness of the
// (request_id, donor_id) pair is enforced by the primary key; InsertIfAbsent
// relies on ON CONFLICT DO NOTHING so concurrent duplicates resolve to exactly
// one row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertIfAbsent(ctx context.Context, rec Interest) error {
	query := `
		INSERT INTO donor_interests (request_id, donor_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (request_id, donor_id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, rec.RequestID, rec.DonorID, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert interest: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert interest rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrAlreadyExists
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, requestID, donorID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM donor_interests WHERE request_id = $1 AND donor_id = $2)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, requestID, donorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("interest exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListByRequest(ctx context.Context, requestID string) ([]Interest, error) {
	query := `
		SELECT request_id, donor_id, created_at
		FROM donor_interests
		WHERE request_id = $1
		ORDER BY request_id ASC, donor_id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list interests: %w", err)
	}
	defer rows.Close()

	var records []Interest
	for rows.Next() {
		var rec Interest
		if err := rows.Scan(&rec.RequestID, &rec.DonorID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interest: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interests: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) CountByRequest(ctx context.Context, requestID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM donor_interests WHERE request_id = $1`
	if err := s.db.QueryRowContext(ctx, query, requestID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count interests: %w", err)
	}
	return count, nil
}
