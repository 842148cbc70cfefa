package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"lifelink/pkg/domain"
	"lifelink/pkg/platform/sentinel"
	"lifelink/pkg/requestcontext"
)

// PostgresStore persists blood requests in PostgreSQL. This store is pure
// I/O; transition rules live in the service callbacks. Execute serializes on
// a row lock.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const requestColumns = `id, recipient_name, blood_type, location, urgency,
	contact_info, units_required, status, created_at, owner`

func (s *PostgresStore) Create(ctx context.Context, r *BloodRequest) error {
	query := `
		INSERT INTO blood_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.RecipientName,
		r.BloodType.String(),
		r.Location,
		r.Urgency.String(),
		r.ContactInfo,
		r.UnitsRequired,
		r.Status.String(),
		r.CreatedAt,
		r.Owner.String(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*BloodRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM blood_requests WHERE id = $1`
	r, err := scanRequest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) Execute(ctx context.Context, id string, validate func(*BloodRequest) error, mutate func(*BloodRequest)) (*BloodRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin execute: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	r, err := lockRequest(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(r); err != nil {
			return nil, err
		}
	}
	mutate(r)

	if err := updateRequest(ctx, tx, r); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit execute: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*BloodRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM blood_requests ORDER BY created_at DESC, id ASC`
	return s.queryRequests(ctx, query)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]*BloodRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM blood_requests WHERE status = $1 ORDER BY created_at DESC, id ASC`
	return s.queryRequests(ctx, query, status.String())
}

func (s *PostgresStore) queryRequests(ctx context.Context, query string, args ...any) ([]*BloodRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []*BloodRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return requests, nil
}

// lockRequest selects the row FOR UPDATE inside tx. Shared with the interest
// store's transactional transition.
func lockRequest(ctx context.Context, tx *sql.Tx, id string) (*BloodRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM blood_requests WHERE id = $1 FOR UPDATE`
	r, err := scanRequest(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock request: %w", err)
	}
	return r, nil
}

func updateRequest(ctx context.Context, tx *sql.Tx, r *BloodRequest) error {
	query := `
		UPDATE blood_requests SET
			recipient_name = $2,
			blood_type = $3,
			location = $4,
			urgency = $5,
			contact_info = $6,
			units_required = $7,
			status = $8
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query,
		r.ID,
		r.RecipientName,
		r.BloodType.String(),
		r.Location,
		r.Urgency.String(),
		r.ContactInfo,
		r.UnitsRequired,
		r.Status.String(),
	); err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*BloodRequest, error) {
	var (
		r         BloodRequest
		bloodType string
		urgency   string
		status    string
		owner     string
	)
	if err := row.Scan(
		&r.ID,
		&r.RecipientName,
		&bloodType,
		&r.Location,
		&urgency,
		&r.ContactInfo,
		&r.UnitsRequired,
		&status,
		&r.CreatedAt,
		&owner,
	); err != nil {
		return nil, err
	}
	r.BloodType = domain.BloodType(bloodType)
	r.Urgency = domain.Urgency(urgency)
	r.Status = domain.RequestStatus(status)
	r.Owner = requestcontext.Principal(owner)
	return &r, nil
}
