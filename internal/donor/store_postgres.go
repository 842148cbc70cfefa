package donor

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

// PostgresStore persists donor profiles in PostgreSQL. This store is pure
// I/O; domain logic (merge rules, authorization) stays in callbacks supplied
// by the service. Per-key atomicity comes from row locks inside a transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const donorColumns = `id, name, blood_type, location, contact_info,
	no_chronic_illness, no_recent_surgery, eligible_to_donate, health_notes,
	donation_history, last_donation_at, availability, owner`

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE id = $1`
	d, err := scanDonor(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find donor: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, incoming *Donor, authorize func(existing *Donor) error) (*Donor, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + donorColumns + ` FROM donors WHERE id = $1 FOR UPDATE`
	existing, err := scanDonor(tx.QueryRowContext(ctx, query, incoming.ID))
	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = true
	case err != nil:
		return nil, false, fmt.Errorf("lock donor for upsert: %w", err)
	default:
		if authorize != nil {
			if err := authorize(existing); err != nil {
				return nil, false, err
			}
		}
		incoming.MergeExisting(existing)
	}

	upsert := `
		INSERT INTO donors (` + donorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			blood_type = EXCLUDED.blood_type,
			location = EXCLUDED.location,
			contact_info = EXCLUDED.contact_info,
			no_chronic_illness = EXCLUDED.no_chronic_illness,
			no_recent_surgery = EXCLUDED.no_recent_surgery,
			eligible_to_donate = EXCLUDED.eligible_to_donate,
			health_notes = EXCLUDED.health_notes,
			availability = EXCLUDED.availability
	`
	if _, err := tx.ExecContext(ctx, upsert,
		incoming.ID,
		incoming.Name,
		incoming.BloodType.String(),
		incoming.Location,
		incoming.ContactInfo,
		incoming.HealthChecklist.NoChronicIllness,
		incoming.HealthChecklist.NoRecentSurgery,
		incoming.HealthChecklist.EligibleToDonate,
		incoming.HealthChecklist.Notes,
		pq.Array(incoming.DonationHistory),
		incoming.LastDonationAt,
		incoming.Availability,
		incoming.Owner.String(),
	); err != nil {
		return nil, false, fmt.Errorf("upsert donor: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit upsert: %w", err)
	}
	return incoming, created, nil
}

func (s *PostgresStore) Execute(ctx context.Context, id string, validate func(*Donor) error, mutate func(*Donor)) (*Donor, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin execute: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + donorColumns + ` FROM donors WHERE id = $1 FOR UPDATE`
	d, err := scanDonor(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock donor: %w", err)
	}
	if validate != nil {
		if err := validate(d); err != nil {
			return nil, err
		}
	}
	mutate(d)

	update := `
		UPDATE donors SET
			name = $2,
			blood_type = $3,
			location = $4,
			contact_info = $5,
			no_chronic_illness = $6,
			no_recent_surgery = $7,
			eligible_to_donate = $8,
			health_notes = $9,
			donation_history = $10,
			last_donation_at = $11,
			availability = $12
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update,
		d.ID,
		d.Name,
		d.BloodType.String(),
		d.Location,
		d.ContactInfo,
		d.HealthChecklist.NoChronicIllness,
		d.HealthChecklist.NoRecentSurgery,
		d.HealthChecklist.EligibleToDonate,
		d.HealthChecklist.Notes,
		pq.Array(d.DonationHistory),
		d.LastDonationAt,
		d.Availability,
	); err != nil {
		return nil, fmt.Errorf("update donor: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit execute: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors ORDER BY lower(name) ASC`
	return s.queryDonors(ctx, query)
}

func (s *PostgresStore) ListByBloodType(ctx context.Context, bt domain.BloodType) ([]*Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE blood_type = $1 ORDER BY lower(name) ASC`
	return s.queryDonors(ctx, query, bt.String())
}

func (s *PostgresStore) ListByAvailability(ctx context.Context, available bool) ([]*Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE availability = $1 ORDER BY lower(name) ASC`
	return s.queryDonors(ctx, query, available)
}

func (s *PostgresStore) queryDonors(ctx context.Context, query string, args ...any) ([]*Donor, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	defer rows.Close()

	var donors []*Donor
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		donors = append(donors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donors: %w", err)
	}
	return donors, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonor(row rowScanner) (*Donor, error) {
	var (
		d         Donor
		bloodType string
		owner     string
		history   pq.StringArray
		lastAt    sql.NullTime
	)
	if err := row.Scan(
		&d.ID,
		&d.Name,
		&bloodType,
		&d.Location,
		&d.ContactInfo,
		&d.HealthChecklist.NoChronicIllness,
		&d.HealthChecklist.NoRecentSurgery,
		&d.HealthChecklist.EligibleToDonate,
		&d.HealthChecklist.Notes,
		&history,
		&lastAt,
		&d.Availability,
		&owner,
	); err != nil {
		return nil, err
	}
	d.BloodType = domain.BloodType(bloodType)
	d.Owner = requestcontext.Principal(owner)
	d.DonationHistory = []string(history)
	if lastAt.Valid {
		t := lastAt.Time
		d.LastDonationAt = &t
	}
	return &d, nil
}
