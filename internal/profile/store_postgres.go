package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lifelink/pkg/domain"
	"lifelink/pkg/platform/sentinel"
	"lifelink/pkg/requestcontext"
)

// PostgresStore persists user profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, p *UserProfile) error {
	query := `
		INSERT INTO user_profiles (principal, name, role, contact_info, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (principal) DO UPDATE SET
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			contact_info = EXCLUDED.contact_info,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		p.Principal.String(), p.Name, p.Role.String(), p.ContactInfo, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByPrincipal(ctx context.Context, principal requestcontext.Principal) (*UserProfile, error) {
	query := `
		SELECT principal, name, role, contact_info, updated_at
		FROM user_profiles
		WHERE principal = $1
	`
	var (
		p            UserProfile
		rawPrincipal string
		rawRole      string
	)
	err := s.db.QueryRowContext(ctx, query, principal.String()).
		Scan(&rawPrincipal, &p.Name, &rawRole, &p.ContactInfo, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	p.Principal = requestcontext.Principal(rawPrincipal)
	p.Role = domain.ProfileRole(rawRole)
	return &p, nil
}
