package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/vastaff/gatekeeper/internal/models"
	"github.com/vastaff/gatekeeper/internal/storage"
)

type ProfileRepository struct {
	db storage.DBTX
}

func NewProfileRepository(db storage.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetVAProfile(ctx context.Context, userID int64) (*models.VAProfile, error) {
	var profile models.VAProfile
	var skills pq.StringArray
	query := `SELECT user_id, full_name, headline, bio, skills, hourly_rate, resume_url, updated_at FROM va_profiles WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.FullName,
		&profile.Headline,
		&profile.Bio,
		&skills,
		&profile.HourlyRate,
		&profile.ResumeURL,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get va profile: %w", err)
	}
	profile.Skills = skills
	return &profile, nil
}

func (r *ProfileRepository) UpsertVAProfile(ctx context.Context, profile models.VAProfile) error {
	query := `INSERT INTO va_profiles (user_id, full_name, headline, bio, skills, hourly_rate, resume_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			headline = EXCLUDED.headline,
			bio = EXCLUDED.bio,
			skills = EXCLUDED.skills,
			hourly_rate = EXCLUDED.hourly_rate,
			resume_url = EXCLUDED.resume_url,
			updated_at = now()`
	_, err := r.db.ExecContext(
		ctx,
		query,
		profile.UserID,
		profile.FullName,
		profile.Headline,
		profile.Bio,
		pq.StringArray(profile.Skills),
		profile.HourlyRate,
		profile.ResumeURL,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert va profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetEmployerProfile(ctx context.Context, userID int64) (*models.EmployerProfile, error) {
	var profile models.EmployerProfile
	query := `SELECT user_id, full_name, company_name, bio, updated_at FROM employer_profiles WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.FullName,
		&profile.CompanyName,
		&profile.Bio,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get employer profile: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) UpsertEmployerProfile(ctx context.Context, profile models.EmployerProfile) error {
	query := `INSERT INTO employer_profiles (user_id, full_name, company_name, bio, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			company_name = EXCLUDED.company_name,
			bio = EXCLUDED.bio,
			updated_at = now()`
	_, err := r.db.ExecContext(
		ctx,
		query,
		profile.UserID,
		profile.FullName,
		profile.CompanyName,
		profile.Bio,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert employer profile: %w", err)
	}
	return nil
}
