package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vastaff/gatekeeper/internal/models"
	"github.com/vastaff/gatekeeper/internal/storage"
)

// Profile completion weights, in percent. Существование строки профиля
// открывает дашборд; score - просто подсказка пользователю.
const (
	vaWeightName     = 20
	vaWeightHeadline = 15
	vaWeightBio      = 15
	vaWeightSkills   = 20
	vaWeightRate     = 15
	vaWeightResume   = 15

	employerWeightName    = 25
	employerWeightCompany = 35
	employerWeightBio     = 40
)

type ProfileService struct {
	profiles storage.ProfileRepository
}

func NewProfileService(profiles storage.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// HasAnyProfile проверяет обе таблицы: для роли должна существовать ровно
// одна строка, но проверяются обе для устойчивости.
func (s *ProfileService) HasAnyProfile(ctx context.Context, userID int64) (bool, error) {
	_, err := s.profiles.GetVAProfile(ctx, userID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, storage.ErrProfileNotFound) {
		return false, fmt.Errorf("check va profile: %w", err)
	}

	_, err = s.profiles.GetEmployerProfile(ctx, userID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, storage.ErrProfileNotFound) {
		return false, fmt.Errorf("check employer profile: %w", err)
	}

	return false, nil
}

func (s *ProfileService) GetVAProfile(ctx context.Context, userID int64) (*models.VAProfile, error) {
	return s.profiles.GetVAProfile(ctx, userID)
}

func (s *ProfileService) GetEmployerProfile(ctx context.Context, userID int64) (*models.EmployerProfile, error) {
	return s.profiles.GetEmployerProfile(ctx, userID)
}

func (s *ProfileService) SaveVAProfile(ctx context.Context, userID int64, req models.VAProfileRequest) error {
	return s.profiles.UpsertVAProfile(ctx, models.VAProfile{
		UserID:     userID,
		FullName:   req.FullName,
		Headline:   req.Headline,
		Bio:        req.Bio,
		Skills:     req.Skills,
		HourlyRate: req.HourlyRate,
		ResumeURL:  req.ResumeURL,
	})
}

func (s *ProfileService) SaveEmployerProfile(ctx context.Context, userID int64, req models.EmployerProfileRequest) error {
	return s.profiles.UpsertEmployerProfile(ctx, models.EmployerProfile{
		UserID:      userID,
		FullName:    req.FullName,
		CompanyName: req.CompanyName,
		Bio:         req.Bio,
	})
}

// VACompletion возвращает взвешенный процент заполненности профиля VA.
func VACompletion(p *models.VAProfile) int {
	score := 0
	if p.FullName != "" {
		score += vaWeightName
	}
	if p.Headline != "" {
		score += vaWeightHeadline
	}
	if p.Bio != "" {
		score += vaWeightBio
	}
	if len(p.Skills) > 0 {
		score += vaWeightSkills
	}
	if p.HourlyRate > 0 {
		score += vaWeightRate
	}
	if p.ResumeURL != "" {
		score += vaWeightResume
	}
	return score
}

func EmployerCompletion(p *models.EmployerProfile) int {
	score := 0
	if p.FullName != "" {
		score += employerWeightName
	}
	if p.CompanyName != "" {
		score += employerWeightCompany
	}
	if p.Bio != "" {
		score += employerWeightBio
	}
	return score
}
