package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastaff/gatekeeper/internal/models"
	"github.com/vastaff/gatekeeper/internal/storage"
)

type fakeProfileRepo struct {
	va        map[int64]*models.VAProfile
	employers map[int64]*models.EmployerProfile
	err       error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		va:        map[int64]*models.VAProfile{},
		employers: map[int64]*models.EmployerProfile{},
	}
}

func (f *fakeProfileRepo) GetVAProfile(_ context.Context, userID int64) (*models.VAProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.va[userID]
	if !ok {
		return nil, storage.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) UpsertVAProfile(_ context.Context, profile models.VAProfile) error {
	f.va[profile.UserID] = &profile
	return nil
}

func (f *fakeProfileRepo) GetEmployerProfile(_ context.Context, userID int64) (*models.EmployerProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.employers[userID]
	if !ok {
		return nil, storage.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) UpsertEmployerProfile(_ context.Context, profile models.EmployerProfile) error {
	f.employers[profile.UserID] = &profile
	return nil
}

func TestProfileService_HasAnyProfile(t *testing.T) {
	t.Parallel()

	repo := newFakeProfileRepo()
	repo.va[1] = &models.VAProfile{UserID: 1, FullName: "Ann"}
	repo.employers[2] = &models.EmployerProfile{UserID: 2, FullName: "Bob"}

	s := NewProfileService(repo)

	exists, err := s.HasAnyProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.HasAnyProfile(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, exists, "a row in either table counts")

	exists, err = s.HasAnyProfile(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProfileService_HasAnyProfilePropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	repo := newFakeProfileRepo()
	repo.err = assert.AnError

	s := NewProfileService(repo)
	_, err := s.HasAnyProfile(context.Background(), 1)
	require.Error(t, err)
}

func TestProfileService_SaveVAProfileRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newFakeProfileRepo()
	s := NewProfileService(repo)

	err := s.SaveVAProfile(context.Background(), 7, models.VAProfileRequest{
		FullName:   "Ann",
		Headline:   "Inbox zero as a service",
		Skills:     []string{"email", "calendar"},
		HourlyRate: 25,
	})
	require.NoError(t, err)

	got, err := s.GetVAProfile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FullName)
	assert.Equal(t, []string{"email", "calendar"}, got.Skills)
}

func TestVACompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile models.VAProfile
		want    int
	}{
		{"empty", models.VAProfile{}, 0},
		{"name only", models.VAProfile{FullName: "Ann"}, 20},
		{
			"name headline and skills",
			models.VAProfile{FullName: "Ann", Headline: "VA", Skills: []string{"email"}},
			55,
		},
		{
			"complete",
			models.VAProfile{
				FullName:   "Ann",
				Headline:   "VA",
				Bio:        "10 years of ops work",
				Skills:     []string{"email"},
				HourlyRate: 25,
				ResumeURL:  "https://example.com/cv.pdf",
			},
			100,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, VACompletion(&tt.profile))
		})
	}
}

func TestEmployerCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile models.EmployerProfile
		want    int
	}{
		{"empty", models.EmployerProfile{}, 0},
		{"company only", models.EmployerProfile{CompanyName: "Acme"}, 35},
		{"name and bio", models.EmployerProfile{FullName: "Bob", Bio: "We hire VAs"}, 65},
		{
			"complete",
			models.EmployerProfile{FullName: "Bob", CompanyName: "Acme", Bio: "We hire VAs"},
			100,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, EmployerCompletion(&tt.profile))
		})
	}
}
