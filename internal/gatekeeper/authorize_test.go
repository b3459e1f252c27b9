package gatekeeper

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastaff/gatekeeper/internal/models"
)

func TestAuthorize_Redirects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		principal  *models.Principal
		hasProfile bool
		wantNext   bool
		wantTarget string
	}{
		{
			name:       "anonymous dashboard request goes to login",
			path:       "/dashboard/va",
			wantTarget: "/login",
		},
		{
			name:       "employer on va dashboard goes home",
			path:       "/dashboard/va",
			principal:  employerPrincipal(),
			hasProfile: true,
			wantTarget: "/dashboard/employer",
		},
		{
			name:       "va on employer dashboard goes home",
			path:       "/dashboard/employer",
			principal:  vaPrincipal(),
			hasProfile: true,
			wantTarget: "/dashboard/va",
		},
		{
			name:       "no profile row forces onboarding",
			path:       "/dashboard/va",
			principal:  vaPrincipal(),
			wantTarget: "/dashboard/va/profile/edit",
		},
		{
			name:      "profile edit page is reachable without a profile",
			path:      "/dashboard/va/profile/edit",
			principal: vaPrincipal(),
			wantNext:  true,
		},
		{
			name:       "completed onboarding passes through",
			path:       "/dashboard/employer",
			principal:  employerPrincipal(),
			hasProfile: true,
			wantNext:   true,
		},
		{
			name:       "authenticated login visit goes to dashboard",
			path:       "/login",
			principal:  vaPrincipal(),
			hasProfile: true,
			wantTarget: "/dashboard/va",
		},
		{
			name:       "authenticated signup visit goes to dashboard",
			path:       "/signup",
			principal:  employerPrincipal(),
			hasProfile: true,
			wantTarget: "/dashboard/employer",
		},
		{
			name:     "anonymous login visit passes",
			path:     "/login",
			wantNext: true,
		},
		{
			name:     "public paths are not gated",
			path:     "/jobs",
			wantNext: true,
		},
		{
			name:      "public paths skip the profile gate",
			path:      "/jobs",
			principal: vaPrincipal(),
			wantNext:  true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := newTestGatekeeper(&fakeIdentity{}, &fakeProfiles{exists: tt.hasProfile})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec, nextCalled, err := runStage(t, g.Authorize(), req, withPrincipal(tt.principal))
			require.NoError(t, err)

			assert.Equal(t, tt.wantNext, nextCalled)
			if tt.wantTarget != "" {
				assertRedirect(t, rec, tt.wantTarget)
			}
		})
	}
}

func TestAuthorize_ProfileStoreFailureFailsClosed(t *testing.T) {
	t.Parallel()

	g := newTestGatekeeper(&fakeIdentity{}, &fakeProfiles{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/va", nil)
	_, nextCalled, err := runStage(t, g.Authorize(), req, withPrincipal(vaPrincipal()))
	require.Error(t, err)
	assert.False(t, nextCalled)
}

func TestAuthorize_StaticAssetsBypass(t *testing.T) {
	t.Parallel()

	g := newTestGatekeeper(&fakeIdentity{}, &fakeProfiles{})

	req := httptest.NewRequest(http.MethodGet, "/static/logo.svg", nil)
	_, nextCalled, err := runStage(t, g.Authorize(), req, nil)
	require.NoError(t, err)
	assert.True(t, nextCalled)
}
