package service

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vastaff/gatekeeper/internal/models"
	"github.com/vastaff/gatekeeper/internal/storage"
	"github.com/vastaff/gatekeeper/internal/util"
)

var (
	ErrInvalidSigningMethod = errors.New("invalid signing method")
	ErrInvalidUserID        = errors.New("invalid userID")
)

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IdentityService - адаптер identity provider'а: выпускает, резолвит и
// отзывает сессионные токены. Gatekeeper спрашивает его на каждый запрос.
type IdentityService struct {
	secretKey     []byte
	sessionTTL    time.Duration
	secureCookies bool
	revoked       storage.RevocationList
}

func NewIdentityService(cfg *util.SessionConfig, revoked storage.RevocationList) *IdentityService {
	return &IdentityService{
		secretKey:     cfg.SecretKey,
		sessionTTL:    cfg.SessionTTL,
		secureCookies: cfg.SecureCookies,
		revoked:       revoked,
	}
}

// IssueSession выписывает HS512 session JWT и кладет его в куку.
func (s *IdentityService) IssueSession(c echo.Context, user *models.User) error {
	now := time.Now()
	claims := &sessionClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signedToken, err := token.SignedString(s.secretKey)
	if err != nil {
		return fmt.Errorf("signed string: %w", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     models.SessionCookie,
		Value:    signedToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.sessionTTL.Seconds()),
	})

	return nil
}

// Resolve возвращает principal запроса или nil для анонимного.
// Невалидный/истекший токен - это анонимный запрос, а не ошибка; ошибкой
// считается только недоступность revocation-списка (fail-closed у вызывающего).
func (s *IdentityService) Resolve(c echo.Context) (*models.Principal, error) {
	cookie, err := c.Cookie(models.SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithLeeway(util.JWTLeeWay),
		jwt.WithExpirationRequired(),
	}

	parsedToken, err := jwt.ParseWithClaims(
		cookie.Value,
		&sessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS512.Alg() {
				return nil, ErrInvalidSigningMethod
			}
			return s.secretKey, nil
		},
		opts...,
	)
	if err != nil || parsedToken == nil || !parsedToken.Valid {
		return nil, nil
	}

	claims, ok := parsedToken.Claims.(*sessionClaims)
	if !ok || claims.Subject == "" || claims.ID == "" {
		return nil, nil
	}

	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, nil
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	isRevoked, err := s.revoked.IsRevoked(c.Request().Context(), claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check session revocation: %w", err)
	}
	if isRevoked {
		return nil, nil
	}

	return &models.Principal{
		UserID:    userID,
		Role:      role,
		SessionID: claims.ID,
	}, nil
}

// SignOut отзывает текущую сессию до конца её срока и стирает куки.
func (s *IdentityService) SignOut(c echo.Context) error {
	defer s.clearCookies(c)

	cookie, err := c.Cookie(models.SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	claims, err := s.claimsFromToken(cookie.Value)
	if err != nil {
		// Мусорная кука - отзывать нечего.
		return nil
	}

	ttl := s.sessionTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.revoked.Revoke(c.Request().Context(), claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *IdentityService) claimsFromToken(token string) (*sessionClaims, error) {
	parsedToken, _, err := new(jwt.Parser).ParseUnverified(token, &sessionClaims{})
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := parsedToken.Claims.(*sessionClaims)
	if !ok || claims.ID == "" {
		return nil, errors.New("invalid session claims")
	}

	return claims, nil
}

func (s *IdentityService) clearCookies(c echo.Context) {
	for _, name := range []string{models.SessionCookie, models.LastActivityCookie} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secureCookies,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}
