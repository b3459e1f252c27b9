package models

import (
	"strconv"
	"time"
)

type Role string

const (
	RoleEmployer Role = "employer"
	RoleVA       Role = "va"
)

func (r Role) Valid() bool {
	return r == RoleEmployer || r == RoleVA
}

// DashboardPath возвращает корень дашборда для роли.
func (r Role) DashboardPath() string {
	return "/dashboard/" + string(r)
}

func (r Role) ProfileEditPath() string {
	return r.DashboardPath() + "/profile/edit"
}

const (
	MwPrincipalKey = "principal"

	CSRFHeader         = "x-csrf-token"
	SessionCookie      = "session"
	LastActivityCookie = "last_activity"
)

// Principal - аутентифицированная личность запроса.
// Резолвится заново на каждый запрос, нигде не кэшируется.
type Principal struct {
	UserID    int64
	Role      Role
	SessionID string // JTI сессионного токена
}

// CSRFKey - идентификатор, под которым хранится CSRF токен этой сессии.
func (p *Principal) CSRFKey() string {
	return strconv.FormatInt(p.UserID, 10)
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
