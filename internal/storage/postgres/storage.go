package postgres

import (
	"database/sql"
)

type Storage struct {
	db *sql.DB
	*UserRepository
	*ProfileRepository
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{
		db:                db,
		UserRepository:    NewUserRepository(db),
		ProfileRepository: NewProfileRepository(db),
	}
}
