package postgres

import (
	"database/sql"

	"muds-matching-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.JuniorRepository
	repository.SeniorRepository
	repository.MatchingRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                 db,
		JuniorRepository:   NewJuniorRepository(db),
		SeniorRepository:   NewSeniorRepository(db),
		MatchingRepository: NewMatchingRepository(db),
	}
}
