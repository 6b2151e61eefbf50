package store

import (
	"errors"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrDuplicateID indicates a create collided with an existing document id.
	ErrDuplicateID = errors.New("store: document id already exists")
	// ErrDBRequired indicates an operation needs the raw bun handle.
	ErrDBRequired = errors.New("store: bun db required")
	// ErrRecordRequired indicates a nil record was handed to a write.
	ErrRecordRequired = errors.New("store: record required")
)

const pgUniqueViolation = "23505"

// isDuplicateKey reports primary key collisions across the supported drivers.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if repository.IsDuplicatedKey(err) {
		return true
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
