package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateOrder is returned when a sibling already holds the requested order.
	ErrDuplicateOrder = errors.New("order already taken by a sibling")
	// ErrParentNotFound is returned when the referenced survey or section does not exist.
	ErrParentNotFound = errors.New("parent entity does not exist")
)

// translate maps constraint violations onto repository errors.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicateOrder
		case "23503":
			return ErrParentNotFound
		}
	}
	return err
}
