package repo

import (
	"errors"

	"entgo.io/ent/dialect/sql/sqlgraph"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate reports a unique constraint violation, most notably the
	// one-occupying-appointment-per-slot index.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStale reports that a conditional update matched no row because the
	// record changed since it was read.
	ErrStale = errors.New("record changed concurrently")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }

// mapWriteError translates driver constraint failures into package errors.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if sqlgraph.IsUniqueConstraintError(err) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}
