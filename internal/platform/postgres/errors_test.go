package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/debtwise/insight-api/internal/store"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, MapError(nil))

	// sql.ErrNoRows maps to not found.
	err := MapError(sql.ErrNoRows)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Connection loss maps to storage unavailable, not a miss.
	err = MapError(driver.ErrBadConn)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	// Unique violations map to duplicate.
	err = MapError(&pgconn.PgError{Code: uniqueViolationCode})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	// Constraint violations map to invalid entity.
	err = MapError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "fk_user"})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	err = MapError(&pgconn.PgError{Code: checkViolationCode})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	err = MapError(&pgconn.PgError{Code: notNullViolationCode, ColumnName: "fingerprint"})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	// SQLSTATE class 08 means the connection itself failed.
	err = MapError(&pgconn.PgError{Code: "08006"})
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	// Unknown errors pass through unchanged.
	unknown := errors.New("something unexpected")
	assert.Equal(t, unknown, MapError(unknown))
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("other")))

	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: foreignKeyViolationCode}))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: uniqueViolationCode}))

	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(store.ErrCacheEntryNotFound))
	assert.False(t, IsNotFoundError(errors.New("other")))
}
