package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Fulfillment-api/internal/domain"
)

func TestMapError_Concurrencia(t *testing.T) {
	for _, code := range []string{codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable} {
		err := mapError(&pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, domain.ErrConcurrencyConflict, code)
		var pgErr *pgconn.PgError
		assert.True(t, errors.As(err, &pgErr), "conserva el error original")
	}

	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, error(other), mapError(other))
	assert.NoError(t, mapError(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.False(t, isUniqueViolation(errors.New("otro")))
}
