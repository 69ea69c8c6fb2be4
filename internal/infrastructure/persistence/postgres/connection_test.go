package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
)

func TestClassifyError_TransientFailuresBecomeRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"connection failure", &pgconn.PgError{Code: "08006"}},
		{"cannot connect now", &pgconn.PgError{Code: "57P03"}},
		{"serialization failure", &pgconn.PgError{Code: "40001"}},
		{"deadlock detected", &pgconn.PgError{Code: "40P01"}},
		{"too many connections", &pgconn.PgError{Code: "53300"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyError(tt.err)
			assert.True(t, shared.IsRetryable(classified))
			assert.ErrorIs(t, classified, shared.ErrStoreUnavailable)

			// Исходная ошибка драйвера остаётся в цепочке.
			var pgErr *pgconn.PgError
			assert.True(t, errors.As(classified, &pgErr))
		})
	}
}

func TestClassifyError_DeadlineBecomesTimeout(t *testing.T) {
	classified := classifyError(fmt.Errorf("exec: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, classified, shared.ErrTimeout)
	assert.True(t, shared.IsRetryable(classified))
}

func TestClassifyError_PermanentErrorsPassThrough(t *testing.T) {
	assert.NoError(t, classifyError(nil))

	noRows := classifyError(pgx.ErrNoRows)
	assert.False(t, shared.IsRetryable(noRows))
	assert.True(t, IsNoRows(noRows))

	unique := classifyError(&pgconn.PgError{Code: "23505"})
	assert.False(t, shared.IsRetryable(unique))
	assert.True(t, IsUniqueViolation(unique))
}
