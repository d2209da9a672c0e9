//go:build unit

package infra_test

import (
	"errors"
	"testing"

	"school-notifier/internal/infra"
	"school-notifier/internal/pkg/errs"
	"school-notifier/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapRepoErr(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		kind         []infra.RepositoryErrorKind
		wantKind     infra.RepositoryErrorKind
		wantNotFound bool
	}{
		{name: "no rows becomes not found", err: pgx.ErrNoRows, wantKind: infra.KindNotFound, wantNotFound: true},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, wantKind: infra.KindDuplicateKey},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, wantKind: infra.KindForeignKeyViolated},
		{name: "other errors are db failures", err: errors.New("conn reset"), wantKind: infra.KindDBFailure},
		{name: "explicit kind wins", err: errors.New("missing"), kind: []infra.RepositoryErrorKind{infra.KindNotFound}, wantKind: infra.KindNotFound, wantNotFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := infra.WrapRepoErr("failed to load", tt.err, tt.kind...)

			assert.True(t, infra.IsKind(err, tt.wantKind))
			assert.Equal(t, tt.wantNotFound, errs.Is(err, shared.ErrNotFound))
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "failed to load")
		})
	}
}
