//go:build unit

package pgconv_test

import (
	"testing"
	"time"

	"school-notifier/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID(t *testing.T) {
	assert.Nil(t, pgconv.UUIDPtrFromPgtype(pgtype.UUID{}))
	assert.False(t, pgconv.UUIDPtrToPgtype(nil).Valid)

	id := uuid.New()
	pu := pgconv.UUIDPtrToPgtype(&id)
	require.True(t, pu.Valid)
	got := pgconv.UUIDPtrFromPgtype(pu)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)
}

func TestTime(t *testing.T) {
	assert.Nil(t, pgconv.TimePtrFromPgtype(pgtype.Timestamptz{}))
	assert.False(t, pgconv.TimePtrToPgtype(nil).Valid)

	ts := time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC)
	pt := pgconv.TimePtrToPgtype(&ts)
	require.True(t, pt.Valid)
	got := pgconv.TimePtrFromPgtype(pt)
	require.NotNil(t, got)
	assert.True(t, ts.Equal(*got))
}
