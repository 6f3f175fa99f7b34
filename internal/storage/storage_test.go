package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"eventRegistrar/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestIsUnavailable(t *testing.T) {
	t.Parallel()

	assert.False(t, IsUnavailable(nil))
	assert.False(t, IsUnavailable(errors.New("syntax error")))
	assert.False(t, IsUnavailable(models.ErrNotFound))

	assert.True(t, IsUnavailable(fmt.Errorf("query: %w", driver.ErrBadConn)))
	assert.True(t, IsUnavailable(sql.ErrConnDone))
	assert.True(t, IsUnavailable(context.DeadlineExceeded))
	assert.True(t, IsUnavailable(&net.OpError{Op: "dial", Err: errors.New("connection refused")}))
	assert.True(t, IsUnavailable(fmt.Errorf("wrapped: %w", models.ErrStoreUnavailable)))
	assert.True(t, IsUnavailable(fmt.Errorf("count: %w", errors.New("sql: database is closed"))))
}

func TestIsUnavailableClosedPool(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite", "file:closed?mode=memory")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = db.QueryContext(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}
