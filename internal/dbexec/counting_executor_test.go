package dbexec

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountingExecutor(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 2")).
		WillReturnError(errors.New("boom"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `planets`")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	executor := NewCountingExecutor(NewStandardExecutor(db))
	ctx := context.Background()

	rows, err := executor.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, rows.Close())

	_, err = executor.QueryContext(ctx, "SELECT 2")
	require.Error(t, err)

	result, err := executor.ExecContext(ctx, "DELETE FROM `planets`")
	require.NoError(t, err)
	affected, err := result.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)

	assert.Equal(t, int64(2), executor.Queries())
	assert.Equal(t, int64(1), executor.Statements())

	assert.Equal(t, int64(2), executor.Reset())
	assert.Zero(t, executor.Queries())
	assert.Zero(t, executor.Statements())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountingExecutorConcurrentUse(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	const workers = 8
	for i := 0; i < workers; i++ {
		mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	}

	executor := NewCountingExecutor(NewStandardExecutor(db))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := executor.QueryContext(context.Background(), "SELECT 1")
			if err == nil {
				_ = rows.Close()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers), executor.Queries())
}
