package orm

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	db, mock := newMockDatabase(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `planets` (`galaxy_id`,`name`) VALUES (?,?)")).
		WithArgs(int64(10), "Earth").
		WillReturnResult(sqlmock.NewResult(7, 1))

	planet := New[*Planet]()
	planet.Name = "Earth"
	planet.Galaxy.SetID(10)
	assert.False(t, planet.Galaxy.Field().Bound())

	require.NoError(t, Create(context.Background(), db, planet))
	require.NotNil(t, planet.ID)
	assert.Equal(t, int64(7), *planet.ID)
	assert.True(t, planet.Galaxy.Field().Bound())
	assert.Equal(t, int64(10), planet.Galaxy.ID())

	values := map[string]any{}
	planet.Galaxy.Input(values)
	assert.Empty(t, values, "no pending value after create")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateKeepsExplicitPrimaryKey(t *testing.T) {
	db, mock := newMockDatabase(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `galaxies` (`id`,`name`) VALUES (?,?)")).
		WithArgs(int64(10), "Milky Way").
		WillReturnResult(sqlmock.NewResult(0, 1))

	galaxy := &Galaxy{ID: int64Ptr(10), Name: "Milky Way"}
	require.NoError(t, Create(context.Background(), db, galaxy))
	assert.Equal(t, int64(10), *galaxy.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBindsModelsBuiltWithoutNew(t *testing.T) {
	db, mock := newMockDatabase(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `planets`")).
		WillReturnResult(sqlmock.NewResult(3, 1))

	planet := &Planet{Name: "Mars"}
	require.NoError(t, Create(context.Background(), db, planet))
	assert.Equal(t, "galaxy_id", planet.Galaxy.FieldName())
	_, ok := planet.Galaxy.Field().Value()
	assert.False(t, ok)
}

func TestCreateFailures(t *testing.T) {
	db, mock := newMockDatabase(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `planets`")).
		WillReturnError(errors.New("duplicate entry"))

	err := Create(context.Background(), db, &Planet{Name: "Earth"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert planets")

	err = Create(context.Background(), db, &Wormhole{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not accept input")
}
