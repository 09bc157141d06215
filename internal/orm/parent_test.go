package orm

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidb-orm/internal/ormerrors"
	"tidb-orm/internal/record"
	"tidb-orm/internal/schema"
)

func TestNewBindsRelationshipNames(t *testing.T) {
	planet := New[*Planet]()
	assert.Equal(t, "galaxy", planet.Galaxy.Name())
	assert.Equal(t, "galaxy_id", planet.Galaxy.FieldName())
	assert.Equal(t, "galaxy", planet.Galaxy.Key())

	wormhole := New[*Wormhole]()
	assert.Equal(t, "origin_id", wormhole.Origin.FieldName())
	assert.Equal(t, "destination_id", wormhole.Destination.FieldName())
}

type taggedMoon struct {
	Planet
	Host  Parent[int64, *Planet] `orm:"host_planet"`
	Orbit Parent[int64, *Planet]
}

func TestBindHonoursTagsAndExistingNames(t *testing.T) {
	moon := &taggedMoon{Orbit: NewParent[int64, *Planet]("primary")}
	Bind(moon)

	assert.Equal(t, "host_planet_id", moon.Host.FieldName())
	assert.Equal(t, "primary_id", moon.Orbit.FieldName(), "explicit names are kept")
}

// moon names its relationship after the column and declares no host_id.
type moon struct {
	ID       *int64
	GalaxyID Parent[int64, *Galaxy]
	Host     Parent[int64, *Planet]
}

func (m *moon) Schema() schema.Entity {
	return schema.Entity{Name: "moons", Fields: []schema.Field{
		{Name: "id", IsPrimaryKey: true},
		{Name: "galaxy_id"},
	}}
}
func (m *moon) Output(*Row) error     { return nil }
func (m *moon) Encode(*Encoder) error { return nil }

func TestBindStripsForeignKeySuffix(t *testing.T) {
	m := New[*moon]()
	assert.Equal(t, "galaxy", m.GalaxyID.Name())
	assert.Equal(t, "galaxy_id", m.GalaxyID.FieldName())
	assert.Equal(t, "galaxy", m.GalaxyID.Key())
}

func TestEagerLoadRequiresForeignKeyColumn(t *testing.T) {
	db, _ := newMockDatabase(t)

	_, err := Query[*moon](db).With(func(m *moon) EagerLoadable { return &m.Host }, Join).SQL()
	require.ErrorIs(t, err, ormerrors.ErrMissingField)
	assert.EqualError(t, err, "field missing: moons.host_id")

	built, err := Query[*moon](db).With(func(m *moon) EagerLoadable { return &m.GalaxyID }, Subquery).SQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT `moons`.`id`, `moons`.`galaxy_id` FROM `moons`", built.SQL)
}

type notAStruct string

func (notAStruct) Schema() schema.Entity { return schema.Entity{} }
func (notAStruct) Output(*Row) error     { return nil }
func (notAStruct) Encode(*Encoder) error { return nil }

func TestNewPanicsForNonStructModels(t *testing.T) {
	assert.Panics(t, func() { New[notAStruct]() })
}

func TestForeignKeyFieldReads(t *testing.T) {
	field := NewForeignKeyField[int64]("galaxy_id")

	_, ok := field.Value()
	assert.False(t, ok)
	assert.Equal(t, int64(0), field.Get())

	field.Set(10)
	assert.Equal(t, int64(10), field.Get(), "unsaved fields read the pending value")
	assert.False(t, field.Bound())

	values := map[string]any{}
	field.Input(values)
	assert.Equal(t, map[string]any{"galaxy_id": int64(10)}, values)

	require.NoError(t, field.Output(NewRow(record.Record{"galaxy_id": "20"}, nil)))
	assert.True(t, field.Bound())
	assert.Equal(t, int64(20), field.Get(), "bound fields read the decoded value")

	values = map[string]any{}
	field.Input(values)
	assert.Empty(t, values, "binding discards the pending value")

	field.Set(30)
	assert.Equal(t, int64(30), field.Get())
	field.ClearInput()
	assert.Equal(t, int64(20), field.Get())

	require.NoError(t, field.Output(NewRow(record.Record{"galaxy_id": nil}, nil)))
	_, ok = field.Value()
	assert.False(t, ok, "NULL leaves the field without a value")

	err := field.Output(NewRow(record.Record{}, nil))
	assert.ErrorIs(t, err, ormerrors.ErrMissingField)
}

func TestParentQuery(t *testing.T) {
	db, _ := newMockDatabase(t)
	planet := New[*Planet]()
	planet.Galaxy.SetID(10)

	built, err := planet.Galaxy.Query(db).SQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT `galaxies`.`id`, `galaxies`.`name` FROM `galaxies` WHERE `galaxies`.`id` = ?", built.SQL)
	assert.Equal(t, []interface{}{int64(10)}, built.Args)
}

func TestParentQueryRequiresForeignKey(t *testing.T) {
	db, _ := newMockDatabase(t)
	planet := New[*Planet]()

	_, err := planet.Galaxy.Query(db).SQL()
	require.Error(t, err)
	assert.True(t, ormerrors.IsIDRequired(err))
}

func TestParentGet(t *testing.T) {
	const byID = "SELECT `galaxies`.`id`, `galaxies`.`name` FROM `galaxies` WHERE `galaxies`.`id` = ? LIMIT 1"

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDatabase(t)
		mock.ExpectQuery(regexp.QuoteMeta(byID)).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(10), "Milky Way"))

		planet := New[*Planet]()
		planet.Galaxy.SetID(10)
		galaxy, err := planet.Galaxy.Get(context.Background(), db)
		require.NoError(t, err)
		assert.Equal(t, "Milky Way", galaxy.Name)

		_, err = planet.Galaxy.EagerLoaded()
		assert.True(t, ormerrors.IsMissingEagerLoad(err), "a direct fetch does not populate the eager load")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDatabase(t)
		mock.ExpectQuery(regexp.QuoteMeta(byID)).
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

		planet := New[*Planet]()
		planet.Galaxy.SetID(99)
		_, err := planet.Galaxy.Get(context.Background(), db)
		require.Error(t, err)

		var notFound *ormerrors.NotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "galaxies", notFound.Entity)
		assert.Equal(t, "99", notFound.Key)
	})
}

func TestEncodeWithoutEagerLoad(t *testing.T) {
	planet := New[*Planet]()
	planet.ID = int64Ptr(1)
	planet.Name = "Earth"
	planet.Galaxy.SetID(10)

	data, err := MarshalModel(planet)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Earth","galaxy":{"id":10}}`, string(data))
}

func TestEncodeWithEagerLoad(t *testing.T) {
	db, mock := newMockDatabase(t)
	mock.ExpectQuery(regexp.QuoteMeta(planetsJoinGalaxies)).WillReturnRows(joinedPlanetRows())

	planets, err := Query[*Planet](db).With(withGalaxy, Join).All(context.Background())
	require.NoError(t, err)

	data, err := MarshalModel(planets[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Earth","galaxy":{"id":10,"name":"Milky Way"}}`, string(data))
}

func TestEncodeRejectsDuplicateKeys(t *testing.T) {
	enc := &Encoder{values: map[string]any{}}
	require.NoError(t, enc.Encode("galaxy", 1))
	assert.Error(t, enc.Encode("galaxy", 2))
}

func TestDecodeRelationship(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "flat", json: `{"id":1,"name":"Earth","galaxy":{"id":10}}`},
		{name: "nested", json: `{"id":1,"name":"Earth","galaxy":{"id":10,"name":"Milky Way"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planet, err := UnmarshalModel[*Planet]([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, int64(1), *planet.ID)
			assert.Equal(t, int64(10), planet.Galaxy.ID())

			_, err = planet.Galaxy.EagerLoaded()
			assert.True(t, ormerrors.IsMissingEagerLoad(err), "decoding never fabricates an eager load")
		})
	}
}

func TestDecodeRelationshipErrors(t *testing.T) {
	_, err := UnmarshalModel[*Planet]([]byte(`{"name":"Earth","galaxy":{"name":"Milky Way"}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ormerrors.ErrMissingField)
	assert.Contains(t, err.Error(), "galaxy.id")

	_, err = UnmarshalModel[*Planet]([]byte(`{"galaxy":10}`))
	assert.Error(t, err)

	planet, err := UnmarshalModel[*Planet]([]byte(`{"name":"Earth"}`))
	require.NoError(t, err)
	_, ok := planet.Galaxy.Field().Value()
	assert.False(t, ok)

	_, err = UnmarshalModel[*Wormhole]([]byte(`{}`))
	assert.Error(t, err, "models without Decode cannot be unmarshalled")
}

func TestRequireID(t *testing.T) {
	galaxy := &Galaxy{}
	_, err := RequireID[int64](galaxy)
	require.Error(t, err)
	assert.EqualError(t, err, "ID required: galaxies")

	galaxy.ID = int64Ptr(10)
	id, err := RequireID[int64](galaxy)
	require.NoError(t, err)
	assert.Equal(t, int64(10), id)
}
