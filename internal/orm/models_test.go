package orm

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"tidb-orm/internal/dbexec"
	"tidb-orm/internal/schema"
)

var galaxySchema = schema.Entity{
	Name: "galaxies",
	Fields: []schema.Field{
		{Name: "id", IsPrimaryKey: true},
		{Name: "name"},
	},
}

type Galaxy struct {
	ID   *int64
	Name string
}

func (g *Galaxy) Schema() schema.Entity { return galaxySchema }

func (g *Galaxy) PrimaryKey() (int64, bool) {
	if g.ID == nil {
		return 0, false
	}
	return *g.ID, true
}

func (g *Galaxy) Output(row *Row) error {
	id, err := DecodeOptional[int64](row, "id")
	if err != nil {
		return err
	}
	name, err := Decode[string](row, "name")
	if err != nil {
		return err
	}
	g.ID = id
	g.Name = name
	return nil
}

func (g *Galaxy) Input(values map[string]any) {
	if g.ID != nil {
		values["id"] = *g.ID
	}
	values["name"] = g.Name
}

func (g *Galaxy) Encode(enc *Encoder) error {
	if err := enc.Encode("id", g.ID); err != nil {
		return err
	}
	return enc.Encode("name", g.Name)
}

func (g *Galaxy) Decode(dec *Decoder) error {
	if _, err := dec.Decode("id", &g.ID); err != nil {
		return err
	}
	_, err := dec.Decode("name", &g.Name)
	return err
}

var planetSchema = schema.Entity{
	Name: "planets",
	Fields: []schema.Field{
		{Name: "id", IsPrimaryKey: true},
		{Name: "name"},
		{Name: "galaxy_id"},
	},
}

type Planet struct {
	ID     *int64
	Name   string
	Galaxy Parent[int64, *Galaxy]
}

func (p *Planet) Schema() schema.Entity { return planetSchema }

func (p *Planet) PrimaryKey() (int64, bool) {
	if p.ID == nil {
		return 0, false
	}
	return *p.ID, true
}

func (p *Planet) Output(row *Row) error {
	id, err := DecodeOptional[int64](row, "id")
	if err != nil {
		return err
	}
	name, err := Decode[string](row, "name")
	if err != nil {
		return err
	}
	p.ID = id
	p.Name = name
	return p.Galaxy.Output(row)
}

func (p *Planet) Input(values map[string]any) {
	if p.ID != nil {
		values["id"] = *p.ID
	}
	values["name"] = p.Name
	p.Galaxy.Input(values)
}

func (p *Planet) Encode(enc *Encoder) error {
	if err := enc.Encode("id", p.ID); err != nil {
		return err
	}
	if err := enc.Encode("name", p.Name); err != nil {
		return err
	}
	return p.Galaxy.Encode(enc)
}

func (p *Planet) Decode(dec *Decoder) error {
	if _, err := dec.Decode("id", &p.ID); err != nil {
		return err
	}
	if _, err := dec.Decode("name", &p.Name); err != nil {
		return err
	}
	return p.Galaxy.Decode(dec)
}

// Wormhole links two galaxies, so both of its relationships target the same
// referenced entity.
type Wormhole struct {
	ID          *int64
	Origin      Parent[int64, *Galaxy]
	Destination Parent[int64, *Galaxy]
}

var wormholeSchema = schema.Entity{
	Name: "wormholes",
	Fields: []schema.Field{
		{Name: "id", IsPrimaryKey: true},
		{Name: "origin_id"},
		{Name: "destination_id"},
	},
}

func (w *Wormhole) Schema() schema.Entity { return wormholeSchema }

func (w *Wormhole) PrimaryKey() (int64, bool) {
	if w.ID == nil {
		return 0, false
	}
	return *w.ID, true
}

func (w *Wormhole) Output(row *Row) error {
	id, err := DecodeOptional[int64](row, "id")
	if err != nil {
		return err
	}
	w.ID = id
	if err := w.Origin.Output(row); err != nil {
		return err
	}
	return w.Destination.Output(row)
}

func (w *Wormhole) Encode(enc *Encoder) error {
	if err := enc.Encode("id", w.ID); err != nil {
		return err
	}
	if err := w.Origin.Encode(enc); err != nil {
		return err
	}
	return w.Destination.Encode(enc)
}

const (
	planetsSQL          = "SELECT `planets`.`id`, `planets`.`name`, `planets`.`galaxy_id` FROM `planets`"
	galaxiesInSQL       = "SELECT `galaxies`.`id`, `galaxies`.`name` FROM `galaxies` WHERE `galaxies`.`id` IN (?,?)"
	planetsJoinGalaxies = "SELECT `planets`.`id`, `planets`.`name`, `planets`.`galaxy_id`, " +
		"`galaxies`.`id` AS `galaxies_id`, `galaxies`.`name` AS `galaxies_name` " +
		"FROM `planets` INNER JOIN `galaxies` ON `galaxies`.`id` = `planets`.`galaxy_id`"
)

func newMockDatabase(t *testing.T, opts ...Option) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewDatabase(dbexec.NewStandardExecutor(db), opts...), mock
}

func planetRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "galaxy_id"}).
		AddRow(int64(1), "Earth", int64(10)).
		AddRow(int64(2), "Mars", int64(10)).
		AddRow(int64(3), "Kepler-22b", int64(20))
}

func galaxyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(10), "Milky Way").
		AddRow(int64(20), "Andromeda")
}

func joinedPlanetRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "galaxy_id", "galaxies_id", "galaxies_name"}).
		AddRow(int64(1), "Earth", int64(10), int64(10), "Milky Way").
		AddRow(int64(2), "Mars", int64(10), int64(10), "Milky Way").
		AddRow(int64(3), "Kepler-22b", int64(20), int64(20), "Andromeda")
}

func withGalaxy(p *Planet) EagerLoadable { return &p.Galaxy }

func int64Ptr(v int64) *int64 { return &v }
