// Package benchmark holds a two-table sample domain and runs the same
// owning query under each eager load strategy, so their round trips and
// results can be compared against a live database.
package benchmark

import (
	"tidb-orm/internal/naming"
	"tidb-orm/internal/orm"
	"tidb-orm/internal/schema"
)

// Entity names go through the process namer on every call, so pluralization
// overrides installed at startup apply to the sample tables.
func galaxySchema() schema.Entity {
	return schema.Entity{
		Name: naming.EntityName("Galaxy"),
		Fields: []schema.Field{
			{Name: "id", IsPrimaryKey: true},
			{Name: "name"},
		},
	}
}

func planetSchema() schema.Entity {
	return schema.Entity{
		Name: naming.EntityName("Planet"),
		Fields: []schema.Field{
			{Name: "id", IsPrimaryKey: true},
			{Name: "name"},
			{Name: naming.ForeignKeyColumn("galaxy")},
		},
	}
}

// Galaxy is the referenced side of the sample relationship.
type Galaxy struct {
	ID   *int64
	Name string
}

func (g *Galaxy) Schema() schema.Entity { return galaxySchema() }

func (g *Galaxy) PrimaryKey() (int64, bool) {
	if g.ID == nil {
		return 0, false
	}
	return *g.ID, true
}

func (g *Galaxy) Output(row *orm.Row) error {
	id, err := orm.DecodeOptional[int64](row, "id")
	if err != nil {
		return err
	}
	name, err := orm.Decode[string](row, "name")
	if err != nil {
		return err
	}
	g.ID, g.Name = id, name
	return nil
}

func (g *Galaxy) Input(values map[string]any) {
	if g.ID != nil {
		values["id"] = *g.ID
	}
	values["name"] = g.Name
}

func (g *Galaxy) Encode(enc *orm.Encoder) error {
	if err := enc.Encode("id", g.ID); err != nil {
		return err
	}
	return enc.Encode("name", g.Name)
}

func (g *Galaxy) Decode(dec *orm.Decoder) error {
	if _, err := dec.Decode("id", &g.ID); err != nil {
		return err
	}
	_, err := dec.Decode("name", &g.Name)
	return err
}

// Planet owns a nullable galaxy_id foreign key.
type Planet struct {
	ID     *int64
	Name   string
	Galaxy orm.Parent[int64, *Galaxy]
}

func (p *Planet) Schema() schema.Entity { return planetSchema() }

func (p *Planet) PrimaryKey() (int64, bool) {
	if p.ID == nil {
		return 0, false
	}
	return *p.ID, true
}

func (p *Planet) Output(row *orm.Row) error {
	id, err := orm.DecodeOptional[int64](row, "id")
	if err != nil {
		return err
	}
	name, err := orm.Decode[string](row, "name")
	if err != nil {
		return err
	}
	p.ID, p.Name = id, name
	return p.Galaxy.Output(row)
}

func (p *Planet) Input(values map[string]any) {
	if p.ID != nil {
		values["id"] = *p.ID
	}
	values["name"] = p.Name
	p.Galaxy.Input(values)
}

func (p *Planet) Encode(enc *orm.Encoder) error {
	if err := enc.Encode("id", p.ID); err != nil {
		return err
	}
	if err := enc.Encode("name", p.Name); err != nil {
		return err
	}
	return p.Galaxy.Encode(enc)
}

func (p *Planet) Decode(dec *orm.Decoder) error {
	if _, err := dec.Decode("id", &p.ID); err != nil {
		return err
	}
	if _, err := dec.Decode("name", &p.Name); err != nil {
		return err
	}
	return p.Galaxy.Decode(dec)
}

func withGalaxy(p *Planet) orm.EagerLoadable { return &p.Galaxy }
