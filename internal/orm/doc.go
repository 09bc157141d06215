// Package orm resolves to-one relationships for batches of decoded rows.
//
// A model declares a relationship with a Parent field. Callers read or set the
// foreign key through it, build a direct query for the referenced entity, or
// read a value that was eager loaded alongside the owning rows:
//
//	planets, err := orm.Query[*Planet](db).
//		With(func(p *Planet) orm.EagerLoadable { return &p.Galaxy }, orm.Join).
//		All(ctx)
//	galaxy, err := planets[0].Galaxy.EagerLoaded()
//
// Two strategies fill the per-query EagerLoads registry. Subquery issues one
// extra IN query over the distinct foreign keys after the owning rows are
// fetched. Join folds an inner join into the owning query and decodes the
// referenced entity from alias-prefixed columns of the same rows.
//
// Resolution never issues a query. A relationship without a populated eager
// load for its current key fails with ormerrors.ErrMissingEagerLoad.
package orm
