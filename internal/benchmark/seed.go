package benchmark

import (
	"context"
	"fmt"

	"tidb-orm/internal/dbexec"
	"tidb-orm/internal/naming"
	"tidb-orm/internal/orm"
	"tidb-orm/internal/sqlutil"
)

// tableDDL renders the sample tables under the current entity names. The
// planets table carries no foreign key constraint so dangling references can
// be seeded on purpose.
func tableDDL() []string {
	galaxies := galaxySchema().Name
	planets := planetSchema().Name
	foreignKey := naming.ForeignKeyColumn("galaxy")
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s ("+
			"`id` BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY, "+
			"`name` VARCHAR(255) NOT NULL)",
			sqlutil.QuoteIdentifier(galaxies)),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s ("+
			"`id` BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY, "+
			"`name` VARCHAR(255) NOT NULL, "+
			"%s BIGINT NULL, "+
			"KEY %s (%s))",
			sqlutil.QuoteIdentifier(planets),
			sqlutil.QuoteIdentifier(foreignKey),
			sqlutil.QuoteIdentifier("idx_"+planets+"_"+foreignKey),
			sqlutil.QuoteIdentifier(foreignKey)),
	}
}

// EnsureTables creates the sample tables when they do not exist.
func EnsureTables(ctx context.Context, executor dbexec.QueryExecutor) error {
	for _, ddl := range tableDDL() {
		if _, err := executor.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create sample tables: %w", err)
		}
	}
	return nil
}

// Seed inserts galaxies, each with planetsPerGalaxy planets pointing at it.
func Seed(ctx context.Context, db *orm.Database, galaxies, planetsPerGalaxy int) error {
	for g := 1; g <= galaxies; g++ {
		galaxy := &Galaxy{Name: fmt.Sprintf("Galaxy %d", g)}
		if err := orm.Create(ctx, db, galaxy); err != nil {
			return err
		}
		galaxyID, err := orm.RequireID[int64](galaxy)
		if err != nil {
			return err
		}

		for p := 1; p <= planetsPerGalaxy; p++ {
			planet := orm.New[*Planet]()
			planet.Name = fmt.Sprintf("Planet %d-%d", g, p)
			planet.Galaxy.SetID(galaxyID)
			if err := orm.Create(ctx, db, planet); err != nil {
				return err
			}
		}
	}
	return nil
}
