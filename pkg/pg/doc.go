// Package pg connects to PostgreSQL through a pgx pool, applies embedded goose
// migrations, and classifies driver errors.
//
// The database is optional for the service: Config.Enabled reports whether a
// connection string was supplied, and callers fall back to in-memory stores
// when it was not.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if _, err := pg.Migrate(ctx, pool, db.Migrations, cfg, log); err != nil {
//		return err
//	}
package pg
