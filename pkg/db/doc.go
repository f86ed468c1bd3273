// Package db is the database facade: a database/sql handle that records
// and logs every statement it executes.
//
// The backend is chosen by Config.Type. PostgreSQL goes through a pgx pool
// bridged into database/sql; SQLite uses the pure Go modernc driver.
//
//	DB_TYPE      postgres | sqlite (empty: no database)
//	DB_HOST      server host (default localhost)
//	DB_PORT      server port (default 5432)
//	DB_NAME      database name, or the sqlite file (":memory:" works)
//	DB_USER      user
//	DB_PWD       password
//	DB_CHARSET   client encoding (default utf8)
//	DATABASE_URL full connection string, overrides the fields above
//
// Usage:
//
//	database, err := db.Open(ctx, cfg.DB, db.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer database.Close()
//
//	row := database.QueryRow(ctx, "SELECT title FROM news WHERE id = ?", id)
//	log.Debug("last statement", "sql", database.LastQuery())
//
// Statements are logged at debug level with an "sql" attribute and kept in
// a bounded history returned by Queries.
//
// A [Registry] shares one DB per "host:port" across the application, and
// [Migrate] applies goose migrations from an fs.FS:
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	sub, _ := fs.Sub(migrations, "migrations")
//	err := db.Migrate(ctx, database, sub, "schema_migrations", log)
package db
