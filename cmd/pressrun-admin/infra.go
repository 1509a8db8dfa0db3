package main

import (
	"database/sql"
	"fmt"

	"github.com/pressrun/backoffice/internal/bootstrap"
)

// connectDB opens the configured PostgreSQL database for a CLI command.
func connectDB(ctx *commandContext) (*sql.DB, error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: ctx.Config.Postgres,
		Logger:   ctx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return db, nil
}

func closeQuietly(ctx *commandContext, db *sql.DB) {
	if err := db.Close(); err != nil {
		ctx.Logger.ErrorContext(ctx.Ctx, "close db failed", "error", err)
	}
}
