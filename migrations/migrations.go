// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed *.sql
var FS embed.FS

// Up applies every pending migration using a database/sql handle over pool.
func Up(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetLogger(&gooseLogger{log: log.Sugar()})
	goose.SetBaseFS(FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrations: set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

type gooseLogger struct {
	log *zap.SugaredLogger
}

func (l *gooseLogger) Printf(format string, v ...interface{}) { l.log.Infof(format, v...) }
func (l *gooseLogger) Fatalf(format string, v ...interface{}) { l.log.Fatalf(format, v...) }
