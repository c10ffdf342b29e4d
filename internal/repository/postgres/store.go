package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harsh-BH/SetForge/internal/repository"
)

var _ repository.Store = (*pgStore)(nil)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgStore struct {
	pool *pgxpool.Pool
	db   dbtx
	tx   pgx.Tx
}

// NewStore creates a PostgreSQL-backed store over pool.
func NewStore(pool *pgxpool.Pool) repository.Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Jobs() repository.SetJobRepository {
	return &pgSetJobRepo{db: s.db}
}

func (s *pgStore) Barcodes() repository.BarcodePool {
	return &pgBarcodePool{db: s.db}
}

// InTx begins a transaction, hands a store bound to it to fn and commits when
// fn succeeds. A store that is already transactional runs fn directly.
func (s *pgStore) InTx(ctx context.Context, fn func(tx repository.Store) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&pgStore{pool: s.pool, db: tx, tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("postgres: rollback failed: %v (original err: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit tx: %w", err)
	}
	return nil
}

// advisoryLockID derives a stable advisory lock key from name.
func advisoryLockID(name string) int64 {
	sum := sha256.Sum256([]byte(name))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
