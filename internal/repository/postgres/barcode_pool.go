package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/repository"
)

var _ repository.BarcodePool = (*pgBarcodePool)(nil)

type pgBarcodePool struct {
	db dbtx
}

// ClaimNext consumes the lowest-id unused barcode. Concurrent claimers skip
// rows locked by each other, so no barcode is handed out twice.
func (p *pgBarcodePool) ClaimNext(ctx context.Context) (string, error) {
	query := `
		UPDATE set_barcode
		SET used = true, used_at = $1
		WHERE id = (
			SELECT id FROM set_barcode
			WHERE NOT used
			ORDER BY id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING barcode`

	var barcode string
	err := p.db.QueryRow(ctx, query, time.Now().UTC()).Scan(&barcode)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrMissingBarcode
	}
	if err != nil {
		return "", fmt.Errorf("postgres: claim barcode: %w", err)
	}
	return barcode, nil
}

func (p *pgBarcodePool) Peek(ctx context.Context, limit int) ([]string, error) {
	rows, err := p.db.Query(ctx, `SELECT barcode FROM set_barcode WHERE NOT used ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: peek barcodes: %w", err)
	}
	codes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: scan barcodes: %w", err)
	}
	return codes, nil
}

func (p *pgBarcodePool) CountUnused(ctx context.Context) (int64, error) {
	var n int64
	if err := p.db.QueryRow(ctx, `SELECT COUNT(*) FROM set_barcode WHERE NOT used`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count barcodes: %w", err)
	}
	return n, nil
}
