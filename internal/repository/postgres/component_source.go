package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/repository"
)

var _ repository.ComponentSource = (*pgComponentSource)(nil)

type pgComponentSource struct {
	pool *pgxpool.Pool
}

// NewComponentSource creates a catalogue reader over the items tables.
func NewComponentSource(pool *pgxpool.Pool) repository.ComponentSource {
	return &pgComponentSource{pool: pool}
}

// Lookup reads the requested variants. Numeric columns are selected as text and
// parsed into decimals.
func (s *pgComponentSource) Lookup(ctx context.Context, variantIDs []int64) ([]domain.ComponentRecord, error) {
	if len(variantIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT i.variant_id, i.name1, i.name2, i.name3, i.short_description,
		       i.external_item_id, i.model, i.variant_name, i.producer_name,
		       i.purchase_price::text, i.weight_g, i.width_mm, i.length_mm, i.height_mm,
		       i.image_urls, i.item_properties, i.variation_properties,
		       COALESCE(d.description, ''),
		       p.gross_min_price::text, p.list_price::text, p.shop_price::text,
		       p.ebay_price::text, p.amazon_price::text, p.manual_price::text,
		       p.real_price::text, p.real_lowest_price::text, p.b2b_price::text
		FROM items i
		LEFT JOIN item_descriptions d ON d.variant_id = i.variant_id
		LEFT JOIN item_prices p ON p.variant_id = i.variant_id
		WHERE i.variant_id = ANY($1)`

	rows, err := s.pool.Query(ctx, query, variantIDs)
	if err != nil {
		return nil, fmt.Errorf("postgres: lookup components: %w", err)
	}
	defer rows.Close()

	var out []domain.ComponentRecord
	for rows.Next() {
		var (
			rec      domain.ComponentRecord
			purchase string
			gross    *string
			channels = make([]*string, len(domain.Channels))
		)
		dest := []any{
			&rec.VariantID, &rec.Name1, &rec.Name2, &rec.Name3, &rec.ShortDescription,
			&rec.ExternalItemID, &rec.Model, &rec.VariantName, &rec.ProducerName,
			&purchase, &rec.WeightG, &rec.WidthMM, &rec.LengthMM, &rec.HeightMM,
			&rec.ImageURLs, &rec.ItemProperties, &rec.VariationProperties,
			&rec.Description,
			&gross,
		}
		for i := range channels {
			dest = append(dest, &channels[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("postgres: scan component: %w", err)
		}

		if rec.PurchasePrice, err = decimal.NewFromString(purchase); err != nil {
			return nil, fmt.Errorf("postgres: parse purchase price of %d: %w", rec.VariantID, err)
		}
		if gross != nil {
			if rec.GrossMinPrice, err = decimal.NewFromString(*gross); err != nil {
				return nil, fmt.Errorf("postgres: parse gross price of %d: %w", rec.VariantID, err)
			}
		}
		rec.ChannelPrices = make(map[domain.Channel]decimal.Decimal, len(domain.Channels))
		for i, c := range domain.Channels {
			if channels[i] == nil {
				continue
			}
			v, err := decimal.NewFromString(*channels[i])
			if err != nil {
				return nil, fmt.Errorf("postgres: parse %s of %d: %w", c.Column(), rec.VariantID, err)
			}
			rec.ChannelPrices[c] = v
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate components: %w", err)
	}
	return out, nil
}
