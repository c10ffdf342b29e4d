package setcalc

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

func oven() domain.ComponentRecord {
	return domain.ComponentRecord{
		VariantID:        101,
		Name1:            "Oven A",
		Name2:            "Oven A2",
		Name3:            "Oven A3",
		ShortDescription: "Hot",
		ExternalItemID:   "EXT-A",
		Model:            "MA",
		VariantName:      "black",
		ProducerName:     "Acme",
		PurchasePrice:    decimal.RequireFromString("199.99"),
		WeightG:          600,
		WidthMM:          595,
		LengthMM:         570,
		HeightMM:         590,
	}
}

func hob() domain.ComponentRecord {
	return domain.ComponentRecord{
		VariantID:        202,
		Name1:            "Hob B",
		Name2:            "Hob B2",
		Name3:            "Hob B3",
		ShortDescription: "Flat",
		ExternalItemID:   "EXT-B",
		Model:            "MB",
		VariantName:      "glass",
		ProducerName:     "Other",
		PurchasePrice:    decimal.RequireFromString("100.02"),
		WeightG:          300,
		WidthMM:          10,
		LengthMM:         20,
		HeightMM:         30,
	}
}

func testJob(ids ...int64) *domain.SetJob {
	return &domain.SetJob{
		ID:          42,
		RequestedBy: 8,
		SetType:     "423;428",
		Status:      domain.StatusOpen,
		Items:       domain.NewItems(ids),
		CreatedAt:   time.Date(2025, 11, 14, 9, 5, 0, 0, time.UTC),
	}
}

func TestAggregate_MergesInComponentOrder(t *testing.T) {
	job := testJob(101, 202)
	rec, err := Aggregate(job, []domain.ComponentRecord{oven(), hob()}, DefaultAggregateOptions())
	require.NoError(t, err)

	assert.Equal(t, "Herdset Oven A + Hob B", rec.Name1)
	assert.Equal(t, "Herdset Oven A2 + Hob B2", rec.Name2)
	assert.Equal(t, "Herdset Oven A3 + Hob B3", rec.Name3)
	assert.Equal(t, "Hot\n---\nFlat", rec.ShortDescription)
	assert.Equal(t, "EXT-A + EXT-B", rec.ExternalItemID)
	assert.Equal(t, "MA + MB", rec.Model)
	assert.Equal(t, "black + glass", rec.VariantName)
	assert.Equal(t, "300,01", domain.FormatCommaPrice(rec.PurchasePrice))
	assert.Equal(t, int64(900), rec.WeightG)
	assert.Equal(t, "21;12", rec.ShippingProfile)
	assert.Equal(t, []int64{101, 202}, rec.SourceVariantIDs)

	// Dimensions and producer come from the first component only.
	assert.Equal(t, int64(595), rec.WidthMM)
	assert.Equal(t, int64(570), rec.LengthMM)
	assert.Equal(t, int64(590), rec.HeightMM)
	assert.Equal(t, "Acme", rec.ProducerName)

	reversed, err := Aggregate(testJob(202, 101), []domain.ComponentRecord{hob(), oven()}, DefaultAggregateOptions())
	require.NoError(t, err)
	assert.Equal(t, "Herdset Hob B + Oven A", reversed.Name1)
	assert.Equal(t, int64(10), reversed.WidthMM)
}

func TestAggregate_UnknownSetTypePassesThrough(t *testing.T) {
	job := testJob(101, 202)
	job.SetType = "custom"
	rec, err := Aggregate(job, []domain.ComponentRecord{oven(), hob()}, DefaultAggregateOptions())
	require.NoError(t, err)
	assert.Equal(t, "custom Oven A + Hob B", rec.Name1)
}

func TestAggregate_RepeatedComponent(t *testing.T) {
	job := testJob(101, 101, 202)
	comps, err := ExpandComponents(job.VariantIDs(), []domain.ComponentRecord{hob(), oven()})
	require.NoError(t, err)

	rec, err := Aggregate(job, comps, DefaultAggregateOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(1500), rec.WeightG)
	assert.Equal(t, "12", rec.ShippingProfile)
	assert.Equal(t, "500,00", domain.FormatCommaPrice(rec.PurchasePrice))
	assert.Equal(t, "Herdset Oven A + Oven A + Hob B", rec.Name1)
}

func TestAggregate_Failures(t *testing.T) {
	_, err := Aggregate(testJob(101), []domain.ComponentRecord{oven()}, DefaultAggregateOptions())
	assert.True(t, errors.Is(err, domain.ErrInsufficientComponents))

	_, err = Aggregate(testJob(101, 202), []domain.ComponentRecord{oven()}, DefaultAggregateOptions())
	assert.True(t, errors.Is(err, domain.ErrMissingComponent))

	_, err = ExpandComponents([]int64{101, 303}, []domain.ComponentRecord{oven()})
	assert.True(t, errors.Is(err, domain.ErrMissingComponent))
	assert.Contains(t, err.Error(), "303")
}

func TestSetRecord_Row(t *testing.T) {
	rec, err := Aggregate(testJob(101, 202), []domain.ComponentRecord{oven(), hob()}, DefaultAggregateOptions())
	require.NoError(t, err)
	rec.Barcode = "4260000000001"

	row := rec.Row()
	require.Len(t, row, len(domain.SetRecordHeader))
	assert.Equal(t, "42", row[0])
	assert.Equal(t, "300,01", row[8])
	assert.Equal(t, "101, 202", row[15])
	assert.Equal(t, "4260000000001", row[17])
	assert.Equal(t, "8", row[18])
	assert.Equal(t, "14.11.2025 09:05", row[19])
}

func TestDistinctIDs(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, DistinctIDs([]int64{3, 1, 3, 2, 1}))
}
