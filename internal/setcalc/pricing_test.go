package setcalc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

func priced(id int64, gross string, weightG int64) domain.ComponentRecord {
	return domain.ComponentRecord{
		VariantID:     id,
		GrossMinPrice: decimal.RequireFromString(gross),
		WeightG:       weightG,
	}
}

func TestPriceSet_TwoComponentExample(t *testing.T) {
	records := map[int64]domain.ComponentRecord{
		1: priced(1, "119.00", 2000),
		2: priced(2, "59.50", 500),
	}

	got := PriceSet([]int64{1, 2}, records, DefaultPricingOptions())

	// net 100.00 + 50.00, minus 3.60 shipping each, plus 3.60 set shipping,
	// taxed at 19%: 146.40 * 1.19 = 174.216.
	assert.Equal(t, "174.22", got.Brutto.StringFixed(2))
	assert.Empty(t, got.MissingPrice)
}

func TestPriceSet_MissingPriceForcesZero(t *testing.T) {
	for _, zeroed := range []int64{1, 2} {
		records := map[int64]domain.ComponentRecord{
			1: priced(1, "119.00", 2000),
			2: priced(2, "59.50", 500),
		}
		r := records[zeroed]
		r.GrossMinPrice = decimal.Zero
		records[zeroed] = r

		got := PriceSet([]int64{1, 2}, records, DefaultPricingOptions())
		assert.True(t, got.Brutto.IsZero(), "component %d zeroed: brutto %s", zeroed, got.Brutto)
		assert.Equal(t, []int64{zeroed}, got.MissingPrice)
	}
}

func TestPriceSet_UnknownComponentCountsAsMissing(t *testing.T) {
	records := map[int64]domain.ComponentRecord{1: priced(1, "119.00", 2000)}

	got := PriceSet([]int64{1, 9}, records, DefaultPricingOptions())
	assert.True(t, got.Brutto.IsZero())
	assert.Equal(t, []int64{9}, got.MissingPrice)
}

func TestPriceSet_ShippingFlooredAtZero(t *testing.T) {
	records := map[int64]domain.ComponentRecord{
		1: priced(1, "1.19", 100),
		2: priced(2, "119.00", 100),
	}

	got := PriceSet([]int64{1, 2}, records, DefaultPricingOptions())
	// 0 + 96.40 + 3.60 = 100.00, taxed 119.00.
	assert.Equal(t, "119.00", got.Brutto.StringFixed(2))
}

func TestPriceSet_ChannelPrices(t *testing.T) {
	a := priced(1, "119.00", 2000)
	a.ChannelPrices = map[domain.Channel]decimal.Decimal{
		domain.ChannelShop: decimal.RequireFromString("100"),
		domain.ChannelEbay: decimal.Zero,
	}
	b := priced(2, "59.50", 500)
	b.ChannelPrices = map[domain.Channel]decimal.Decimal{
		domain.ChannelShop:   decimal.RequireFromString("50.50"),
		domain.ChannelAmazon: decimal.RequireFromString("10"),
	}
	records := map[int64]domain.ComponentRecord{1: a, 2: b}

	got := PriceSet([]int64{1, 2}, records, DefaultPricingOptions())

	require.Len(t, got.Channels, len(domain.Channels))
	require.NotNil(t, got.Channels[domain.ChannelShop])
	assert.Equal(t, "165.55", got.Channels[domain.ChannelShop].StringFixed(2))
	require.NotNil(t, got.Channels[domain.ChannelAmazon])
	assert.Equal(t, "11.00", got.Channels[domain.ChannelAmazon].StringFixed(2))
	assert.Nil(t, got.Channels[domain.ChannelEbay])
	assert.Nil(t, got.Channels[domain.ChannelB2B])
}

func TestPriceSet_RepeatedComponent(t *testing.T) {
	records := map[int64]domain.ComponentRecord{1: priced(1, "119.00", 2000)}

	got := PriceSet([]int64{1, 1}, records, DefaultPricingOptions())
	// 2 * 96.40 + 3.60 (4 kg) = 196.40, taxed 233.716.
	assert.Equal(t, "233.72", got.Brutto.StringFixed(2))
}
