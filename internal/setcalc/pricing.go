package setcalc

import (
	"github.com/shopspring/decimal"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

var gramsPerKg = decimal.NewFromInt(1000)

// PricingOptions configures the derived pricing pass.
type PricingOptions struct {
	TaxRate       decimal.Decimal
	ChannelMarkup decimal.Decimal
	ShippingCosts CostTable
}

// DefaultPricingOptions uses 19% tax, a 10% channel markup and DefaultShippingCosts.
func DefaultPricingOptions() PricingOptions {
	return PricingOptions{
		TaxRate:       decimal.RequireFromString("0.19"),
		ChannelMarkup: decimal.RequireFromString("0.10"),
		ShippingCosts: DefaultShippingCosts,
	}
}

// SetPrice is the outcome of the derived pricing pass.
type SetPrice struct {
	// Brutto is rounded to two fraction digits, or zero when MissingPrice is set.
	Brutto decimal.Decimal
	// MissingPrice lists components without a usable minimum gross price.
	MissingPrice []int64
	// Channels holds nil for channels no component contributed to.
	Channels map[domain.Channel]*decimal.Decimal
}

// PriceSet recomputes the set's gross price from its components. variantIDs is
// the job's ordered component list; records may lack some ids, which then count
// as weightless components without a price.
//
// Per component the gross minimum price is reduced to net, the component's own
// shipping cost is taken off (floored at zero), and the sum plus one set-level
// shipping cost on the total weight is taxed again. Any component without a
// positive gross price forces the whole set price to zero.
func PriceSet(variantIDs []int64, records map[int64]domain.ComponentRecord, opts PricingOptions) SetPrice {
	taxFactor := decimal.NewFromInt(1).Add(opts.TaxRate)
	markupFactor := decimal.NewFromInt(1).Add(opts.ChannelMarkup)

	netSum := decimal.Zero
	totalKg := decimal.Zero
	channelSums := make(map[domain.Channel]decimal.Decimal)
	var missing []int64

	for _, id := range variantIDs {
		rec, ok := records[id]
		kg := decimal.Zero
		if ok {
			kg = decimal.NewFromInt(rec.WeightG).Div(gramsPerKg)
		}
		totalKg = totalKg.Add(kg)

		if !ok || !rec.GrossMinPrice.IsPositive() {
			missing = append(missing, id)
		} else {
			net := rec.GrossMinPrice.Div(taxFactor)
			afterShipping := decimal.Max(decimal.Zero, net.Sub(opts.ShippingCosts.Lookup(kg)))
			netSum = netSum.Add(afterShipping)
		}

		if !ok {
			continue
		}
		for _, c := range domain.Channels {
			if p, has := rec.ChannelPrices[c]; has && p.IsPositive() {
				channelSums[c] = channelSums[c].Add(p)
			}
		}
	}

	out := SetPrice{
		Brutto:       decimal.Zero,
		MissingPrice: missing,
		Channels:     make(map[domain.Channel]*decimal.Decimal, len(domain.Channels)),
	}
	if len(missing) == 0 {
		setShipping := opts.ShippingCosts.Lookup(totalKg)
		out.Brutto = netSum.Add(setShipping).Mul(taxFactor).Round(2)
	}
	for _, c := range domain.Channels {
		sum, ok := channelSums[c]
		if !ok {
			out.Channels[c] = nil
			continue
		}
		v := sum.Mul(markupFactor).Round(2)
		out.Channels[c] = &v
	}
	return out
}
