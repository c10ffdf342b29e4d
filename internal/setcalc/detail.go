package setcalc

import (
	"html"
	"strings"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

const descriptionBlockSuffix = "\n<br><br>\n"

// DetailOptions configures the post-import pass.
type DetailOptions struct {
	Pricing PricingOptions
	Ignore  IgnoreSet
}

// DefaultDetailOptions uses the default pricing tables and property denylist.
func DefaultDetailOptions() DetailOptions {
	return DetailOptions{
		Pricing: DefaultPricingOptions(),
		Ignore:  NewIgnoreSet(DefaultIgnoredProperties...),
	}
}

// BuildDetail produces the further-data record of an imported job. Components
// missing from records contribute nothing except a missing price. The returned
// SetPrice exposes components without a usable price for diagnostics.
func BuildDetail(job *domain.SetJob, records map[int64]domain.ComponentRecord, opts DetailOptions) (*domain.SetDetailRecord, SetPrice) {
	ids := job.VariantIDs()

	var images []string
	var desc strings.Builder
	sources := make([]PropertySource, 0, len(ids))

	for _, id := range ids {
		rec, ok := records[id]
		if !ok {
			continue
		}
		for _, u := range strings.Split(rec.ImageURLs, ",") {
			if u = strings.TrimSpace(u); u != "" {
				images = append(images, u)
			}
		}
		if d := html.UnescapeString(rec.Description); d != "" {
			desc.WriteString(d)
			desc.WriteString(descriptionBlockSuffix)
		}
		sources = append(sources, PropertySource{Item: rec.ItemProperties, Variation: rec.VariationProperties})
	}

	price := PriceSet(ids, records, opts.Pricing)
	props := Reconcile(sources, opts.Ignore)

	rec := &domain.SetDetailRecord{
		JobID:           job.ID,
		SetType:         job.SetType,
		ImageURLs:       images,
		DescriptionHTML: desc.String(),
		BruttoSetPrice:  price.Brutto,
		RequestedBy:     job.RequestedBy,
		PropertyIDs:     props.IDs,
		PropertyValues:  props.Values,
		ChannelPrices:   price.Channels,
	}
	if job.NewItemID != nil {
		rec.SetItemID = *job.NewItemID
	}
	if job.NewVariantID != nil {
		rec.SetVariantID = *job.NewVariantID
	}
	return rec, price
}
