package setcalc

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

const (
	textSeparator        = " + "
	descriptionSeparator = "\n---\n"
)

// AggregateOptions configures the commercial aggregation.
type AggregateOptions struct {
	Profiles ProfileTable
}

// DefaultAggregateOptions returns the production shipping profile table.
func DefaultAggregateOptions() AggregateOptions {
	return AggregateOptions{Profiles: DefaultProfiles}
}

// ExpandComponents orders records by the job's variant ids. A variant may occur
// several times in a set, so lookups are by distinct id and repeats reuse the record.
func ExpandComponents(variantIDs []int64, records []domain.ComponentRecord) ([]domain.ComponentRecord, error) {
	byID := make(map[int64]domain.ComponentRecord, len(records))
	for _, r := range records {
		byID[r.VariantID] = r
	}

	var missing []int64
	out := make([]domain.ComponentRecord, 0, len(variantIDs))
	for _, id := range variantIDs {
		r, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, r)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingComponent, domain.JoinIDs(missing, ", "))
	}
	return out, nil
}

// DistinctIDs returns ids without repeats, keeping first-occurrence order.
func DistinctIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Aggregate merges the ordered components of job into one set record. The
// barcode is left empty; it is claimed separately as the last step.
func Aggregate(job *domain.SetJob, components []domain.ComponentRecord, opts AggregateOptions) (*domain.SetRecord, error) {
	if len(job.Items) < MinComponents {
		return nil, fmt.Errorf("%w: job %d has %d", domain.ErrInsufficientComponents, job.ID, len(job.Items))
	}
	if len(components) != len(job.Items) {
		return nil, fmt.Errorf("%w: job %d expects %d components, got %d",
			domain.ErrMissingComponent, job.ID, len(job.Items), len(components))
	}

	label := domain.SetLabel(job.SetType)
	join := func(field func(c *domain.ComponentRecord) string, sep string) string {
		parts := make([]string, len(components))
		for i := range components {
			parts[i] = field(&components[i])
		}
		return strings.Join(parts, sep)
	}

	price := decimal.Zero
	var weightG int64
	for i := range components {
		price = price.Add(components[i].PurchasePrice)
		weightG += components[i].WeightG
	}

	first := &components[0]
	return &domain.SetRecord{
		JobID:            job.ID,
		Name1:            label + " " + join(func(c *domain.ComponentRecord) string { return c.Name1 }, textSeparator),
		Name2:            label + " " + join(func(c *domain.ComponentRecord) string { return c.Name2 }, textSeparator),
		Name3:            label + " " + join(func(c *domain.ComponentRecord) string { return c.Name3 }, textSeparator),
		ShortDescription: join(func(c *domain.ComponentRecord) string { return c.ShortDescription }, descriptionSeparator),
		ExternalItemID:   join(func(c *domain.ComponentRecord) string { return c.ExternalItemID }, textSeparator),
		Model:            join(func(c *domain.ComponentRecord) string { return c.Model }, textSeparator),
		VariantName:      join(func(c *domain.ComponentRecord) string { return c.VariantName }, textSeparator),
		PurchasePrice:    price,
		WeightG:          weightG,
		WidthMM:          first.WidthMM,
		LengthMM:         first.LengthMM,
		HeightMM:         first.HeightMM,
		ProducerName:     first.ProducerName,
		ShippingProfile:  opts.Profiles.Lookup(weightG),
		SourceVariantIDs: job.VariantIDs(),
		SetType:          job.SetType,
		RequestedBy:      job.RequestedBy,
		CreatedAt:        job.CreatedAt,
	}, nil
}
