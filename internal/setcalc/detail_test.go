package setcalc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

func TestBuildDetail(t *testing.T) {
	itemID, variantID := int64(7001), int64(8001)
	job := testJob(1, 2)
	job.Status = domain.StatusComponentsAdded
	job.NewItemID = &itemID
	job.NewVariantID = &variantID

	a := priced(1, "119.00", 2000)
	a.ImageURLs = "https://img/a1.jpg, https://img/a2.jpg,"
	a.Description = "<p>Oven &amp; grill</p>"
	a.ItemProperties = "5=Red;6=Steel"
	b := priced(2, "59.50", 500)
	b.ImageURLs = "https://img/b.jpg"
	b.VariationProperties = "5=Blue;7=Large"

	rec, price := BuildDetail(job, map[int64]domain.ComponentRecord{1: a, 2: b}, DefaultDetailOptions())

	assert.Equal(t, int64(7001), rec.SetItemID)
	assert.Equal(t, int64(8001), rec.SetVariantID)
	assert.Equal(t, []string{"https://img/a1.jpg", "https://img/a2.jpg", "https://img/b.jpg"}, rec.ImageURLs)
	assert.Equal(t, "<p>Oven & grill</p>\n<br><br>\n", rec.DescriptionHTML)
	assert.Equal(t, "174.22", rec.BruttoSetPrice.StringFixed(2))
	assert.Empty(t, price.MissingPrice)

	row := rec.Row()
	require.Len(t, row, len(domain.SetDetailHeader))
	assert.Equal(t, "174.22", row[5])
	assert.Equal(t, "5;6;7", row[7])
	assert.Equal(t, ";Steel;Large", row[8])
	for _, col := range row[9:] {
		assert.Equal(t, "", col)
	}
}

func TestBuildDetail_MissingPriceRendersZero(t *testing.T) {
	job := testJob(1, 2)
	a := priced(1, "119.00", 2000)
	b := priced(2, "0", 500)
	b.ChannelPrices = map[domain.Channel]decimal.Decimal{domain.ChannelList: decimal.NewFromInt(20)}

	rec, price := BuildDetail(job, map[int64]domain.ComponentRecord{1: a, 2: b}, DefaultDetailOptions())

	assert.Equal(t, []int64{2}, price.MissingPrice)
	row := rec.Row()
	assert.Equal(t, "0", row[5])
	assert.Equal(t, "22.00", row[9])
}
