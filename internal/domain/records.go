package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExportTimeLayout is the timestamp layout used in every export.
const ExportTimeLayout = "02.01.2006 15:04"

// SetRecordHeader is the column order of the aggregation export.
var SetRecordHeader = []string{
	"SetJobID",
	"SetItemTextsName1",
	"SetItemTextsName2",
	"SetItemTextsName3",
	"SetItemTextsShortDescription",
	"SetExternalItemID",
	"SetModel",
	"SetVariantName",
	"SetPurchasePrice",
	"SetWeightG",
	"SetWidthMM",
	"SetLengthMM",
	"SetHeightMM",
	"SetItemProducerName",
	"ItemShippingProfiles",
	"SourceVariantIDs",
	"SetType",
	"SetBarcode",
	"RequestedBy",
	"CreatedAt",
}

// SetRecord is the merged commercial record of one set job.
type SetRecord struct {
	JobID            int64           `json:"job_id"`
	Name1            string          `json:"name1"`
	Name2            string          `json:"name2"`
	Name3            string          `json:"name3"`
	ShortDescription string          `json:"short_description"`
	ExternalItemID   string          `json:"external_item_id"`
	Model            string          `json:"model"`
	VariantName      string          `json:"variant_name"`
	PurchasePrice    decimal.Decimal `json:"purchase_price"`
	WeightG          int64           `json:"weight_g"`
	WidthMM          int64           `json:"width_mm"`
	LengthMM         int64           `json:"length_mm"`
	HeightMM         int64           `json:"height_mm"`
	ProducerName     string          `json:"producer_name"`
	ShippingProfile  string          `json:"shipping_profile"`
	SourceVariantIDs []int64         `json:"source_variant_ids"`
	SetType          string          `json:"set_type"`
	Barcode          string          `json:"barcode"`
	RequestedBy      RequesterID     `json:"requested_by"`
	CreatedAt        time.Time       `json:"created_at"`
}

// FormatCommaPrice formats a price with two fraction digits and a comma separator.
func FormatCommaPrice(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// JoinIDs joins ids with sep.
func JoinIDs(ids []int64, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, sep)
}

// Row renders the record in SetRecordHeader order.
func (r *SetRecord) Row() []string {
	return []string{
		strconv.FormatInt(r.JobID, 10),
		r.Name1,
		r.Name2,
		r.Name3,
		r.ShortDescription,
		r.ExternalItemID,
		r.Model,
		r.VariantName,
		FormatCommaPrice(r.PurchasePrice),
		strconv.FormatInt(r.WeightG, 10),
		strconv.FormatInt(r.WidthMM, 10),
		strconv.FormatInt(r.LengthMM, 10),
		strconv.FormatInt(r.HeightMM, 10),
		r.ProducerName,
		r.ShippingProfile,
		JoinIDs(r.SourceVariantIDs, ", "),
		r.SetType,
		r.Barcode,
		strconv.Itoa(int(r.RequestedBy)),
		r.CreatedAt.Format(ExportTimeLayout),
	}
}

// ComponentRowHeader is the column order of the component export.
var ComponentRowHeader = []string{
	"SetJobID", "SetType", "SetItemID", "SetVariantID",
	"ComponentVariantID", "SortIndex", "RequestedBy", "RequestedAt",
}

// ComponentRow is one component of an imported set.
type ComponentRow struct {
	JobID              int64
	SetType            string
	SetItemID          int64
	SetVariantID       int64
	ComponentVariantID int64
	SortIndex          int
	RequestedBy        RequesterID
	RequestedAt        time.Time
}

// Row renders the component in ComponentRowHeader order.
func (r *ComponentRow) Row() []string {
	return []string{
		strconv.FormatInt(r.JobID, 10),
		r.SetType,
		strconv.FormatInt(r.SetItemID, 10),
		strconv.FormatInt(r.SetVariantID, 10),
		strconv.FormatInt(r.ComponentVariantID, 10),
		strconv.Itoa(r.SortIndex),
		strconv.Itoa(int(r.RequestedBy)),
		r.RequestedAt.Format(ExportTimeLayout),
	}
}

// SetDetailHeader is the column order of the further-data export.
var SetDetailHeader = append([]string{
	"SetItemID", "SetVariantID", "SetType",
	"ImageUrls", "BeschreibungHTML", "BruttoMindestpreisSet",
	"RequestedByID", "PropertyIds", "PropertyValues",
}, channelHeader()...)

func channelHeader() []string {
	cols := make([]string, len(Channels))
	for i, c := range Channels {
		cols[i] = c.Column()
	}
	return cols
}

// SetDetailRecord is the post-import record of one set: images, description,
// recomputed prices and reconciled properties.
type SetDetailRecord struct {
	JobID           int64
	SetItemID       int64
	SetVariantID    int64
	SetType         string
	ImageURLs       []string
	DescriptionHTML string
	// BruttoSetPrice is zero when any component lacks a usable gross price.
	BruttoSetPrice decimal.Decimal
	RequestedBy    RequesterID
	PropertyIDs    []string
	PropertyValues []string
	// ChannelPrices holds nil for channels without any contributing component.
	ChannelPrices map[Channel]*decimal.Decimal
}

// Row renders the record in SetDetailHeader order.
func (r *SetDetailRecord) Row() []string {
	brutto := "0"
	if !r.BruttoSetPrice.IsZero() {
		brutto = r.BruttoSetPrice.StringFixed(2)
	}
	row := []string{
		strconv.FormatInt(r.SetItemID, 10),
		strconv.FormatInt(r.SetVariantID, 10),
		r.SetType,
		strings.Join(r.ImageURLs, ","),
		r.DescriptionHTML,
		brutto,
		strconv.Itoa(int(r.RequestedBy)),
		strings.Join(r.PropertyIDs, ";"),
		strings.Join(r.PropertyValues, ";"),
	}
	for _, c := range Channels {
		if p := r.ChannelPrices[c]; p != nil {
			row = append(row, p.StringFixed(2))
		} else {
			row = append(row, "")
		}
	}
	return row
}
