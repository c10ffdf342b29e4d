package domain

import "github.com/shopspring/decimal"

// Channel is one auxiliary sales channel price carried by a component.
type Channel int

const (
	ChannelList Channel = iota
	ChannelShop
	ChannelEbay
	ChannelAmazon
	ChannelManual
	ChannelReal
	ChannelRealLowest
	ChannelB2B
)

// Channels lists every auxiliary channel in export column order.
var Channels = []Channel{
	ChannelList, ChannelShop, ChannelEbay, ChannelAmazon,
	ChannelManual, ChannelReal, ChannelRealLowest, ChannelB2B,
}

var channelColumns = map[Channel]string{
	ChannelList:       "SetUVP",
	ChannelShop:       "SetShopPreisKH24",
	ChannelEbay:       "SetEbayPreisKH24",
	ChannelAmazon:     "SetAmazonPreisKH24",
	ChannelManual:     "SetPreisManuelleEingabe",
	ChannelReal:       "SetRealPreisKH24",
	ChannelRealLowest: "SetRealTiefstpreisKH24",
	ChannelB2B:        "SetB2B",
}

// Column returns the further-data export column of the channel.
func (c Channel) Column() string {
	return channelColumns[c]
}

// ComponentRecord is the read-only view of one independently sold variant.
type ComponentRecord struct {
	VariantID int64

	Name1            string
	Name2            string
	Name3            string
	ShortDescription string
	ExternalItemID   string
	Model            string
	VariantName      string
	ProducerName     string

	// PurchasePrice is the minimum net-equivalent price summed by the first aggregation pass.
	PurchasePrice decimal.Decimal
	WeightG       int64
	WidthMM       int64
	LengthMM      int64
	HeightMM      int64

	// ImageURLs is comma separated.
	ImageURLs string
	// ItemProperties and VariationProperties are semicolon separated id=value lists.
	ItemProperties      string
	VariationProperties string
	// Description is HTML with entities still encoded.
	Description string

	// GrossMinPrice is the minimum gross price used by the derived pricing pass.
	GrossMinPrice decimal.Decimal
	ChannelPrices map[Channel]decimal.Decimal
}
