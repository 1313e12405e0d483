package kaufland

import (
	"dealcrawl-backend/lib/deals"
	"dealcrawl-backend/lib/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	selPriceTag           = ".k-price-tag"
	selPriceTagPrice      = ".k-price-tag__price"
	selPriceTagOldPrice   = ".k-price-tag__old-price"
	selPriceTagDiscount   = ".k-price-tag__discount"
	classLoyaltyCardPrice = "k-price-tag--loyalty-card"
)

// priceMarkers are glyphs the page appends to a price to reference a
// footnote.
const priceMarkers = "*"

type PriceBlock struct {
	Price         string
	OriginalPrice string
	Discount      string
}

// ExtractPriceBlock reads the current price, the crossed out price and the
// discount label out of a price tag.
func ExtractPriceBlock(tag *goquery.Selection) PriceBlock {
	price := htmlutil.TextOr(tag, selPriceTagPrice, "")
	price = strings.TrimSpace(strings.TrimRight(price, priceMarkers))
	if price == "" {
		price = deals.NotAvailable
	}
	return PriceBlock{
		Price:         price,
		OriginalPrice: htmlutil.TextOr(tag, selPriceTagOldPrice, deals.NotAvailable),
		Discount:      htmlutil.TextOr(tag, selPriceTagDiscount, deals.NotAvailable),
	}
}

func priceTypeOf(tag *goquery.Selection) deals.PriceType {
	if tag.HasClass(classLoyaltyCardPrice) {
		return deals.PriceTypeLoyaltyCard
	}
	return deals.PriceTypeNormal
}

// degraded counts how many fields of the block fell back to the sentinel.
func (b PriceBlock) degraded() int {
	n := 0
	for _, v := range []string{b.Price, b.OriginalPrice, b.Discount} {
		if v == deals.NotAvailable {
			n++
		}
	}
	return n
}
