package kaufland

import (
	"context"
	"dealcrawl-backend/lib/deals"
	"dealcrawl-backend/lib/htmlutil"
	"dealcrawl-backend/lib/productid"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	selSection         = ".k-product-section"
	selSectionHeadline = ".k-product-section__headline"
	selSectionValidity = ".k-product-section__validity"

	selTile          = ".k-product-tile"
	selTileTitle     = ".k-product-tile__title"
	selTileSubtitle  = ".k-product-tile__subtitle"
	selTileUnitPrice = ".k-product-tile__unit-price"
	selTileBasePrice = ".k-product-tile__base-price"
	selTileImage     = "img.k-product-tile__main-image"
)

var imageAttrs = []string{"data-src", "src"}

// Listing is everything parsed off one offer page, in document order.
type Listing struct {
	Products []deals.Product
	Prices   []deals.PriceObservation
	// Degraded is the amount of fields that were missing and replaced
	// with deals.NotAvailable.
	Degraded int
}

// ParseListing parses a rendered offer page. `now` resolves the year of
// validity dates and is the capture timestamp of every price.
func ParseListing(ctx context.Context, page string, now time.Time) (Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return Listing{}, fmt.Errorf("parse html: %w", err)
	}
	return ParseDocument(ctx, doc, now)
}

func ParseDocument(ctx context.Context, doc *goquery.Document, now time.Time) (Listing, error) {
	ctx, span := tracer.Start(ctx, "ParseDocument")
	defer span.End()

	var listing Listing
	var err error
	doc.Find(selSection).EachWithBreak(func(_ int, section *goquery.Selection) bool {
		err = parseSection(section, now, &listing)
		return err == nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse section")
		return Listing{}, err
	}

	span.SetAttributes(
		attribute.Int("products", len(listing.Products)),
		attribute.Int("prices", len(listing.Prices)),
		attribute.Int("degraded", listing.Degraded),
	)
	return listing, nil
}

func parseSection(section *goquery.Selection, now time.Time, out *Listing) error {
	heading := htmlutil.CleanText(section.Find(selSectionHeadline).First())
	category, ok := deals.ParseCategory(heading)
	if !ok {
		return nil
	}
	window := ExtractValidRange(htmlutil.CleanText(section.Find(selSectionValidity).First()), now)

	var err error
	section.Find(selTile).EachWithBreak(func(_ int, tile *goquery.Selection) bool {
		err = parseTile(tile, category, window, now, out)
		return err == nil
	})
	if err != nil {
		return fmt.Errorf("section '%s': %w", heading, err)
	}
	return nil
}

func parseTile(tile *goquery.Selection, category deals.Category, window deals.ValidityWindow, now time.Time, out *Listing) error {
	product := deals.Product{
		Title:     htmlutil.TextOr(tile, selTileTitle, deals.NotAvailable),
		Subtitle:  htmlutil.TextOr(tile, selTileSubtitle, deals.NotAvailable),
		UnitPrice: htmlutil.TextOr(tile, selTileUnitPrice, deals.NotAvailable),
		BasePrice: htmlutil.TextOr(tile, selTileBasePrice, deals.NotAvailable),
		ImageURL:  htmlutil.AttrOr(tile, selTileImage, imageAttrs, deals.NotAvailable),
		Category:  category,
	}
	for _, v := range []string{product.Title, product.Subtitle, product.UnitPrice, product.BasePrice, product.ImageURL} {
		if v == deals.NotAvailable {
			out.Degraded++
		}
	}

	id, err := productid.DeriveID(product.IdentityRecord(), deals.IdentityFields)
	if err != nil {
		return err
	}
	product.ID = id
	out.Products = append(out.Products, product)

	tile.Find(selPriceTag).Each(func(_ int, tag *goquery.Selection) {
		block := ExtractPriceBlock(tag)
		out.Degraded += block.degraded()
		out.Prices = append(out.Prices, deals.PriceObservation{
			ProductID:     id,
			Type:          priceTypeOf(tag),
			Price:         block.Price,
			OriginalPrice: block.OriginalPrice,
			Discount:      block.Discount,
			Category:      category,
			Valid:         window,
			Timestamp:     now,
		})
	})
	return nil
}
