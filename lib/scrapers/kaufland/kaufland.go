package kaufland

import (
	"dealcrawl-backend/lib/deals"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("dealcrawl.lib.scrapers.kaufland")

const (
	// OfferUrl is the page listing the offers of the current week.
	OfferUrl = "https://filiale.kaufland.de/angebote/aktuelle-woche.html"
	// ReadySelector appears once the page's scripts have rendered the offers.
	ReadySelector = ".k-product-section"
)

var Store = deals.Store{
	Name:    "Kaufland",
	Country: "DE",
	Region:  "global",
	Website: "https://filiale.kaufland.de",
}
