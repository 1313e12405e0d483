// Package deals holds the record model shared by the scrapers, the store
// and the harvester.
package deals

import (
	"dealcrawl-backend/lib/textutil"
	"time"
)

// NotAvailable is the sentinel stored for any field missing from the page.
const NotAvailable = "N/A"

// Category is one of the fixed sections of the weekly offer page.
type Category string

const (
	CategoryFruitVegetables Category = "Obst & Gemüse"
	CategoryMeatSausages    Category = "Fleisch & Wurst"
	CategoryFishSeafood     Category = "Fisch & Meeresfrüchte"
	CategoryDairyCheese     Category = "Molkereiprodukte & Käse"
	CategoryFrozen          Category = "Tiefkühlkost"
	CategoryBakery          Category = "Brot & Backwaren"
	CategorySweetsSnacks    Category = "Süßwaren & Snacks"
	CategoryDrinks          Category = "Getränke"
	CategoryDrugstore       Category = "Drogerie & Haushalt"
)

// Categories lists every known category in page order.
var Categories = []Category{
	CategoryFruitVegetables,
	CategoryMeatSausages,
	CategoryFishSeafood,
	CategoryDairyCheese,
	CategoryFrozen,
	CategoryBakery,
	CategorySweetsSnacks,
	CategoryDrinks,
	CategoryDrugstore,
}

var categoryByName = func() map[string]Category {
	out := make(map[string]Category, len(Categories))
	for _, c := range Categories {
		out[textutil.NormalizeName(string(c))] = c
	}
	return out
}()

// ParseCategory resolves a section heading to its category, ignoring case
// and whitespace differences.
func ParseCategory(heading string) (Category, bool) {
	c, ok := categoryByName[textutil.NormalizeName(heading)]
	return c, ok
}

func (c Category) Valid() bool {
	got, ok := categoryByName[textutil.NormalizeName(string(c))]
	return ok && got == c
}

func (c Category) String() string {
	return string(c)
}

// PriceType distinguishes regular shelf prices from prices that require
// the store's loyalty card.
type PriceType string

const (
	PriceTypeNormal      PriceType = "normal"
	PriceTypeLoyaltyCard PriceType = "loyalty-card"
)

func (p PriceType) Valid() bool {
	return p == PriceTypeNormal || p == PriceTypeLoyaltyCard
}

func (p PriceType) String() string {
	return string(p)
}

// Store is a retailer a price was observed at.
type Store struct {
	Name    string
	Country string
	Region  string
	Website string
}

// IdentityFields are the product fields its id is derived from, in order.
var IdentityFields = []string{"title", "subtitle", "unit_price"}

type Product struct {
	ID        string
	Title     string
	Subtitle  string
	UnitPrice string
	BasePrice string
	ImageURL  string
	Category  Category
}

// IdentityRecord exposes the product's textual fields by their column name.
func (p Product) IdentityRecord() map[string]string {
	return map[string]string{
		"title":      p.Title,
		"subtitle":   p.Subtitle,
		"unit_price": p.UnitPrice,
		"base_price": p.BasePrice,
		"image_url":  p.ImageURL,
		"category":   string(p.Category),
	}
}

// ValidityWindow is the date range a discount claims to be valid for,
// a nil bound is unknown.
type ValidityWindow struct {
	From  *time.Time
	Until *time.Time
}

func (w ValidityWindow) Known() bool {
	return w.From != nil && w.Until != nil
}

type PriceObservation struct {
	ProductID     string
	StoreID       int64
	Type          PriceType
	Price         string
	OriginalPrice string
	Discount      string
	Category      Category
	Valid         ValidityWindow
	// Timestamp is the capture time, the store fills it in when zero.
	Timestamp time.Time
}
