package dealstore

import (
	"context"
	"database/sql"
	"dealcrawl-backend/lib/chrono"
	"dealcrawl-backend/lib/dealstore/db"
	"dealcrawl-backend/lib/deals"
	"dealcrawl-backend/lib/timezone"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("dealcrawl.lib.dealstore")

// StorageError is returned by every Store operation that fails, `Op`
// names the operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("dealstore %s: %s", e.Op, e.Err.Error())
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

type Store struct {
	db     *sql.DB
	qry    *db.Queries
	logger *slog.Logger
	clock  chrono.Clock
}

func NewStore(database *sql.DB, logger *slog.Logger, clock chrono.Clock) Store {
	return Store{
		db:     database,
		qry:    db.New(database),
		logger: logger,
		clock:  clock,
	}
}

// Init creates any missing tables, it is safe to call on every run.
func (s Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, db.Schema)
	if err != nil {
		return storageErr("init", err)
	}
	return nil
}

// withTx runs fn in a transaction that is committed only if fn succeeds.
func (s Store) withTx(ctx context.Context, op string, fn func(txqry *db.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(op, fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	err = fn(s.qry.WithTx(tx))
	if err != nil {
		return storageErr(op, err)
	}
	err = tx.Commit()
	if err != nil {
		return storageErr(op, fmt.Errorf("commit: %w", err))
	}
	return nil
}

// UpsertStore returns the id of the store with the given name, creating
// it if it does not exist yet.
func (s Store) UpsertStore(ctx context.Context, store deals.Store) (int64, error) {
	ctx, span := tracer.Start(ctx, "UpsertStore")
	defer span.End()
	span.SetAttributes(attribute.String("name", store.Name))

	if store.Name == "" {
		return 0, storageErr("upsert store", fmt.Errorf("store name is empty"))
	}

	var id int64
	err := s.withTx(ctx, "upsert store", func(txqry *db.Queries) error {
		err := txqry.CreateStore(ctx, db.CreateStoreParams{
			Name:    store.Name,
			Country: store.Country,
			Region:  store.Region,
			Website: store.Website,
		})
		if err != nil {
			return err
		}
		row, err := txqry.GetStoreByName(ctx, store.Name)
		if err != nil {
			return err
		}
		id = row.StoreID
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upsert store")
		return 0, err
	}
	return id, nil
}

func validateProduct(product deals.Product) error {
	if product.ID == "" {
		return fmt.Errorf("product id is empty")
	}
	if !product.Category.Valid() {
		return fmt.Errorf("unknown category '%s'", product.Category)
	}
	return nil
}

func createProduct(ctx context.Context, txqry *db.Queries, product deals.Product) error {
	return txqry.CreateProduct(ctx, db.CreateProductParams{
		ProductID: product.ID,
		Title:     product.Title,
		Subtitle:  product.Subtitle,
		UnitPrice: product.UnitPrice,
		BasePrice: product.BasePrice,
		ImageUrl:  product.ImageURL,
		Category:  string(product.Category),
	})
}

// UpsertProduct inserts the product unless one with the same id already
// exists, the existing row is never modified.
func (s Store) UpsertProduct(ctx context.Context, product deals.Product) error {
	err := validateProduct(product)
	if err != nil {
		return storageErr("upsert product", err)
	}
	return s.withTx(ctx, "upsert product", func(txqry *db.Queries) error {
		return createProduct(ctx, txqry, product)
	})
}

func formatDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.DateOnly), Valid: true}
}

func validatePrice(price deals.PriceObservation) error {
	if !price.Type.Valid() {
		return fmt.Errorf("unknown price type '%s'", price.Type)
	}
	if !price.Category.Valid() {
		return fmt.Errorf("unknown category '%s'", price.Category)
	}
	return nil
}

func (s Store) createPrice(ctx context.Context, txqry *db.Queries, price deals.PriceObservation) error {
	timestamp := price.Timestamp
	if timestamp.IsZero() {
		timestamp = s.clock.Now()
	}
	return txqry.CreatePrice(ctx, db.CreatePriceParams{
		ProductID:     price.ProductID,
		StoreID:       price.StoreID,
		PriceType:     string(price.Type),
		Price:         price.Price,
		OriginalPrice: price.OriginalPrice,
		Discount:      price.Discount,
		Timestamp:     timestamp.Format(time.RFC3339),
		Category:      string(price.Category),
		ValidFrom:     formatDate(price.Valid.From),
		ValidUntil:    formatDate(price.Valid.Until),
	})
}

// InsertPriceObservation appends the observation, a zero timestamp is
// replaced with the current time.
func (s Store) InsertPriceObservation(ctx context.Context, price deals.PriceObservation) error {
	err := validatePrice(price)
	if err != nil {
		return storageErr("insert price", err)
	}
	return s.withTx(ctx, "insert price", func(txqry *db.Queries) error {
		return s.createPrice(ctx, txqry, price)
	})
}

// SaveProduct upserts the product and appends its prices in one
// transaction, so a sweep running in between can never see the product
// without its prices.
func (s Store) SaveProduct(ctx context.Context, product deals.Product, prices []deals.PriceObservation) error {
	ctx, span := tracer.Start(ctx, "SaveProduct")
	defer span.End()
	span.SetAttributes(
		attribute.String("product_id", product.ID),
		attribute.Int("prices", len(prices)),
	)

	err := validateProduct(product)
	if err != nil {
		return storageErr("save product", err)
	}
	for _, price := range prices {
		if price.ProductID != product.ID {
			return storageErr("save product", fmt.Errorf("price belongs to product '%s', not '%s'", price.ProductID, product.ID))
		}
		err = validatePrice(price)
		if err != nil {
			return storageErr("save product", err)
		}
	}

	err = s.withTx(ctx, "save product", func(txqry *db.Queries) error {
		err := createProduct(ctx, txqry, product)
		if err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		for _, price := range prices {
			err = s.createPrice(ctx, txqry, price)
			if err != nil {
				return fmt.Errorf("create price: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save product")
		return err
	}
	return nil
}

type SweepResult struct {
	ExpiredPrices    int
	OrphanedProducts int
}

// ExpireAndCollect deletes every price whose validity ended before today
// and then every product no price references anymore. Prices without a
// known end are kept. Either everything is deleted or nothing is.
func (s Store) ExpireAndCollect(ctx context.Context) (SweepResult, error) {
	ctx, span := tracer.Start(ctx, "ExpireAndCollect")
	defer span.End()

	today := timezone.StartOfDay(s.clock.Now()).Format(time.DateOnly)
	span.SetAttributes(attribute.String("today", today))

	var result SweepResult
	err := s.withTx(ctx, "expire and collect", func(txqry *db.Queries) error {
		expired, err := txqry.GetExpiredPrices(ctx, today)
		if err != nil {
			return fmt.Errorf("get expired prices: %w", err)
		}
		if len(expired) > 0 {
			s.logger.InfoContext(ctx, "found expired prices", "count", len(expired), "today", today)
		}
		for _, row := range expired {
			s.logger.InfoContext(
				ctx, "deleting price",
				"id", row.ID,
				"product_id", row.ProductID,
				"store_id", row.StoreID,
				"price", row.Price,
				"valid_until", row.ValidUntil.String,
			)
			err = txqry.DeletePrice(ctx, row.ID)
			if err != nil {
				return fmt.Errorf("delete price %d: %w", row.ID, err)
			}
		}

		orphans, err := txqry.GetOrphanedProducts(ctx)
		if err != nil {
			return fmt.Errorf("get orphaned products: %w", err)
		}
		if len(orphans) > 0 {
			s.logger.InfoContext(ctx, "found orphaned products", "count", len(orphans))
		}
		for _, row := range orphans {
			s.logger.InfoContext(ctx, "deleting product", "product_id", row.ProductID, "title", row.Title)
			err = txqry.DeleteProduct(ctx, row.ProductID)
			if err != nil {
				return fmt.Errorf("delete product %s: %w", row.ProductID, err)
			}
		}

		result = SweepResult{
			ExpiredPrices:    len(expired),
			OrphanedProducts: len(orphans),
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sweep failed")
		return SweepResult{}, err
	}

	span.SetAttributes(
		attribute.Int("expired_prices", result.ExpiredPrices),
		attribute.Int("orphaned_products", result.OrphanedProducts),
	)
	s.logger.InfoContext(
		ctx, "sweep finished",
		"expired_prices", result.ExpiredPrices,
		"orphaned_products", result.OrphanedProducts,
	)
	return result, nil
}

// Counts reports how many products and prices are currently stored.
func (s Store) Counts(ctx context.Context) (products, prices int64, err error) {
	products, err = s.qry.CountProducts(ctx)
	if err != nil {
		return 0, 0, storageErr("count products", err)
	}
	prices, err = s.qry.CountPrices(ctx)
	if err != nil {
		return 0, 0, storageErr("count prices", err)
	}
	return products, prices, nil
}

// Queries exposes the underlying queries for read access.
func (s Store) Queries() *db.Queries {
	return s.qry
}
