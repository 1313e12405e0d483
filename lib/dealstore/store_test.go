package dealstore

import (
	"context"
	"database/sql"
	"dealcrawl-backend/lib/chrono"
	"dealcrawl-backend/lib/deals"
	"dealcrawl-backend/lib/testutil"
	"dealcrawl-backend/lib/timezone"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.April, 18, 9, 30, 0, 0, timezone.Location)

func setupStore(t testing.TB) (Store, *sql.DB) {
	database := testutil.OpenDB(t, "")
	store := NewStore(database, testutil.Logger(t), chrono.FixedClock(now))
	err := store.Init(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return store, database
}

func day(offset int) *time.Time {
	d := timezone.StartOfDay(now).AddDate(0, 0, offset)
	return &d
}

func product(id string) deals.Product {
	return deals.Product{
		ID:        id,
		Title:     "Milch " + id,
		Subtitle:  "1L",
		UnitPrice: "0.89",
		BasePrice: "(1 l = 0.89)",
		ImageURL:  "https://media.example/milch.jpg",
		Category:  deals.CategoryDairyCheese,
	}
}

func price(productId string, storeId int64, until *time.Time) deals.PriceObservation {
	return deals.PriceObservation{
		ProductID:     productId,
		StoreID:       storeId,
		Type:          deals.PriceTypeNormal,
		Price:         "0.89",
		OriginalPrice: "1.19",
		Discount:      "-25%",
		Category:      deals.CategoryDairyCheese,
		Valid:         deals.ValidityWindow{From: day(-7), Until: until},
		Timestamp:     now,
	}
}

func TestInitIdempotent(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	storeId, err := store.UpsertStore(ctx, deals.Store{Name: "Kaufland", Country: "DE", Region: "global"})
	require.NoError(t, err)
	require.NoError(t, store.UpsertProduct(ctx, product("a")))
	require.NoError(t, store.InsertPriceObservation(ctx, price("a", storeId, day(3))))

	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.Init(ctx))

	products, prices, err := store.Counts(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, products)
	require.EqualValues(t, 1, prices)
}

func TestUpsertStore(t *testing.T) {
	store, database := setupStore(t)
	ctx := context.Background()

	first, err := store.UpsertStore(ctx, deals.Store{Name: "Kaufland", Country: "DE", Region: "global", Website: "https://filiale.kaufland.de"})
	require.NoError(t, err)
	second, err := store.UpsertStore(ctx, deals.Store{Name: "Kaufland", Country: "AT", Region: "wien"})
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, first)

	var count int
	err = database.QueryRow("select count(*) from stores where name = ?", "Kaufland").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	row, err := store.Queries().GetStoreByName(ctx, "Kaufland")
	require.NoError(t, err)
	require.Equal(t, "DE", row.Country)

	other, err := store.UpsertStore(ctx, deals.Store{Name: "Lidl", Country: "DE", Region: "global"})
	require.NoError(t, err)
	require.NotEqual(t, first, other)

	_, err = store.UpsertStore(ctx, deals.Store{})
	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
}

func TestUpsertProductFirstWriteWins(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	original := product("a")
	require.NoError(t, store.UpsertProduct(ctx, original))

	changed := original
	changed.BasePrice = "(1 l = 0.99)"
	changed.ImageURL = "https://media.example/other.jpg"
	require.NoError(t, store.UpsertProduct(ctx, changed))

	row, err := store.Queries().GetProduct(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, original.BasePrice, row.BasePrice)
	require.Equal(t, original.ImageURL, row.ImageUrl)
	require.Equal(t, string(deals.CategoryDairyCheese), row.Category)

	products, _, err := store.Counts(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, products)
}

func TestRejectsUnknownVariants(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	p := product("a")
	p.Category = "Elektronik"
	err := store.UpsertProduct(ctx, p)
	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))

	storeId, err := store.UpsertStore(ctx, deals.Store{Name: "Kaufland"})
	require.NoError(t, err)
	require.NoError(t, store.UpsertProduct(ctx, product("a")))

	badType := price("a", storeId, day(1))
	badType.Type = "coupon"
	require.Error(t, store.InsertPriceObservation(ctx, badType))

	badCategory := price("a", storeId, day(1))
	badCategory.Category = "Elektronik"
	require.Error(t, store.InsertPriceObservation(ctx, badCategory))

	_, prices, err := store.Counts(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, prices)
}

func TestInsertPriceObservation(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	storeId, err := store.UpsertStore(ctx, deals.Store{Name: "Kaufland"})
	require.NoError(t, err)
	require.NoError(t, store.UpsertProduct(ctx, product("a")))

	withTimestamp := price("a", storeId, day(5))
	withTimestamp.Timestamp = now.Add(-time.Hour)
	require.NoError(t, store.InsertPriceObservation(ctx, withTimestamp))

	withoutTimestamp := price("a", storeId, nil)
	withoutTimestamp.Valid = deals.ValidityWindow{}
	withoutTimestamp.Timestamp = time.Time{}
	require.NoError(t, store.InsertPriceObservation(ctx, withoutTimestamp))

	// observations are appended, never merged
	require.NoError(t, store.InsertPriceObservation(ctx, withTimestamp))

	rows, err := store.Queries().GetPricesForProduct(ctx, "a")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, now.Add(-time.Hour).Format(time.RFC3339), rows[0].Timestamp)
	require.Equal(t, "2024-04-11", rows[0].ValidFrom.String)
	require.Equal(t, "2024-04-23", rows[0].ValidUntil.String)

	require.Equal(t, now.Format(time.RFC3339), rows[1].Timestamp)
	require.False(t, rows[1].ValidFrom.Valid)
	require.False(t, rows[1].ValidUntil.Valid)

	require.Equal(t, rows[0].Timestamp, rows[2].Timestamp)
}

func TestInsertPriceUnknownProduct(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	storeId, err := store.UpsertStore(ctx, deals.Store{Name: "Kaufland"})
	require.NoError(t, err)

	err = store.InsertPriceObservation(ctx, price("missing", storeId, day(1)))
	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	require.Equal(t, "insert price", storageErr.Op)
}

func TestExpireAndCollect(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	storeId, err := store.UpsertStore(ctx, deals.Store{Name: "Kaufland"})
	require.NoError(t, err)
	require.NoError(t, store.UpsertProduct(ctx, product("a")))
	require.NoError(t, store.InsertPriceObservation(ctx, price("a", storeId, day(-1))))

	result, err := store.ExpireAndCollect(ctx)
	require.NoError(t, err)
	require.Equal(t, SweepResult{ExpiredPrices: 1, OrphanedProducts: 1}, result)

	products, prices, err := store.Counts(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, products)
	require.EqualValues(t, 0, prices)
}

func TestExpireAndCollectKeepsCurrent(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	storeId, err := store.UpsertStore(ctx, deals.Store{Name: "Kaufland"})
	require.NoError(t, err)

	for _, id := range []string{"expired", "today", "future", "unbounded", "mixed"} {
		require.NoError(t, store.UpsertProduct(ctx, product(id)))
	}
	require.NoError(t, store.InsertPriceObservation(ctx, price("expired", storeId, day(-3))))
	require.NoError(t, store.InsertPriceObservation(ctx, price("today", storeId, day(0))))
	require.NoError(t, store.InsertPriceObservation(ctx, price("future", storeId, day(4))))

	unbounded := price("unbounded", storeId, nil)
	unbounded.Valid = deals.ValidityWindow{}
	require.NoError(t, store.InsertPriceObservation(ctx, unbounded))

	require.NoError(t, store.InsertPriceObservation(ctx, price("mixed", storeId, day(-1))))
	require.NoError(t, store.InsertPriceObservation(ctx, price("mixed", storeId, day(2))))

	result, err := store.ExpireAndCollect(ctx)
	require.NoError(t, err)
	require.Equal(t, SweepResult{ExpiredPrices: 2, OrphanedProducts: 1}, result)

	_, err = store.Queries().GetProduct(ctx, "expired")
	require.ErrorIs(t, err, sql.ErrNoRows)

	for _, id := range []string{"today", "future", "unbounded"} {
		rows, err := store.Queries().GetPricesForProduct(ctx, id)
		require.NoError(t, err)
		require.Len(t, rows, 1, id)
	}
	mixed, err := store.Queries().GetPricesForProduct(ctx, "mixed")
	require.NoError(t, err)
	require.Len(t, mixed, 1)
	require.Equal(t, day(2).Format(time.DateOnly), mixed[0].ValidUntil.String)

	again, err := store.ExpireAndCollect(ctx)
	require.NoError(t, err)
	require.Equal(t, SweepResult{}, again)
}

func TestExpireAndCollectOrphansWithoutPrices(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	// a product that never had a price is also collected
	require.NoError(t, store.UpsertProduct(ctx, product("lonely")))

	result, err := store.ExpireAndCollect(ctx)
	require.NoError(t, err)
	require.Equal(t, SweepResult{ExpiredPrices: 0, OrphanedProducts: 1}, result)
}

func TestExpireAndCollectRollsBack(t *testing.T) {
	store, database := setupStore(t)
	ctx := context.Background()

	storeId, err := store.UpsertStore(ctx, deals.Store{Name: "Kaufland"})
	require.NoError(t, err)
	require.NoError(t, store.UpsertProduct(ctx, product("a")))
	require.NoError(t, store.InsertPriceObservation(ctx, price("a", storeId, day(-1))))

	// make the product delete fail after the price delete already happened
	_, err = database.Exec(`
		create trigger block_product_delete before delete on products
		begin
			select raise(abort, 'product deletes are blocked');
		end;
	`)
	require.NoError(t, err)

	_, err = store.ExpireAndCollect(ctx)
	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))

	products, prices, err := store.Counts(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, products)
	require.EqualValues(t, 1, prices)
}

func TestSaveProduct(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	storeId, err := store.UpsertStore(ctx, deals.Store{Name: "Kaufland"})
	require.NoError(t, err)

	loyalty := price("a", storeId, day(3))
	loyalty.Type = deals.PriceTypeLoyaltyCard
	err = store.SaveProduct(ctx, product("a"), []deals.PriceObservation{price("a", storeId, day(3)), loyalty})
	require.NoError(t, err)

	result, err := store.ExpireAndCollect(ctx)
	require.NoError(t, err)
	require.Equal(t, SweepResult{}, result)

	rows, err := store.Queries().GetPricesForProduct(ctx, "a")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, string(deals.PriceTypeLoyaltyCard), rows[1].PriceType)
}

func TestSaveProductRollsBack(t *testing.T) {
	store, database := setupStore(t)
	ctx := context.Background()

	storeId, err := store.UpsertStore(ctx, deals.Store{Name: "Kaufland"})
	require.NoError(t, err)

	_, err = database.Exec(`
		create trigger block_price_insert before insert on prices
		begin
			select raise(abort, 'price inserts are blocked');
		end;
	`)
	require.NoError(t, err)

	err = store.SaveProduct(ctx, product("a"), []deals.PriceObservation{price("a", storeId, day(3))})
	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	require.Equal(t, "save product", storageErr.Op)

	products, prices, err := store.Counts(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, products)
	require.EqualValues(t, 0, prices)
}

func TestSaveProductRejectsForeignPrice(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	storeId, err := store.UpsertStore(ctx, deals.Store{Name: "Kaufland"})
	require.NoError(t, err)

	err = store.SaveProduct(ctx, product("a"), []deals.PriceObservation{price("b", storeId, day(3))})
	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))

	products, _, err := store.Counts(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, products)
}
