package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupStockLedgerTest(t *testing.T, name string) (*gorm.DB, *StockLedger, models.Product) {
	t.Helper()
	dsn := fmt.Sprintf("file:stock_ledger_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	category := models.Category{Name: "测试分类"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := models.Product{
		CategoryID: category.ID,
		Code:       "LEDGER-1",
		Name:       "测试商品",
		Stock:      5,
		IsActive:   true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	return db, NewStockLedger(repository.NewProductRepository(db)), product
}

func loadStock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	return product.Stock
}

func TestStockLedgerApplyAndReverseRoundTrip(t *testing.T) {
	db, ledger, product := setupStockLedgerTest(t, "roundtrip")
	items := []models.TransactionItem{{ProductID: product.ID, Quantity: 3}}

	if err := ledger.ApplyEffect(db, constants.TxnTypeOut, items); err != nil {
		t.Fatalf("apply out error: %v", err)
	}
	if got := loadStock(t, db, product.ID); got != 2 {
		t.Fatalf("expected stock 2, got %d", got)
	}

	if err := ledger.ReverseEffect(db, constants.TxnTypeOut, items); err != nil {
		t.Fatalf("reverse out error: %v", err)
	}
	if got := loadStock(t, db, product.ID); got != 5 {
		t.Fatalf("expected stock back to 5, got %d", got)
	}

	if err := ledger.ApplyEffect(db, constants.TxnTypeIn, items); err != nil {
		t.Fatalf("apply in error: %v", err)
	}
	if got := loadStock(t, db, product.ID); got != 8 {
		t.Fatalf("expected stock 8, got %d", got)
	}
}

func TestStockLedgerClampsAtZero(t *testing.T) {
	db, ledger, product := setupStockLedgerTest(t, "clamp")
	items := []models.TransactionItem{{ProductID: product.ID, Quantity: 9}}

	if err := ledger.ApplyEffect(db, constants.TxnTypeOut, items); err != nil {
		t.Fatalf("apply out error: %v", err)
	}
	if got := loadStock(t, db, product.ID); got != 0 {
		t.Fatalf("expected stock clamped to 0, got %d", got)
	}
}

func TestStockLedgerCanSatisfyAggregates(t *testing.T) {
	db, ledger, product := setupStockLedgerTest(t, "aggregate")

	ok := []models.TransactionItem{
		{ProductID: product.ID, Quantity: 2},
		{ProductID: product.ID, Quantity: 3},
	}
	if err := ledger.CanSatisfy(db, ok); err != nil {
		t.Fatalf("expected aggregated quantity 5 to be satisfiable: %v", err)
	}

	over := []models.TransactionItem{
		{ProductID: product.ID, Quantity: 3},
		{ProductID: product.ID, Quantity: 3},
	}
	if err := ledger.CanSatisfy(db, over); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got: %v", err)
	}
}

func TestStockLedgerCanSatisfyRejectsUnknownProduct(t *testing.T) {
	db, ledger, _ := setupStockLedgerTest(t, "unknown")
	items := []models.TransactionItem{{ProductID: 9999, Quantity: 1}}
	if err := ledger.CanSatisfy(db, items); !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("expected invalid item, got: %v", err)
	}
}
