package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/toko-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductRepositoryTest(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:product_repo_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate product failed: %v", err)
	}
	return NewProductRepository(db), db
}

func createTestProduct(t *testing.T, repo *GormProductRepository, code string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID: 1,
		Code:       code,
		Name:       "测试商品",
		Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Stock:      stock,
		IsActive:   true,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestIncrementStock(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	product := createTestProduct(t, repo, "stock-inc", 3)

	affected, err := repo.IncrementStock(product.ID, 7)
	if err != nil {
		t.Fatalf("increment stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("increment affected want 1 got %d", affected)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Stock != 10 {
		t.Fatalf("stock want 10 got %d", got.Stock)
	}
}

func TestDecrementStockClampedAtZero(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	product := createTestProduct(t, repo, "stock-clamp", 5)

	affected, err := repo.DecrementStockClamped(product.ID, 3)
	if err != nil {
		t.Fatalf("decrement stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("decrement affected want 1 got %d", affected)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Stock != 2 {
		t.Fatalf("stock want 2 got %d", got.Stock)
	}

	// 超量扣减归零而不是负数
	if _, err := repo.DecrementStockClamped(product.ID, 9); err != nil {
		t.Fatalf("decrement over stock failed: %v", err)
	}
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Stock != 0 {
		t.Fatalf("stock want 0 got %d", got.Stock)
	}
}

func TestStockMutationRejectsInvalidParams(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)

	if _, err := repo.IncrementStock(0, 1); err == nil {
		t.Fatalf("expected error for zero product id")
	}
	if _, err := repo.DecrementStockClamped(1, 0); err == nil {
		t.Fatalf("expected error for zero quantity")
	}
	if _, err := repo.DecrementStockClamped(1, -2); err == nil {
		t.Fatalf("expected error for negative quantity")
	}
}

func TestUpdateDoesNotWriteStock(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	product := createTestProduct(t, repo, "stock-keep", 10)

	// 目录更新携带读取时的库存快照，期间台账又扣了 4 件
	stale := *product
	if _, err := repo.DecrementStockClamped(product.ID, 4); err != nil {
		t.Fatalf("decrement stock failed: %v", err)
	}

	stale.Name = "测试商品（改名）"
	stale.IsActive = false
	if err := repo.Update(&stale); err != nil {
		t.Fatalf("update product failed: %v", err)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Name != "测试商品（改名）" || got.IsActive {
		t.Fatalf("catalog fields not updated: name=%q active=%v", got.Name, got.IsActive)
	}
	if got.Stock != 6 {
		t.Fatalf("stock must stay ledger-owned at 6, got %d", got.Stock)
	}
}

func TestProductListFilters(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	active := createTestProduct(t, repo, "filter-active", 1)
	inactive := createTestProduct(t, repo, "filter-inactive", 1)
	inactive.IsActive = false
	if err := repo.Update(inactive); err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	products, total, err := repo.List(ProductListFilter{Page: 1, PageSize: 10, OnlyActive: true})
	if err != nil {
		t.Fatalf("list active products failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("total want 1 got %d", total)
	}
	if len(products) != 1 || products[0].ID != active.ID {
		t.Fatalf("expected only active product in result")
	}

	products, _, err = repo.List(ProductListFilter{Page: 1, PageSize: 10, Search: "filter-in"})
	if err != nil {
		t.Fatalf("search products failed: %v", err)
	}
	found := false
	for _, p := range products {
		if p.ID == inactive.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected search to match inactive product code")
	}
}
