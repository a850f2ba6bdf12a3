package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductServiceTest(t *testing.T, name string) (*gorm.DB, *ProductService, models.Category) {
	t.Helper()
	dsn := fmt.Sprintf("file:product_service_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	category := models.Category{Name: "维修配件"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	svc := NewProductService(repository.NewProductRepository(db), repository.NewCategoryRepository(db))
	return db, svc, category
}

func TestProductCreateRejectsDuplicateCode(t *testing.T) {
	_, svc, category := setupProductServiceTest(t, "dup_code")

	input := CreateProductInput{
		CategoryID:   category.ID,
		Code:         "LCD-A52",
		Name:         "屏幕总成",
		Price:        models.NewMoneyFromDecimal(decimal.NewFromInt(350)),
		InitialStock: 3,
		IsActive:     true,
	}
	if _, err := svc.Create(input); err != nil {
		t.Fatalf("create product error: %v", err)
	}
	if _, err := svc.Create(input); !errors.Is(err, ErrCodeExists) {
		t.Fatalf("expected code exists, got: %v", err)
	}
}

func TestProductCreateRejectsNegativeInitialStock(t *testing.T) {
	_, svc, category := setupProductServiceTest(t, "neg_stock")
	_, err := svc.Create(CreateProductInput{
		CategoryID:   category.ID,
		Code:         "BAT-01",
		Name:         "电池",
		InitialStock: -1,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got: %v", err)
	}
}

func TestProductCreateRejectsMissingCategory(t *testing.T) {
	_, svc, _ := setupProductServiceTest(t, "no_category")
	_, err := svc.Create(CreateProductInput{
		CategoryID: 9999,
		Code:       "CAB-01",
		Name:       "数据线",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got: %v", err)
	}
}

func TestProductUpdateKeepsStock(t *testing.T) {
	db, svc, category := setupProductServiceTest(t, "keep_stock")
	created, err := svc.Create(CreateProductInput{
		CategoryID:   category.ID,
		Code:         "GLS-01",
		Name:         "钢化膜",
		Price:        models.NewMoneyFromDecimal(decimal.NewFromInt(25)),
		InitialStock: 7,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("create product error: %v", err)
	}

	updated, err := svc.Update(created.ID, UpdateProductInput{
		CategoryID: category.ID,
		Code:       "GLS-01",
		Name:       "钢化膜（升级款）",
		Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("update product error: %v", err)
	}
	if updated.Name != "钢化膜（升级款）" {
		t.Fatalf("expected updated name, got %s", updated.Name)
	}

	var stored models.Product
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if stored.Stock != 7 {
		t.Fatalf("expected stock untouched at 7, got %d", stored.Stock)
	}
}
