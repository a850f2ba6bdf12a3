package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCategoryServiceTest(t *testing.T, name string) (*gorm.DB, *CategoryService) {
	t.Helper()
	dsn := fmt.Sprintf("file:category_service_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db, NewCategoryService(repository.NewCategoryRepository(db))
}

func TestCategoryCreateRejectsDuplicateName(t *testing.T) {
	_, svc := setupCategoryServiceTest(t, "dup")
	if _, err := svc.Create(CreateCategoryInput{Name: "屏幕"}); err != nil {
		t.Fatalf("create category error: %v", err)
	}
	if _, err := svc.Create(CreateCategoryInput{Name: "屏幕"}); !errors.Is(err, ErrNameExists) {
		t.Fatalf("expected name exists, got: %v", err)
	}
}

func TestCategoryDeleteRejectsWhenInUse(t *testing.T) {
	db, svc := setupCategoryServiceTest(t, "in_use")
	category, err := svc.Create(CreateCategoryInput{Name: "电池"})
	if err != nil {
		t.Fatalf("create category error: %v", err)
	}

	product := models.Product{CategoryID: category.ID, Code: "BAT-X", Name: "电池", IsActive: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	if err := svc.Delete(category.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected category in use, got: %v", err)
	}

	if err := db.Delete(&product).Error; err != nil {
		t.Fatalf("delete product failed: %v", err)
	}
	if err := svc.Delete(category.ID); err != nil {
		t.Fatalf("delete category error: %v", err)
	}
}
