package service

import (
	"testing"

	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/models"

	"github.com/shopspring/decimal"
)

func TestResolveUnitPrice(t *testing.T) {
	vipPrice := models.NewMoneyFromDecimal(decimal.NewFromInt(80))
	product := &models.Product{
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		VIPPrice: &vipPrice,
	}

	if got := ResolveUnitPrice(product, constants.UserTypeRegular); got.String() != "100.00" {
		t.Fatalf("expected regular price 100.00, got %s", got.String())
	}
	if got := ResolveUnitPrice(product, constants.UserTypeVIP); got.String() != "80.00" {
		t.Fatalf("expected vip price 80.00, got %s", got.String())
	}
}

func TestResolveUnitPriceVIPFallback(t *testing.T) {
	product := &models.Product{
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
	}
	if got := ResolveUnitPrice(product, constants.UserTypeVIP); got.String() != "100.00" {
		t.Fatalf("expected fallback to standard price, got %s", got.String())
	}
}
