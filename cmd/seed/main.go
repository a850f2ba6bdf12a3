package main

import (
	"fmt"

	"github.com/toko-next/internal/config"
	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/logger"
	"github.com/toko-next/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Name: "手机配件", Description: "手机壳、贴膜、数据线等", SortOrder: 300},
		{Name: "维修配件", Description: "屏幕总成、电池、尾插等维修用料", SortOrder: 200},
		{Name: "数码周边", Description: "耳机、充电器、存储卡等", SortOrder: 100},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("name = ?", cat.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Name, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Name)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Name)
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("name IN ?", []string{"手机配件", "维修配件", "数码周边"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Name] = cat.ID
	}
	accessoryID := categoryIDs["手机配件"]
	repairPartID := categoryIDs["维修配件"]
	gadgetID := categoryIDs["数码周边"]

	vipPrice := func(v float64) *models.Money {
		m := models.NewMoneyFromDecimal(decimal.NewFromFloat(v))
		return &m
	}

	// 添加商品
	products := []models.Product{
		{
			CategoryID: accessoryID,
			Code:       "ACC-CASE-IP15",
			Name:       "iPhone 15 防摔手机壳",
			Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(85000)),
			VIPPrice:   vipPrice(70000),
			Stock:      120,
			IsActive:   true,
			SortOrder:  300,
		},
		{
			CategoryID: accessoryID,
			Code:       "ACC-CABLE-TC1M",
			Name:       "Type-C 快充数据线 1 米",
			Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(35000)),
			VIPPrice:   vipPrice(28000),
			Stock:      200,
			IsActive:   true,
			SortOrder:  290,
		},
		{
			CategoryID: repairPartID,
			Code:       "PART-LCD-A54",
			Name:       "Galaxy A54 屏幕总成",
			Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(650000)),
			VIPPrice:   vipPrice(580000),
			Stock:      15,
			IsActive:   true,
			SortOrder:  200,
		},
		{
			CategoryID: repairPartID,
			Code:       "PART-BAT-IP13",
			Name:       "iPhone 13 电池",
			Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(320000)),
			Stock:      30,
			IsActive:   true,
			SortOrder:  190,
		},
		{
			CategoryID: gadgetID,
			Code:       "GDG-TWS-PRO",
			Name:       "TWS 蓝牙耳机 Pro",
			Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(260000)),
			VIPPrice:   vipPrice(225000),
			Stock:      45,
			IsActive:   true,
			SortOrder:  100,
		},
		{
			CategoryID: gadgetID,
			Code:       "GDG-CHG-GAN65",
			Name:       "氮化镓 65W 充电器",
			Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(180000)),
			Stock:      0,
			IsActive:   false,
			SortOrder:  90,
		},
	}

	for _, prod := range products {
		if prod.CategoryID == 0 {
			stdLog.Printf("Skip product %s: category_id missing", prod.Code)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("code = ?", prod.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Code, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Code)
			}
		} else {
			existing.CategoryID = prod.CategoryID
			existing.Name = prod.Name
			existing.Price = prod.Price
			existing.VIPPrice = prod.VIPPrice
			existing.IsActive = prod.IsActive
			existing.SortOrder = prod.SortOrder
			// 库存不覆盖，避免清掉线上已有的出入库结果
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Code, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Code)
			}
		}
	}

	// 添加配送方式
	deliveryMethods := []models.DeliveryMethod{
		{Name: "到店自取", Kind: constants.DeliveryKindPickup, Cost: models.NewMoneyFromDecimal(decimal.Zero), IsActive: true, SortOrder: 200},
		{Name: "同城快递", Kind: constants.DeliveryKindCourier, Cost: models.NewMoneyFromDecimal(decimal.NewFromInt(15000)), IsActive: true, SortOrder: 100},
		{Name: "跨城快递", Kind: constants.DeliveryKindCourier, Cost: models.NewMoneyFromDecimal(decimal.NewFromInt(30000)), IsActive: true, SortOrder: 90},
	}

	for _, dm := range deliveryMethods {
		var existing models.DeliveryMethod
		if err := models.DB.Where("name = ?", dm.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&dm).Error; err != nil {
				stdLog.Printf("Failed to create delivery method %s: %v", dm.Name, err)
			} else {
				stdLog.Printf("Created delivery method: %s", dm.Name)
			}
		} else {
			stdLog.Printf("Delivery method already exists: %s", dm.Name)
		}
	}

	// 添加收款方式
	paymentMethods := []models.PaymentMethod{
		{Name: "BCA 银行转账", AccountName: "Toko Next", AccountNumber: "1234567890", IsActive: true, SortOrder: 200},
		{Name: "Mandiri 银行转账", AccountName: "Toko Next", AccountNumber: "0987654321", IsActive: true, SortOrder: 100},
	}

	for _, pm := range paymentMethods {
		var existing models.PaymentMethod
		if err := models.DB.Where("name = ?", pm.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&pm).Error; err != nil {
				stdLog.Printf("Failed to create payment method %s: %v", pm.Name, err)
			} else {
				stdLog.Printf("Created payment method: %s", pm.Name)
			}
		} else {
			stdLog.Printf("Payment method already exists: %s", pm.Name)
		}
	}

	// 添加演示客户账号
	demoUsers := []struct {
		Username string
		Password string
		Type     string
		Name     string
		CSCode   string
	}{
		{Username: "budi", Password: "budi1234", Type: constants.UserTypeRegular, Name: "Budi Santoso", CSCode: "CS-0001"},
		{Username: "siti", Password: "siti1234", Type: constants.UserTypeVIP, Name: "Siti Rahma", CSCode: "CS-0002"},
	}

	for _, du := range demoUsers {
		var existing models.User
		if err := models.DB.Where("username = ?", du.Username).First(&existing).Error; err != nil {
			hash, hashErr := bcrypt.GenerateFromPassword([]byte(du.Password), bcrypt.DefaultCost)
			if hashErr != nil {
				stdLog.Printf("Failed to hash password for %s: %v", du.Username, hashErr)
				continue
			}
			user := models.User{
				Username:     du.Username,
				PasswordHash: string(hash),
				Role:         constants.RoleUser,
				Type:         du.Type,
				Name:         du.Name,
				CSCode:       du.CSCode,
				Status:       constants.UserStatusActive,
			}
			if err := models.DB.Create(&user).Error; err != nil {
				stdLog.Printf("Failed to create user %s: %v", du.Username, err)
			} else {
				stdLog.Printf("Created user: %s", du.Username)
			}
		} else {
			stdLog.Printf("User already exists: %s", du.Username)
		}
	}

	// 更新店铺配置
	shopConfig := map[string]interface{}{
		"shop_name":                        "Toko Next",
		constants.SettingFieldShopCurrency: constants.ShopCurrencyDefault,
		"contact": map[string]string{
			"phone":    "+62-812-0000-0000",
			"whatsapp": "https://wa.me/628120000000",
		},
	}
	txnConfig := map[string]interface{}{
		constants.SettingFieldConfirmExpireMins: 15,
	}

	settings := []models.Setting{
		{Key: constants.SettingKeyShopConfig, ValueJSON: models.JSON(shopConfig)},
		{Key: constants.SettingKeyTxnConfig, ValueJSON: models.JSON(txnConfig)},
	}

	for _, s := range settings {
		var existing models.Setting
		if err := models.DB.Where("key = ?", s.Key).First(&existing).Error; err != nil {
			if err := models.DB.Create(&s).Error; err != nil {
				stdLog.Printf("Failed to create setting %s: %v", s.Key, err)
			} else {
				stdLog.Printf("Created setting: %s", s.Key)
			}
		} else {
			existing.ValueJSON = s.ValueJSON
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update setting %s: %v", s.Key, err)
			} else {
				stdLog.Printf("Updated setting: %s", s.Key)
			}
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Categories")
	fmt.Println("- 6 Products")
	fmt.Println("- 3 Delivery methods")
	fmt.Println("- 2 Payment methods")
	fmt.Println("- 2 Demo customers (budi / siti)")
	fmt.Println("- Shop & transaction configuration")
}
