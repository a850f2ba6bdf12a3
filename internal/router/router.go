package router

import (
	"fmt"
	"strings"

	"github.com/toko-next/internal/cache"
	"github.com/toko-next/internal/config"
	"github.com/toko-next/internal/constants"
	adminhandlers "github.com/toko-next/internal/http/handlers/admin"
	publichandlers "github.com/toko-next/internal/http/handlers/public"
	"github.com/toko-next/internal/logger"
	"github.com/toko-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "登录尝试过于频繁",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "登录尝试过于频繁",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetShopConfig)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
		}

		// 客户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), publicHandler.UserLogin)
		}

		// 客户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetProfile)
			user.PUT("/me/profile", publicHandler.UpdateProfile)
			user.PUT("/me/password", publicHandler.ChangePassword)
			user.POST("/transactions", publicHandler.CreateTransaction)
			user.GET("/transactions", publicHandler.ListMyTransactions)
			user.GET("/transactions/:id", publicHandler.GetMyTransaction)
			user.POST("/transactions/:id/confirm-payment", publicHandler.ConfirmPayment)
			user.POST("/transactions/:id/cancel", publicHandler.CancelTransaction)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
			{
				authorized.GET("/profile", adminHandler.GetAdminProfile)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 商品管理
				authorized.GET("/products", adminHandler.GetAdminProducts)
				authorized.GET("/products/:id", adminHandler.GetAdminProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				// 分类管理
				authorized.GET("/categories", adminHandler.GetAdminCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				// 交易管理
				authorized.GET("/transactions", adminHandler.AdminListTransactions)
				authorized.GET("/transactions/:id", adminHandler.AdminGetTransaction)
				authorized.POST("/transactions/inbound", adminHandler.AdminCreateInbound)
				authorized.PATCH("/transactions/:id", adminHandler.AdminUpdateTransactionStatus)

				// 用户管理
				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.GET("/users/:id", adminHandler.GetAdminUser)
				authorized.POST("/users", adminHandler.CreateUser)
				authorized.PUT("/users/:id", adminHandler.UpdateUser)
				authorized.PUT("/users/:id/password", adminHandler.ResetUserPassword)
				authorized.PATCH("/users/:id/status", adminHandler.UpdateUserStatus)

				// 配送方式管理
				authorized.GET("/delivery-methods", adminHandler.GetAdminDeliveryMethods)
				authorized.POST("/delivery-methods", adminHandler.CreateDeliveryMethod)
				authorized.PUT("/delivery-methods/:id", adminHandler.UpdateDeliveryMethod)
				authorized.DELETE("/delivery-methods/:id", adminHandler.DeleteDeliveryMethod)

				// 收款方式管理
				authorized.GET("/payment-methods", adminHandler.GetAdminPaymentMethods)
				authorized.POST("/payment-methods", adminHandler.CreatePaymentMethod)
				authorized.PUT("/payment-methods/:id", adminHandler.UpdatePaymentMethod)
				authorized.DELETE("/payment-methods/:id", adminHandler.DeletePaymentMethod)

				// 设置管理
				authorized.GET("/settings", adminHandler.GetSettings)
				authorized.PUT("/settings", adminHandler.UpdateSettings)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
