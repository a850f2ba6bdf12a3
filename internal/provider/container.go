package provider

import (
	"github.com/toko-next/internal/cache"
	"github.com/toko-next/internal/config"
	"github.com/toko-next/internal/logger"
	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/queue"
	"github.com/toko-next/internal/repository"
	"github.com/toko-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo           repository.UserRepository
	CategoryRepo       repository.CategoryRepository
	ProductRepo        repository.ProductRepository
	TransactionRepo    repository.TransactionRepository
	DeliveryMethodRepo repository.DeliveryMethodRepository
	PaymentMethodRepo  repository.PaymentMethodRepository
	SettingRepo        repository.SettingRepository

	// Services
	AuthService           *service.AuthService
	UserAuthService       *service.UserAuthService
	UserService           *service.UserService
	CategoryService       *service.CategoryService
	ProductService        *service.ProductService
	SettingService        *service.SettingService
	DeliveryMethodService *service.DeliveryMethodService
	PaymentMethodService  *service.PaymentMethodService
	TransactionService    *service.TransactionService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.TransactionRepo = repository.NewTransactionRepository(db)
	c.DeliveryMethodRepo = repository.NewDeliveryMethodRepository(db)
	c.PaymentMethodRepo = repository.NewPaymentMethodRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.UserService = service.NewUserService(c.Config, c.UserRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo)
	c.DeliveryMethodService = service.NewDeliveryMethodService(c.DeliveryMethodRepo)
	c.PaymentMethodService = service.NewPaymentMethodService(c.PaymentMethodRepo)
	c.TransactionService = service.NewTransactionService(
		c.TransactionRepo,
		c.ProductRepo,
		c.UserRepo,
		c.DeliveryMethodRepo,
		c.PaymentMethodRepo,
		service.NewStockLedger(c.ProductRepo),
		c.SettingService,
		c.QueueClient,
		c.Config.Transaction.ConfirmExpireMinutes,
	)
}
