package service

import (
	"strings"

	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/repository"
)

// ProductService 商品业务服务
type ProductService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{repo: repo, categoryRepo: categoryRepo}
}

// CreateProductInput 创建商品输入
type CreateProductInput struct {
	CategoryID   uint
	Code         string
	Name         string
	Price        models.Money
	VIPPrice     *models.Money
	InitialStock int
	IsActive     bool
	SortOrder    int
}

// UpdateProductInput 更新商品输入。
// 库存不在此处修改，库存只通过交易台账变动。
type UpdateProductInput struct {
	CategoryID uint
	Code       string
	Name       string
	Price      models.Money
	VIPPrice   *models.Money
	IsActive   bool
	SortOrder  int
}

// List 商品列表
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.repo.List(filter)
}

// Get 获取商品详情
func (s *ProductService) Get(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" || input.InitialStock < 0 {
		return nil, ErrValidation
	}

	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}

	count, err := s.repo.CountByCode(code, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCodeExists
	}

	product := models.Product{
		CategoryID: input.CategoryID,
		Code:       code,
		Name:       name,
		Price:      input.Price,
		VIPPrice:   input.VIPPrice,
		Stock:      input.InitialStock,
		IsActive:   input.IsActive,
		SortOrder:  input.SortOrder,
	}
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update 更新商品（不含库存）
func (s *ProductService) Update(id uint, input UpdateProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}

	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return nil, ErrValidation
	}

	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}

	count, err := s.repo.CountByCode(code, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCodeExists
	}

	product.CategoryID = input.CategoryID
	product.Code = code
	product.Name = name
	product.Price = input.Price
	product.VIPPrice = input.VIPPrice
	product.IsActive = input.IsActive
	product.SortOrder = input.SortOrder

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	// 重新读取，返回台账当前库存而非更新前的快照
	return s.repo.GetByID(id)
}

// Delete 删除商品
func (s *ProductService) Delete(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}
