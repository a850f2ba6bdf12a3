package admin

import (
	"errors"
	"strconv"

	"github.com/toko-next/internal/http/response"
	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/repository"
	"github.com/toko-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminProducts 获取商品列表 (Admin)
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	categoryID := c.Query("category_id")
	search := c.Query("search")

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Search:       search,
		WithCategory: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "获取商品列表失败", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, products, pagination)
}

// GetAdminProduct 获取商品详情 (Admin)
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "商品 ID 不合法", nil)
		return
	}

	product, err := h.ProductService.Get(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "商品不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取商品失败", err)
		return
	}

	response.Success(c, product)
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	CategoryID   uint          `json:"category_id" binding:"required"`
	Code         string        `json:"code" binding:"required"`
	Name         string        `json:"name" binding:"required"`
	Price        models.Money  `json:"price"`
	VIPPrice     *models.Money `json:"vip_price"`
	InitialStock int           `json:"initial_stock"`
	IsActive     *bool         `json:"is_active"`
	SortOrder    int           `json:"sort_order"`
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product, err := h.ProductService.Create(service.CreateProductInput{
		CategoryID:   req.CategoryID,
		Code:         req.Code,
		Name:         req.Name,
		Price:        req.Price,
		VIPPrice:     req.VIPPrice,
		InitialStock: req.InitialStock,
		IsActive:     isActive,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeExists):
			respondError(c, response.CodeBadRequest, "商品编码已存在", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeBadRequest, "分类不存在", nil)
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "商品参数不合法", nil)
		default:
			respondError(c, response.CodeInternal, "创建商品失败", err)
		}
		return
	}

	response.Success(c, product)
}

// UpdateProductRequest 更新商品请求（库存不在此处修改）
type UpdateProductRequest struct {
	CategoryID uint          `json:"category_id" binding:"required"`
	Code       string        `json:"code" binding:"required"`
	Name       string        `json:"name" binding:"required"`
	Price      models.Money  `json:"price"`
	VIPPrice   *models.Money `json:"vip_price"`
	IsActive   *bool         `json:"is_active"`
	SortOrder  int           `json:"sort_order"`
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "商品 ID 不合法", nil)
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product, err := h.ProductService.Update(uint(id), service.UpdateProductInput{
		CategoryID: req.CategoryID,
		Code:       req.Code,
		Name:       req.Name,
		Price:      req.Price,
		VIPPrice:   req.VIPPrice,
		IsActive:   isActive,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "商品或分类不存在", nil)
		case errors.Is(err, service.ErrCodeExists):
			respondError(c, response.CodeBadRequest, "商品编码已被占用", nil)
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "商品参数不合法", nil)
		default:
			respondError(c, response.CodeInternal, "更新商品失败", err)
		}
		return
	}

	response.Success(c, product)
}

// DeleteProduct 删除商品（软删除）
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "商品 ID 不合法", nil)
		return
	}

	if err := h.ProductService.Delete(uint(id)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "商品不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "删除商品失败", err)
		return
	}

	response.Success(c, nil)
}

// ====================  分类管理  ====================

// GetAdminCategories 获取分类列表 (Admin)
func (h *Handler) GetAdminCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "获取分类列表失败", err)
		return
	}

	response.Success(c, categories)
}

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	category, err := h.CategoryService.Create(service.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameExists):
			respondError(c, response.CodeBadRequest, "分类名称已存在", nil)
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "分类参数不合法", nil)
		default:
			respondError(c, response.CodeInternal, "创建分类失败", err)
		}
		return
	}

	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "分类 ID 不合法", nil)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	category, err := h.CategoryService.Update(uint(id), service.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "分类不存在", nil)
		case errors.Is(err, service.ErrNameExists):
			respondError(c, response.CodeBadRequest, "分类名称已被占用", nil)
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "分类参数不合法", nil)
		default:
			respondError(c, response.CodeInternal, "更新分类失败", err)
		}
		return
	}

	response.Success(c, category)
}

// DeleteCategory 删除分类（软删除）
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "分类 ID 不合法", nil)
		return
	}

	if err := h.CategoryService.Delete(uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryInUse):
			respondError(c, response.CodeBadRequest, "分类下仍有商品，无法删除", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "分类不存在", nil)
		default:
			respondError(c, response.CodeInternal, "删除分类失败", err)
		}
		return
	}

	response.Success(c, nil)
}
