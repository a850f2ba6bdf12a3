package admin

import (
	"errors"
	"strconv"

	"github.com/toko-next/internal/http/response"
	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminDeliveryMethods 获取配送方式列表 (Admin)
func (h *Handler) GetAdminDeliveryMethods(c *gin.Context) {
	methods, err := h.DeliveryMethodService.List(false)
	if err != nil {
		respondError(c, response.CodeInternal, "获取配送方式列表失败", err)
		return
	}
	response.Success(c, methods)
}

// DeliveryMethodRequest 创建/更新配送方式请求
type DeliveryMethodRequest struct {
	Name      string       `json:"name" binding:"required"`
	Kind      string       `json:"kind" binding:"required"`
	Cost      models.Money `json:"cost"`
	IsActive  *bool        `json:"is_active"`
	SortOrder int          `json:"sort_order"`
}

// CreateDeliveryMethod 创建配送方式
func (h *Handler) CreateDeliveryMethod(c *gin.Context) {
	var req DeliveryMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	method, err := h.DeliveryMethodService.Create(service.DeliveryMethodInput{
		Name:      req.Name,
		Kind:      req.Kind,
		Cost:      req.Cost,
		IsActive:  isActive,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(c, response.CodeBadRequest, "配送方式参数不合法", nil)
			return
		}
		respondError(c, response.CodeInternal, "创建配送方式失败", err)
		return
	}

	response.Success(c, method)
}

// UpdateDeliveryMethod 更新配送方式
func (h *Handler) UpdateDeliveryMethod(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "配送方式 ID 不合法", nil)
		return
	}

	var req DeliveryMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	method, err := h.DeliveryMethodService.Update(uint(id), service.DeliveryMethodInput{
		Name:      req.Name,
		Kind:      req.Kind,
		Cost:      req.Cost,
		IsActive:  isActive,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "配送方式不存在", nil)
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "配送方式参数不合法", nil)
		default:
			respondError(c, response.CodeInternal, "更新配送方式失败", err)
		}
		return
	}

	response.Success(c, method)
}

// DeleteDeliveryMethod 删除配送方式（软删除，历史交易保留引用）
func (h *Handler) DeleteDeliveryMethod(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "配送方式 ID 不合法", nil)
		return
	}

	if err := h.DeliveryMethodService.Delete(uint(id)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "配送方式不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "删除配送方式失败", err)
		return
	}

	response.Success(c, nil)
}

// ====================  收款方式管理  ====================

// GetAdminPaymentMethods 获取收款方式列表 (Admin)
func (h *Handler) GetAdminPaymentMethods(c *gin.Context) {
	methods, err := h.PaymentMethodService.List(false)
	if err != nil {
		respondError(c, response.CodeInternal, "获取收款方式列表失败", err)
		return
	}
	response.Success(c, methods)
}

// PaymentMethodRequest 创建/更新收款方式请求
type PaymentMethodRequest struct {
	Name          string `json:"name" binding:"required"`
	AccountName   string `json:"account_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	IsActive      *bool  `json:"is_active"`
	SortOrder     int    `json:"sort_order"`
}

// CreatePaymentMethod 创建收款方式
func (h *Handler) CreatePaymentMethod(c *gin.Context) {
	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	method, err := h.PaymentMethodService.Create(service.PaymentMethodInput{
		Name:          req.Name,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		IsActive:      isActive,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(c, response.CodeBadRequest, "收款方式参数不合法", nil)
			return
		}
		respondError(c, response.CodeInternal, "创建收款方式失败", err)
		return
	}

	response.Success(c, method)
}

// UpdatePaymentMethod 更新收款方式
func (h *Handler) UpdatePaymentMethod(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "收款方式 ID 不合法", nil)
		return
	}

	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	method, err := h.PaymentMethodService.Update(uint(id), service.PaymentMethodInput{
		Name:          req.Name,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		IsActive:      isActive,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "收款方式不存在", nil)
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "收款方式参数不合法", nil)
		default:
			respondError(c, response.CodeInternal, "更新收款方式失败", err)
		}
		return
	}

	response.Success(c, method)
}

// DeletePaymentMethod 删除收款方式（软删除，历史交易保留引用）
func (h *Handler) DeletePaymentMethod(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "收款方式 ID 不合法", nil)
		return
	}

	if err := h.PaymentMethodService.Delete(uint(id)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "收款方式不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "删除收款方式失败", err)
		return
	}

	response.Success(c, nil)
}
