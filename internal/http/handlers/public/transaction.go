package public

import (
	"errors"
	"strconv"

	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/http/response"
	"github.com/toko-next/internal/repository"
	"github.com/toko-next/internal/service"

	"github.com/gin-gonic/gin"
)

// TransactionItemRequest 交易明细请求
type TransactionItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateTransactionRequest 创建出库交易（下单）请求
type CreateTransactionRequest struct {
	Items            []TransactionItemRequest `json:"items" binding:"required"`
	DeliveryMethodID uint                     `json:"delivery_method_id" binding:"required"`
	DeliveryAddress  string                   `json:"delivery_address"`
	PaymentMethodID  uint                     `json:"payment_method_id" binding:"required"`
	Notes            string                   `json:"notes"`
}

// CreateTransaction 客户下单，成交价按当前客户等级快照
func (h *Handler) CreateTransaction(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	items := make([]service.CreateTransactionItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateTransactionItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	actor := service.Actor{UserID: userID, Role: constants.RoleUser}
	txn, err := h.TransactionService.CreateOutbound(actor, service.CreateOutboundInput{
		Items:            items,
		DeliveryMethodID: req.DeliveryMethodID,
		DeliveryAddress:  req.DeliveryAddress,
		PaymentMethodID:  req.PaymentMethodID,
		Notes:            req.Notes,
	})
	if err != nil {
		respondTransactionCreateError(c, err)
		return
	}

	response.Success(c, txn)
}

// ListMyTransactions 当前客户的交易列表
func (h *Handler) ListMyTransactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	actor := service.Actor{UserID: userID, Role: constants.RoleUser}
	txns, total, err := h.TransactionService.ListForUser(actor, repository.TransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "获取交易列表失败", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, txns, pagination)
}

// GetMyTransaction 当前客户的交易详情
func (h *Handler) GetMyTransaction(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "交易 ID 不合法", nil)
		return
	}

	actor := service.Actor{UserID: userID, Role: constants.RoleUser}
	txn, err := h.TransactionService.GetForActor(actor, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "交易不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取交易失败", err)
		return
	}

	response.Success(c, txn)
}

// ConfirmPaymentRequest 确认付款请求
type ConfirmPaymentRequest struct {
	PaymentProof string `json:"payment_proof"`
}

// ConfirmPayment 客户确认已付款，交易进入待发货处理
func (h *Handler) ConfirmPayment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "交易 ID 不合法", nil)
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	actor := service.Actor{UserID: userID, Role: constants.RoleUser}
	txn, err := h.TransactionService.RequestTransition(actor, uint(id), constants.TxnStatusPaymentConfirmed, service.TransitionExtra{
		PaymentProof: req.PaymentProof,
	})
	if err != nil {
		respondTransactionTransitionError(c, err)
		return
	}

	response.Success(c, txn)
}

// CancelTransaction 客户取消自己的交易
func (h *Handler) CancelTransaction(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "交易 ID 不合法", nil)
		return
	}

	actor := service.Actor{UserID: userID, Role: constants.RoleUser}
	txn, err := h.TransactionService.RequestTransition(actor, uint(id), constants.TxnStatusCancelled, service.TransitionExtra{})
	if err != nil {
		respondTransactionTransitionError(c, err)
		return
	}

	response.Success(c, txn)
}
