package admin

import (
	"errors"
	"strconv"
	"time"

	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/http/response"
	"github.com/toko-next/internal/repository"
	"github.com/toko-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListTransactions 管理端交易列表，支持按类型、状态、单号、创建时间过滤
func (h *Handler) AdminListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	filter := repository.TransactionListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      uint(userID),
		Type:        c.Query("type"),
		Status:      c.Query("status"),
		TxnNo:       c.Query("txn_no"),
		CreatedFrom: parseTimeNullable(c.Query("created_from")),
		CreatedTo:   parseTimeNullable(c.Query("created_to")),
	}

	txns, total, err := h.TransactionService.ListAdmin(filter)
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

// AdminGetTransaction 管理端交易详情
func (h *Handler) AdminGetTransaction(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "交易 ID 不合法", nil)
		return
	}

	actor := service.Actor{UserID: adminID, Role: constants.RoleAdmin}
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

// TransactionItemRequest 交易明细请求
type TransactionItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateInboundRequest 创建入库交易请求
type CreateInboundRequest struct {
	Items []TransactionItemRequest `json:"items" binding:"required"`
	Notes string                   `json:"notes"`
}

// AdminCreateInbound 创建入库交易（补货），创建即完成并增加库存
func (h *Handler) AdminCreateInbound(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req CreateInboundRequest
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

	actor := service.Actor{UserID: adminID, Role: constants.RoleAdmin}
	txn, err := h.TransactionService.CreateInbound(actor, service.CreateInboundInput{
		Items: items,
		Notes: req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidItem):
			respondError(c, response.CodeBadRequest, "交易明细不合法", nil)
		case errors.Is(err, service.ErrActorNotAllowed):
			respondError(c, response.CodeForbidden, "无权执行该操作", nil)
		default:
			respondError(c, response.CodeInternal, "创建入库交易失败", err)
		}
		return
	}

	response.Success(c, txn)
}

// UpdateTransactionStatusRequest 管理端状态流转请求
type UpdateTransactionStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number"`
}

// AdminUpdateTransactionStatus 管理端流转交易状态。
// 发货要求快递单号；completed 扣减库存；completed → processing 为重开并回补库存。
func (h *Handler) AdminUpdateTransactionStatus(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "交易 ID 不合法", nil)
		return
	}

	var req UpdateTransactionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	actor := service.Actor{UserID: adminID, Role: constants.RoleAdmin}
	txn, err := h.TransactionService.RequestTransition(actor, uint(id), req.Status, service.TransitionExtra{
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "交易不存在", nil)
		case errors.Is(err, service.ErrIllegalTransition):
			respondError(c, response.CodeBadRequest, "不允许的状态流转", nil)
		case errors.Is(err, service.ErrActorNotAllowed):
			respondError(c, response.CodeForbidden, "无权执行该操作", nil)
		case errors.Is(err, service.ErrInsufficientStock):
			respondError(c, response.CodeBadRequest, "库存不足，无法完成交易", nil)
		case errors.Is(err, service.ErrDeliveryMethodInvalid):
			respondError(c, response.CodeBadRequest, "配送方式与目标状态不匹配", nil)
		case errors.Is(err, service.ErrTrackingNumberRequired):
			respondError(c, response.CodeBadRequest, "发货需要填写快递单号", nil)
		default:
			respondError(c, response.CodeInternal, "更新交易状态失败", err)
		}
		return
	}

	response.Success(c, txn)
}

// parseTimeNullable 解析查询参数中的时间，支持 RFC3339 与日期两种格式
func parseTimeNullable(value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t
	}
	return nil
}
