package public

import (
	"errors"

	handlershared "github.com/toko-next/internal/http/handlers/shared"
	"github.com/toko-next/internal/http/response"
	"github.com/toko-next/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var transactionCreateErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidItem, code: response.CodeBadRequest, msg: "交易明细不合法"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, msg: "库存不足"},
	{target: service.ErrDeliveryMethodInvalid, code: response.CodeBadRequest, msg: "配送方式不可用"},
	{target: service.ErrPaymentMethodInvalid, code: response.CodeBadRequest, msg: "收款方式不可用"},
	{target: service.ErrValidation, code: response.CodeBadRequest, msg: "快递配送需要填写收货地址"},
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "用户不存在"},
}

var transactionTransitionErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "交易不存在"},
	{target: service.ErrIllegalTransition, code: response.CodeBadRequest, msg: "不允许的状态流转"},
	{target: service.ErrActorNotAllowed, code: response.CodeForbidden, msg: "无权执行该操作"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, msg: "库存不足"},
	{target: service.ErrDeliveryMethodInvalid, code: response.CodeBadRequest, msg: "配送方式与目标状态不匹配"},
	{target: service.ErrTrackingNumberRequired, code: response.CodeBadRequest, msg: "发货需要填写快递单号"},
}

func respondTransactionCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, transactionCreateErrorRules, response.CodeInternal, "创建交易失败")
}

func respondTransactionTransitionError(c *gin.Context, err error) {
	respondWithMappedError(c, err, transactionTransitionErrorRules, response.CodeInternal, "更新交易状态失败")
}
