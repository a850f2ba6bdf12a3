package service

import "errors"

// 业务错误哨兵，handler 层通过 errors.Is 映射为响应码
var (
	ErrNotFound               = errors.New("记录不存在")
	ErrValidation             = errors.New("参数不合法")
	ErrInvalidItem            = errors.New("交易明细不合法")
	ErrInsufficientStock      = errors.New("库存不足")
	ErrIllegalTransition      = errors.New("不允许的状态流转")
	ErrActorNotAllowed        = errors.New("无权执行该操作")
	ErrCategoryInUse          = errors.New("分类下仍有商品，无法删除")
	ErrNameExists             = errors.New("名称已存在")
	ErrCodeExists             = errors.New("商品编码已存在")
	ErrUsernameExists         = errors.New("登录名已存在")
	ErrInvalidCredentials     = errors.New("用户名或密码错误")
	ErrInvalidPassword        = errors.New("原密码错误")
	ErrWeakPassword           = errors.New("密码强度不足")
	ErrUserDisabled           = errors.New("账号已被禁用")
	ErrDeliveryMethodInvalid  = errors.New("配送方式不可用")
	ErrPaymentMethodInvalid   = errors.New("收款方式不可用")
	ErrTrackingNumberRequired = errors.New("发货需要填写快递单号")
)
