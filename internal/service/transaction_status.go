package service

import (
	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/models"
)

// Actor 状态流转操作者（由请求边界解析一次后显式传入）
type Actor struct {
	UserID uint
	Role   string
}

// IsAdmin 判断操作者是否为管理员
func (a Actor) IsAdmin() bool {
	return a.Role == constants.RoleAdmin
}

// 出库交易状态流转表。
// completed -> processing 为管理员重开，撤销已应用的库存扣减。
var outboundTransitions = map[string][]string{
	constants.TxnStatusPending:          {constants.TxnStatusPaymentConfirmed, constants.TxnStatusCancelled},
	constants.TxnStatusPaymentConfirmed: {constants.TxnStatusProcessing, constants.TxnStatusCancelled},
	constants.TxnStatusProcessing:       {constants.TxnStatusReadyForPickup, constants.TxnStatusShipping, constants.TxnStatusCancelled},
	constants.TxnStatusReadyForPickup:   {constants.TxnStatusCompleted},
	constants.TxnStatusShipping:         {constants.TxnStatusCompleted},
	constants.TxnStatusCompleted:        {constants.TxnStatusProcessing},
	constants.TxnStatusCancelled:        {},
}

// isLegalOutboundTransition 判断出库状态流转是否在流转表内
func isLegalOutboundTransition(from, to string) bool {
	for _, next := range outboundTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// authorizeTransition 校验状态流转的合法性与操作者权限。
// 入库交易创建即完成，不存在任何后续流转。
func authorizeTransition(txn *models.Transaction, to string, actor Actor) error {
	if txn == nil {
		return ErrNotFound
	}
	if txn.Type != constants.TxnTypeOut {
		return ErrIllegalTransition
	}
	if !isLegalOutboundTransition(txn.Status, to) {
		return ErrIllegalTransition
	}

	isOwner := actor.UserID != 0 && actor.UserID == txn.UserID

	switch to {
	case constants.TxnStatusPaymentConfirmed:
		// 确认付款只能由下单用户本人执行
		if !isOwner {
			return ErrActorNotAllowed
		}
	case constants.TxnStatusCancelled:
		if !isOwner && !actor.IsAdmin() {
			return ErrActorNotAllowed
		}
	default:
		// processing / ready_for_pickup / shipping / completed 及重开均为管理员操作
		if !actor.IsAdmin() {
			return ErrActorNotAllowed
		}
	}
	return nil
}
