package service

import (
	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/models"
)

// ResolveUnitPrice 解析成交单价。
// VIP 用户且商品设置了 VIP 价时取 VIP 价，其余情况一律取标准价。
// 成交价在交易创建时快照到交易明细，后续改价不影响历史交易。
func ResolveUnitPrice(product *models.Product, userType string) models.Money {
	if product == nil {
		return models.Money{}
	}
	if userType == constants.UserTypeVIP && product.VIPPrice != nil {
		return *product.VIPPrice
	}
	return product.Price
}
