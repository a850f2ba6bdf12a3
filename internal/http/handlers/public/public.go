package public

import (
	"time"

	"github.com/toko-next/internal/cache"
	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

const publicConfigCacheKey = "public:config"
const publicConfigCacheTTL = 60 * time.Second

// GetShopConfig 获取店铺公开配置（含可用的配送与收款方式），短缓存
func (h *Handler) GetShopConfig(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	shop, err := h.SettingService.GetShopConfig(map[string]interface{}{
		"shop_name":                        "",
		constants.SettingFieldShopCurrency: constants.ShopCurrencyDefault,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "获取店铺配置失败", err)
		return
	}

	deliveryMethods, err := h.DeliveryMethodService.List(true)
	if err != nil {
		respondError(c, response.CodeInternal, "获取配送方式失败", err)
		return
	}
	paymentMethods, err := h.PaymentMethodService.List(true)
	if err != nil {
		respondError(c, response.CodeInternal, "获取收款方式失败", err)
		return
	}

	payload := map[string]interface{}{
		"shop":             shop,
		"delivery_methods": deliveryMethods,
		"payment_methods":  paymentMethods,
	}
	_ = cache.SetJSON(c.Request.Context(), publicConfigCacheKey, payload, publicConfigCacheTTL)

	response.Success(c, payload)
}
