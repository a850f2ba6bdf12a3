package admin

import (
	"errors"

	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/http/response"
	"github.com/toko-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetSettings 获取指定键的设置，默认返回店铺配置
func (h *Handler) GetSettings(c *gin.Context) {
	key := c.DefaultQuery("key", constants.SettingKeyShopConfig)

	value, err := h.SettingService.GetByKey(key)
	if err != nil {
		respondError(c, response.CodeInternal, "获取设置失败", err)
		return
	}
	if value == nil {
		response.Success(c, gin.H{})
		return
	}
	response.Success(c, value)
}

// UpdateSettingsRequest 更新设置请求
type UpdateSettingsRequest struct {
	Key   string                 `json:"key" binding:"required"`
	Value map[string]interface{} `json:"value" binding:"required"`
}

// UpdateSettings 更新设置（整键覆盖写入）
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	value, err := h.SettingService.Update(req.Key, req.Value)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(c, response.CodeBadRequest, "设置参数不合法", nil)
			return
		}
		respondError(c, response.CodeInternal, "保存设置失败", err)
		return
	}

	response.Success(c, value)
}
