package public

import "github.com/toko-next/internal/provider"

// Handler 前台/客户侧接口处理器入口
// 说明：该处理器仅用于客户、游客可见 API。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
