package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                       // 主键
	CategoryID uint           `gorm:"not null;index" json:"category_id"`                          // 分类ID
	Code       string         `gorm:"uniqueIndex;not null" json:"code"`                           // 商品编码（唯一）
	Name       string         `gorm:"not null" json:"name"`                                       // 商品名称
	Price      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`        // 标准售价
	VIPPrice   *Money         `gorm:"type:decimal(20,2)" json:"vip_price,omitempty"`              // VIP 售价（空表示未设置）
	Stock      int            `gorm:"not null;default:0" json:"stock"`                            // 库存数量（不会为负）
	IsActive   bool           `gorm:"default:true;index" json:"is_active"`                        // 是否在售
	SortOrder  int            `gorm:"default:0;index" json:"sort_order"`                          // 排序权重
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                                 // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间

	// 关联
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
