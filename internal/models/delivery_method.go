package models

import (
	"time"

	"gorm.io/gorm"
)

// DeliveryMethod 配送方式配置
type DeliveryMethod struct {
	ID        uint           `gorm:"primarykey" json:"id"`                               // 主键
	Name      string         `gorm:"not null" json:"name"`                               // 名称
	Kind      string         `gorm:"not null" json:"kind"`                               // 类型（pickup/courier）
	Cost      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"cost"` // 配送费用
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`             // 是否启用
	SortOrder int            `gorm:"not null;default:0" json:"sort_order"`               // 排序
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                            // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
}

// TableName 指定表名
func (DeliveryMethod) TableName() string {
	return "delivery_methods"
}
