package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentMethod 收款方式配置（线下转账账户）
type PaymentMethod struct {
	ID            uint           `gorm:"primarykey" json:"id"`                   // 主键
	Name          string         `gorm:"not null" json:"name"`                   // 名称（如银行名）
	AccountName   string         `gorm:"not null" json:"account_name"`           // 账户名
	AccountNumber string         `gorm:"not null" json:"account_number"`         // 账号
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"` // 是否启用
	SortOrder     int            `gorm:"not null;default:0" json:"sort_order"`   // 排序
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间
}

// TableName 指定表名
func (PaymentMethod) TableName() string {
	return "payment_methods"
}
