package models

import (
	"time"

	"gorm.io/gorm"
)

// TransactionItem 交易明细表
type TransactionItem struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                     // 主键
	TransactionID uint           `gorm:"index;not null" json:"transaction_id"`                     // 交易ID
	ProductID     uint           `gorm:"index;not null" json:"product_id"`                         // 商品ID
	ProductCode   string         `gorm:"not null" json:"product_code"`                             // 商品编码快照
	ProductName   string         `gorm:"not null" json:"product_name"`                             // 商品名称快照
	UnitPrice     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 成交单价快照
	Quantity      int            `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                               // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (TransactionItem) TableName() string {
	return "transaction_items"
}
