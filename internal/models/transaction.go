package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction 库存交易表（出库订单与入库补货共用）
type Transaction struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                       // 主键
	TxnNo            string         `gorm:"uniqueIndex;not null" json:"txn_no"`                         // 交易编号
	Type             string         `gorm:"index;not null" json:"type"`                                 // 交易类型（in/out）
	UserID           uint           `gorm:"index;not null" json:"user_id"`                              // 下单用户ID（入库为操作管理员）
	Status           string         `gorm:"index;not null" json:"status"`                               // 交易状态
	TotalAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 合计金额（含配送费）
	DeliveryMethodID *uint          `gorm:"index" json:"delivery_method_id,omitempty"`                  // 配送方式ID（仅出库）
	DeliveryAddress  string         `gorm:"type:varchar(500)" json:"delivery_address,omitempty"`        // 配送地址
	PaymentMethodID  *uint          `gorm:"index" json:"payment_method_id,omitempty"`                   // 收款方式ID（仅出库）
	PaymentProof     string         `gorm:"type:varchar(500)" json:"payment_proof,omitempty"`           // 付款凭证
	TrackingNumber   string         `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`         // 快递单号
	Notes            string         `gorm:"type:varchar(1000)" json:"notes,omitempty"`                  // 备注
	ExpiresAt        *time.Time     `gorm:"index" json:"expires_at,omitempty"`                           // 待确认付款过期时间（仅出库 pending）
	CompletedAt      *time.Time     `gorm:"index" json:"completed_at"`                                  // 完成时间
	CanceledAt       *time.Time     `gorm:"index" json:"canceled_at"`                                   // 取消时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间

	Items []TransactionItem `gorm:"foreignKey:TransactionID" json:"items,omitempty"` // 交易明细
	// 关联
	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`                      // 用户信息
	DeliveryMethod *DeliveryMethod `gorm:"foreignKey:DeliveryMethodID" json:"delivery_method,omitempty"` // 配送方式
	PaymentMethod  *PaymentMethod  `gorm:"foreignKey:PaymentMethodID" json:"payment_method,omitempty"`   // 收款方式
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "transactions"
}
