package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（管理员与普通客户共用）
type User struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                 // 主键
	Username           string         `gorm:"uniqueIndex;not null" json:"username"` // 登录名
	PasswordHash       string         `gorm:"not null" json:"-"`                    // 密码哈希（不返回给前端）
	Role               string         `gorm:"not null;default:'user';index" json:"role"` // 角色（admin/user）
	Type               string         `gorm:"not null;default:'regular'" json:"type"`    // 客户等级（regular/vip）
	Name               string         `gorm:"default:''" json:"name"`               // 姓名
	Email              string         `gorm:"default:''" json:"email"`              // 邮箱
	Phone              string         `gorm:"default:''" json:"phone"`              // 电话
	Address            string         `gorm:"type:varchar(500)" json:"address"`     // 地址
	CSCode             string         `gorm:"default:''" json:"cs_code"`            // 客户编号
	Status             string         `gorm:"default:'active'" json:"status"`       // 账号状态
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`          // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                       // 该时间点前签发的 Token 失效
	LastLoginAt        *time.Time     `json:"last_login_at"`                        // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`              // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`              // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                       // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
