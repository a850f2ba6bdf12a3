package repository

import (
	"errors"

	"github.com/toko-next/internal/models"

	"gorm.io/gorm"
)

// DeliveryMethodRepository 配送方式数据访问接口
type DeliveryMethodRepository interface {
	List(onlyActive bool) ([]models.DeliveryMethod, error)
	GetByID(id uint) (*models.DeliveryMethod, error)
	Create(method *models.DeliveryMethod) error
	Update(method *models.DeliveryMethod) error
	Delete(id uint) error
}

// GormDeliveryMethodRepository GORM 实现
type GormDeliveryMethodRepository struct {
	db *gorm.DB
}

// NewDeliveryMethodRepository 创建配送方式仓库
func NewDeliveryMethodRepository(db *gorm.DB) *GormDeliveryMethodRepository {
	return &GormDeliveryMethodRepository{db: db}
}

// List 配送方式列表
func (r *GormDeliveryMethodRepository) List(onlyActive bool) ([]models.DeliveryMethod, error) {
	query := r.db.Order("sort_order DESC, id ASC")
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var methods []models.DeliveryMethod
	if err := query.Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// GetByID 根据 ID 获取配送方式
func (r *GormDeliveryMethodRepository) GetByID(id uint) (*models.DeliveryMethod, error) {
	var method models.DeliveryMethod
	if err := r.db.First(&method, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}

// Create 创建配送方式
func (r *GormDeliveryMethodRepository) Create(method *models.DeliveryMethod) error {
	return r.db.Create(method).Error
}

// Update 更新配送方式
func (r *GormDeliveryMethodRepository) Update(method *models.DeliveryMethod) error {
	return r.db.Save(method).Error
}

// Delete 删除配送方式
func (r *GormDeliveryMethodRepository) Delete(id uint) error {
	return r.db.Delete(&models.DeliveryMethod{}, id).Error
}
