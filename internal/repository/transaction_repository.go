package repository

import (
	"errors"

	"github.com/toko-next/internal/models"

	"gorm.io/gorm"
)

// TransactionRepository 交易数据访问接口
type TransactionRepository interface {
	Create(txn *models.Transaction, items []models.TransactionItem) error
	GetByID(id uint) (*models.Transaction, error)
	GetByIDAndUser(id uint, userID uint) (*models.Transaction, error)
	GetByTxnNo(txnNo string) (*models.Transaction, error)
	ListByUser(filter TransactionListFilter) ([]models.Transaction, int64, error)
	ListAdmin(filter TransactionListFilter) ([]models.Transaction, int64, error)
	UpdateStatus(id uint, from string, status string, updates map[string]interface{}) (int64, error)
	WithTx(tx *gorm.DB) *GormTransactionRepository
}

// GormTransactionRepository GORM 实现
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建交易仓库
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTransactionRepository) WithTx(tx *gorm.DB) *GormTransactionRepository {
	if tx == nil {
		return r
	}
	return &GormTransactionRepository{db: tx}
}

func (r *GormTransactionRepository) withDetail(query *gorm.DB) *gorm.DB {
	return query.Preload("Items").Preload("DeliveryMethod").Preload("PaymentMethod")
}

// Create 创建交易与交易明细
func (r *GormTransactionRepository) Create(txn *models.Transaction, items []models.TransactionItem) error {
	if err := r.db.Create(txn).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].TransactionID = txn.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取交易
func (r *GormTransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.withDetail(r.db).First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetByIDAndUser 获取用户自己的交易详情
func (r *GormTransactionRepository) GetByIDAndUser(id uint, userID uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.withDetail(r.db).Where("id = ? AND user_id = ?", id, userID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetByTxnNo 根据交易编号获取交易
func (r *GormTransactionRepository) GetByTxnNo(txnNo string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.withDetail(r.db).Where("txn_no = ?", txnNo).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListByUser 获取用户交易列表
func (r *GormTransactionRepository) ListByUser(filter TransactionListFilter) ([]models.Transaction, int64, error) {
	var txns []models.Transaction
	query := r.db.Model(&models.Transaction{}).Where("user_id = ?", filter.UserID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.TxnNo != "" {
		query = query.Where("txn_no LIKE ?", "%"+filter.TxnNo+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := r.withDetail(query).Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// ListAdmin 管理端交易列表
func (r *GormTransactionRepository) ListAdmin(filter TransactionListFilter) ([]models.Transaction, int64, error) {
	var txns []models.Transaction
	query := r.db.Model(&models.Transaction{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TxnNo != "" {
		query = query.Where("txn_no = ?", filter.TxnNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := r.withDetail(query.Preload("User")).Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// UpdateStatus 以读取时的状态为条件更新交易状态，返回命中行数。
// from 不再匹配（已被并发修改）时不写入，由调用方裁决。
func (r *GormTransactionRepository) UpdateStatus(id uint, from string, status string, updates map[string]interface{}) (int64, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	result := r.db.Model(&models.Transaction{}).Where("id = ? AND status = ?", id, from).Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
