package service

import (
	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/logger"
	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/repository"

	"gorm.io/gorm"
)

// StockLedger 库存台账。
// 出库交易在进入 completed 时扣减库存，入库交易在创建时增加库存；
// 反向操作（管理员重开已完成交易）执行相反的增减。
// 扣减不足时归零并记录 stock_clamped 告警，库存永不为负。
type StockLedger struct {
	productRepo repository.ProductRepository
}

// NewStockLedger 创建库存台账
func NewStockLedger(productRepo repository.ProductRepository) *StockLedger {
	return &StockLedger{productRepo: productRepo}
}

// CanSatisfy 校验当前库存能否满足全部出库明细。
// 同一商品的多条明细按合计数量校验。传入 tx 时在事务内读取。
func (l *StockLedger) CanSatisfy(tx *gorm.DB, items []models.TransactionItem) error {
	if len(items) == 0 {
		return ErrInvalidItem
	}
	required := make(map[uint]int, len(items))
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity < 1 {
			return ErrInvalidItem
		}
		if _, seen := required[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		required[item.ProductID] += item.Quantity
	}

	products, err := l.productRepo.WithTx(tx).ListByIDs(ids)
	if err != nil {
		return err
	}
	stock := make(map[uint]int, len(products))
	for _, product := range products {
		stock[product.ID] = product.Stock
	}
	for productID, quantity := range required {
		available, ok := stock[productID]
		if !ok {
			return ErrInvalidItem
		}
		if available < quantity {
			return ErrInsufficientStock
		}
	}
	return nil
}

// ApplyEffect 应用交易的库存效果（出库扣减、入库增加）
func (l *StockLedger) ApplyEffect(tx *gorm.DB, txnType string, items []models.TransactionItem) error {
	switch txnType {
	case constants.TxnTypeOut:
		return l.decrementItems(tx, items)
	case constants.TxnTypeIn:
		return l.incrementItems(tx, items)
	default:
		return ErrValidation
	}
}

// ReverseEffect 撤销交易的库存效果（出库归还、入库扣回）
func (l *StockLedger) ReverseEffect(tx *gorm.DB, txnType string, items []models.TransactionItem) error {
	switch txnType {
	case constants.TxnTypeOut:
		return l.incrementItems(tx, items)
	case constants.TxnTypeIn:
		return l.decrementItems(tx, items)
	default:
		return ErrValidation
	}
}

func (l *StockLedger) incrementItems(tx *gorm.DB, items []models.TransactionItem) error {
	repo := l.productRepo.WithTx(tx)
	for _, item := range items {
		affected, err := repo.IncrementStock(item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInvalidItem
		}
	}
	return nil
}

func (l *StockLedger) decrementItems(tx *gorm.DB, items []models.TransactionItem) error {
	repo := l.productRepo.WithTx(tx)
	for _, item := range items {
		product, err := repo.GetByID(item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrInvalidItem
		}
		if product.Stock < item.Quantity {
			// 扣减会归零而不是为负，双重撤销等异常由告警暴露
			logger.Warnw("stock_clamped",
				"product_id", product.ID,
				"product_code", product.Code,
				"stock", product.Stock,
				"requested", item.Quantity,
			)
		}
		affected, err := repo.DecrementStockClamped(item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInvalidItem
		}
	}
	return nil
}
