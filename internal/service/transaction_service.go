package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/logger"
	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/queue"
	"github.com/toko-next/internal/repository"

	"gorm.io/gorm"
)

// TransactionService 交易业务服务。
// 出库交易走七状态生命周期，库存在进入 completed 时一次性扣减；
// 入库交易由管理员创建，创建即完成并立即增加库存。
type TransactionService struct {
	txnRepo        repository.TransactionRepository
	productRepo    repository.ProductRepository
	userRepo       repository.UserRepository
	deliveryRepo   repository.DeliveryMethodRepository
	paymentRepo    repository.PaymentMethodRepository
	ledger         *StockLedger
	settingService *SettingService
	queueClient    *queue.Client
	expireMinutes  int
}

// NewTransactionService 创建交易服务
func NewTransactionService(
	txnRepo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	deliveryRepo repository.DeliveryMethodRepository,
	paymentRepo repository.PaymentMethodRepository,
	ledger *StockLedger,
	settingService *SettingService,
	queueClient *queue.Client,
	expireMinutes int,
) *TransactionService {
	return &TransactionService{
		txnRepo:        txnRepo,
		productRepo:    productRepo,
		userRepo:       userRepo,
		deliveryRepo:   deliveryRepo,
		paymentRepo:    paymentRepo,
		ledger:         ledger,
		settingService: settingService,
		queueClient:    queueClient,
		expireMinutes:  expireMinutes,
	}
}

// CreateTransactionItemInput 交易明细输入
type CreateTransactionItemInput struct {
	ProductID uint
	Quantity  int
}

// CreateOutboundInput 创建出库交易（订单）输入
type CreateOutboundInput struct {
	Items            []CreateTransactionItemInput
	DeliveryMethodID uint
	DeliveryAddress  string
	PaymentMethodID  uint
	Notes            string
}

// CreateInboundInput 创建入库交易（补货）输入
type CreateInboundInput struct {
	Items []CreateTransactionItemInput
	Notes string
}

// TransitionExtra 状态流转附加字段
type TransitionExtra struct {
	TrackingNumber string
	PaymentProof   string
}

// CreateOutbound 创建出库交易。
// 成交价按下单用户等级快照，合计含配送费；创建时校验库存可满足，但不扣减。
func (s *TransactionService) CreateOutbound(actor Actor, input CreateOutboundInput) (*models.Transaction, error) {
	if len(input.Items) == 0 {
		return nil, ErrInvalidItem
	}

	user, err := s.userRepo.GetByID(actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	delivery, err := s.deliveryRepo.GetByID(input.DeliveryMethodID)
	if err != nil {
		return nil, err
	}
	if delivery == nil || !delivery.IsActive {
		return nil, ErrDeliveryMethodInvalid
	}
	if delivery.Kind == constants.DeliveryKindCourier && strings.TrimSpace(input.DeliveryAddress) == "" {
		return nil, ErrValidation
	}

	payment, err := s.paymentRepo.GetByID(input.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if payment == nil || !payment.IsActive {
		return nil, ErrPaymentMethodInvalid
	}

	items, totalAmount, err := s.buildOutboundItems(input.Items, user.Type)
	if err != nil {
		return nil, err
	}
	totalAmount = totalAmount.Add(delivery.Cost)

	expireMinutes := s.resolveExpireMinutes()
	expiresAt := time.Now().Add(time.Duration(expireMinutes) * time.Minute)

	txn := &models.Transaction{
		TxnNo:            generateTxnNo(),
		Type:             constants.TxnTypeOut,
		UserID:           user.ID,
		Status:           constants.TxnStatusPending,
		TotalAmount:      totalAmount,
		DeliveryMethodID: &delivery.ID,
		DeliveryAddress:  strings.TrimSpace(input.DeliveryAddress),
		PaymentMethodID:  &payment.ID,
		Notes:            input.Notes,
		ExpiresAt:        &expiresAt,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		// 创建与库存校验在同一事务内，避免校验后被并发写穿
		if err := s.ledger.CanSatisfy(tx, items); err != nil {
			return err
		}
		return s.txnRepo.WithTx(tx).Create(txn, items)
	})
	if err != nil {
		return nil, err
	}
	txn.Items = items

	logger.Infow("transaction_created",
		"txn_id", txn.ID,
		"txn_no", txn.TxnNo,
		"type", txn.Type,
		"user_id", txn.UserID,
		"total_amount", txn.TotalAmount.String(),
	)

	if s.queueClient != nil {
		payload := queue.TxnConfirmTimeoutPayload{TransactionID: txn.ID}
		if err := s.queueClient.EnqueueTxnConfirmTimeout(payload, time.Until(expiresAt)); err != nil {
			logger.Warnw("transaction_enqueue_timeout_cancel_failed", "txn_id", txn.ID, "error", err)
		}
	}

	return txn, nil
}

// CreateInbound 创建入库交易。
// 仅管理员可执行，创建即完成，库存在创建事务内增加。
func (s *TransactionService) CreateInbound(actor Actor, input CreateInboundInput) (*models.Transaction, error) {
	if !actor.IsAdmin() {
		return nil, ErrActorNotAllowed
	}
	if len(input.Items) == 0 {
		return nil, ErrInvalidItem
	}

	items, totalAmount, err := s.buildInboundItems(input.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	txn := &models.Transaction{
		TxnNo:       generateTxnNo(),
		Type:        constants.TxnTypeIn,
		UserID:      actor.UserID,
		Status:      constants.TxnStatusCompleted,
		TotalAmount: totalAmount,
		Notes:       input.Notes,
		CompletedAt: &now,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.txnRepo.WithTx(tx).Create(txn, items); err != nil {
			return err
		}
		return s.ledger.ApplyEffect(tx, constants.TxnTypeIn, items)
	})
	if err != nil {
		return nil, err
	}
	txn.Items = items

	logger.Infow("transaction_created",
		"txn_id", txn.ID,
		"txn_no", txn.TxnNo,
		"type", txn.Type,
		"user_id", txn.UserID,
	)
	return txn, nil
}

// RequestTransition 请求出库交易状态流转。
// 合法性与操作者权限由流转表统一裁决；completed 进出伴随库存效果，
// 其余流转只更新状态与附加字段。
func (s *TransactionService) RequestTransition(actor Actor, txnID uint, target string, extra TransitionExtra) (*models.Transaction, error) {
	txn, err := s.txnRepo.GetByID(txnID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrNotFound
	}

	if err := authorizeTransition(txn, target, actor); err != nil {
		return nil, err
	}

	from := txn.Status
	updates := map[string]interface{}{}

	switch target {
	case constants.TxnStatusPaymentConfirmed:
		if proof := strings.TrimSpace(extra.PaymentProof); proof != "" {
			updates["payment_proof"] = proof
		}
		updates["expires_at"] = nil
		if err := s.updateStatusGuarded(nil, txn, target, updates); err != nil {
			return nil, err
		}

	case constants.TxnStatusProcessing:
		if from == constants.TxnStatusCompleted {
			// 管理员重开已完成交易，撤销已扣减的库存。
			// 先按旧状态条件写入状态，再回补库存，整体同一事务。
			err = models.DB.Transaction(func(tx *gorm.DB) error {
				updates["completed_at"] = nil
				if err := s.updateStatusGuarded(tx, txn, target, updates); err != nil {
					return err
				}
				return s.ledger.ReverseEffect(tx, txn.Type, txn.Items)
			})
			if err != nil {
				return nil, err
			}
			logger.Infow("transaction_reopened", "txn_id", txn.ID, "txn_no", txn.TxnNo)
		} else {
			if err := s.updateStatusGuarded(nil, txn, target, updates); err != nil {
				return nil, err
			}
		}

	case constants.TxnStatusReadyForPickup:
		if err := s.requireDeliveryKind(txn, constants.DeliveryKindPickup); err != nil {
			return nil, err
		}
		if err := s.updateStatusGuarded(nil, txn, target, updates); err != nil {
			return nil, err
		}

	case constants.TxnStatusShipping:
		if err := s.requireDeliveryKind(txn, constants.DeliveryKindCourier); err != nil {
			return nil, err
		}
		tracking := strings.TrimSpace(extra.TrackingNumber)
		if tracking == "" {
			tracking = strings.TrimSpace(txn.TrackingNumber)
		}
		if tracking == "" {
			return nil, ErrTrackingNumberRequired
		}
		updates["tracking_number"] = tracking
		if err := s.updateStatusGuarded(nil, txn, target, updates); err != nil {
			return nil, err
		}

	case constants.TxnStatusCompleted:
		err = models.DB.Transaction(func(tx *gorm.DB) error {
			// 先按旧状态条件占住流转，并发的第二次完成命中 0 行直接失败，
			// 库存校验与扣减随后在同一事务内执行，效果恰好一次。
			now := time.Now()
			updates["completed_at"] = now
			if err := s.updateStatusGuarded(tx, txn, target, updates); err != nil {
				return err
			}
			if err := s.ledger.CanSatisfy(tx, txn.Items); err != nil {
				return err
			}
			return s.ledger.ApplyEffect(tx, txn.Type, txn.Items)
		})
		if err != nil {
			return nil, err
		}

	case constants.TxnStatusCancelled:
		now := time.Now()
		updates["canceled_at"] = now
		updates["expires_at"] = nil
		if err := s.updateStatusGuarded(nil, txn, target, updates); err != nil {
			return nil, err
		}

	default:
		return nil, ErrIllegalTransition
	}

	logger.Infow("transaction_status_updated",
		"txn_id", txn.ID,
		"txn_no", txn.TxnNo,
		"from", from,
		"to", target,
		"actor_id", actor.UserID,
		"actor_role", actor.Role,
	)

	return s.txnRepo.GetByID(txn.ID)
}

// CancelExpiredTransaction 超时取消仍处于待确认付款状态的交易
func (s *TransactionService) CancelExpiredTransaction(txnID uint) (*models.Transaction, error) {
	if txnID == 0 {
		return nil, ErrNotFound
	}
	txn, err := s.txnRepo.GetByID(txnID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrNotFound
	}
	if txn.Status != constants.TxnStatusPending {
		return txn, nil
	}
	if txn.ExpiresAt == nil {
		return txn, nil
	}
	now := time.Now()
	if txn.ExpiresAt.After(now) {
		return txn, nil
	}

	updates := map[string]interface{}{
		"canceled_at": now,
		"expires_at":  nil,
	}
	rows, err := s.txnRepo.UpdateStatus(txn.ID, constants.TxnStatusPending, constants.TxnStatusCancelled, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// 读取与写入之间状态已被推进（如用户刚确认付款），放弃取消
		logger.Infow("transaction_timeout_cancel_skipped", "txn_id", txn.ID, "txn_no", txn.TxnNo)
		return s.txnRepo.GetByID(txn.ID)
	}
	logger.Infow("transaction_timeout_cancelled", "txn_id", txn.ID, "txn_no", txn.TxnNo)
	return s.txnRepo.GetByID(txn.ID)
}

// GetForActor 获取交易详情，普通用户只能查看自己的交易
func (s *TransactionService) GetForActor(actor Actor, txnID uint) (*models.Transaction, error) {
	if actor.IsAdmin() {
		txn, err := s.txnRepo.GetByID(txnID)
		if err != nil {
			return nil, err
		}
		if txn == nil {
			return nil, ErrNotFound
		}
		return txn, nil
	}
	txn, err := s.txnRepo.GetByIDAndUser(txnID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrNotFound
	}
	return txn, nil
}

// ListForUser 用户自己的交易列表
func (s *TransactionService) ListForUser(actor Actor, filter repository.TransactionListFilter) ([]models.Transaction, int64, error) {
	filter.UserID = actor.UserID
	return s.txnRepo.ListByUser(filter)
}

// ListAdmin 管理端交易列表
func (s *TransactionService) ListAdmin(filter repository.TransactionListFilter) ([]models.Transaction, int64, error) {
	return s.txnRepo.ListAdmin(filter)
}

func (s *TransactionService) buildOutboundItems(inputs []CreateTransactionItemInput, userType string) ([]models.TransactionItem, models.Money, error) {
	ids := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		if in.ProductID == 0 || in.Quantity < 1 {
			return nil, models.Money{}, ErrInvalidItem
		}
		ids = append(ids, in.ProductID)
	}
	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, models.Money{}, err
	}
	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]models.TransactionItem, 0, len(inputs))
	var total models.Money
	for _, in := range inputs {
		product := byID[in.ProductID]
		if product == nil || !product.IsActive {
			return nil, models.Money{}, ErrInvalidItem
		}
		unitPrice := ResolveUnitPrice(product, userType)
		lineTotal := unitPrice.MulInt(in.Quantity)
		items = append(items, models.TransactionItem{
			ProductID:   product.ID,
			ProductCode: product.Code,
			ProductName: product.Name,
			UnitPrice:   unitPrice,
			Quantity:    in.Quantity,
			TotalPrice:  lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return items, total, nil
}

func (s *TransactionService) buildInboundItems(inputs []CreateTransactionItemInput) ([]models.TransactionItem, models.Money, error) {
	ids := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		if in.ProductID == 0 || in.Quantity < 1 {
			return nil, models.Money{}, ErrInvalidItem
		}
		ids = append(ids, in.ProductID)
	}
	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, models.Money{}, err
	}
	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]models.TransactionItem, 0, len(inputs))
	var total models.Money
	for _, in := range inputs {
		product := byID[in.ProductID]
		if product == nil {
			return nil, models.Money{}, ErrInvalidItem
		}
		lineTotal := product.Price.MulInt(in.Quantity)
		items = append(items, models.TransactionItem{
			ProductID:   product.ID,
			ProductCode: product.Code,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    in.Quantity,
			TotalPrice:  lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return items, total, nil
}

// updateStatusGuarded 以读取到的旧状态为条件写入目标状态。
// 命中 0 行说明状态已被并发修改，视作非法流转。
func (s *TransactionService) updateStatusGuarded(tx *gorm.DB, txn *models.Transaction, target string, updates map[string]interface{}) error {
	repo := s.txnRepo
	if tx != nil {
		repo = s.txnRepo.WithTx(tx)
	}
	rows, err := repo.UpdateStatus(txn.ID, txn.Status, target, updates)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrIllegalTransition
	}
	return nil
}

func (s *TransactionService) requireDeliveryKind(txn *models.Transaction, kind string) error {
	if txn.DeliveryMethodID == nil {
		return ErrDeliveryMethodInvalid
	}
	method := txn.DeliveryMethod
	if method == nil {
		loaded, err := s.deliveryRepo.GetByID(*txn.DeliveryMethodID)
		if err != nil {
			return err
		}
		method = loaded
	}
	if method == nil || method.Kind != kind {
		return ErrDeliveryMethodInvalid
	}
	return nil
}

func (s *TransactionService) resolveExpireMinutes() int {
	defaultMinutes := s.expireMinutes
	if defaultMinutes <= 0 {
		defaultMinutes = 120
	}
	if s.settingService == nil {
		return defaultMinutes
	}
	minutes, err := s.settingService.GetConfirmExpireMinutes(defaultMinutes)
	if err != nil {
		return defaultMinutes
	}
	if minutes <= 0 {
		return defaultMinutes
	}
	return minutes
}

func generateTxnNo() string {
	now := time.Now().Format("20060102150405")
	randPart := randNumeric(6)
	return fmt.Sprintf("TK%s%s", now, randPart)
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}
