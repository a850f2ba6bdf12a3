package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transactionTestEnv struct {
	db      *gorm.DB
	svc     *TransactionService
	admin   models.User
	user    models.User
	vipUser models.User
	pickup  models.DeliveryMethod
	courier models.DeliveryMethod
	payment models.PaymentMethod
}

func setupTransactionServiceTest(t *testing.T, name string) *transactionTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:txn_service_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Transaction{},
		&models.TransactionItem{},
		&models.DeliveryMethod{},
		&models.PaymentMethod{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	env := &transactionTestEnv{db: db}

	env.admin = models.User{Username: "admin-" + name, PasswordHash: "x", Role: constants.RoleAdmin, Type: constants.UserTypeRegular, Status: constants.UserStatusActive}
	env.user = models.User{Username: "user-" + name, PasswordHash: "x", Role: constants.RoleUser, Type: constants.UserTypeRegular, Status: constants.UserStatusActive}
	env.vipUser = models.User{Username: "vip-" + name, PasswordHash: "x", Role: constants.RoleUser, Type: constants.UserTypeVIP, Status: constants.UserStatusActive}
	for _, u := range []*models.User{&env.admin, &env.user, &env.vipUser} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}

	env.pickup = models.DeliveryMethod{Name: "到店自取", Kind: constants.DeliveryKindPickup, Cost: models.NewMoneyFromDecimal(decimal.Zero), IsActive: true}
	env.courier = models.DeliveryMethod{Name: "快递", Kind: constants.DeliveryKindCourier, Cost: models.NewMoneyFromDecimal(decimal.NewFromInt(10)), IsActive: true}
	for _, m := range []*models.DeliveryMethod{&env.pickup, &env.courier} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("create delivery method failed: %v", err)
		}
	}

	env.payment = models.PaymentMethod{Name: "转账", AccountName: "店主", AccountNumber: "123456", IsActive: true}
	if err := db.Create(&env.payment).Error; err != nil {
		t.Fatalf("create payment method failed: %v", err)
	}

	productRepo := repository.NewProductRepository(db)
	env.svc = NewTransactionService(
		repository.NewTransactionRepository(db),
		productRepo,
		repository.NewUserRepository(db),
		repository.NewDeliveryMethodRepository(db),
		repository.NewPaymentMethodRepository(db),
		NewStockLedger(productRepo),
		nil,
		nil,
		15,
	)
	return env
}

func (env *transactionTestEnv) createProduct(t *testing.T, code string, price int64, vipPrice *int64, stock int) models.Product {
	t.Helper()
	category := models.Category{Name: "分类-" + code}
	if err := env.db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := models.Product{
		CategoryID: category.ID,
		Code:       code,
		Name:       "商品-" + code,
		Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Stock:      stock,
		IsActive:   true,
	}
	if vipPrice != nil {
		vp := models.NewMoneyFromDecimal(decimal.NewFromInt(*vipPrice))
		product.VIPPrice = &vp
	}
	if err := env.db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func (env *transactionTestEnv) productStock(t *testing.T, productID uint) int {
	t.Helper()
	var product models.Product
	if err := env.db.First(&product, productID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	return product.Stock
}

func (env *transactionTestEnv) createOutbound(t *testing.T, actor Actor, deliveryID uint, address string, items ...CreateTransactionItemInput) *models.Transaction {
	t.Helper()
	txn, err := env.svc.CreateOutbound(actor, CreateOutboundInput{
		Items:            items,
		DeliveryMethodID: deliveryID,
		DeliveryAddress:  address,
		PaymentMethodID:  env.payment.ID,
	})
	if err != nil {
		t.Fatalf("CreateOutbound error: %v", err)
	}
	return txn
}

func TestCreateOutboundSnapshotsVIPPrice(t *testing.T) {
	env := setupTransactionServiceTest(t, "vip_price")
	vip := int64(80)
	product := env.createProduct(t, "P-VIP", 100, &vip, 10)

	actor := Actor{UserID: env.vipUser.ID, Role: constants.RoleUser}
	txn := env.createOutbound(t, actor, env.courier.ID, "某街道 1 号",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 2})

	if len(txn.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(txn.Items))
	}
	if txn.Items[0].UnitPrice.String() != "80.00" {
		t.Fatalf("expected vip unit price 80.00, got %s", txn.Items[0].UnitPrice.String())
	}
	// 2*80 + 配送费 10
	if txn.TotalAmount.String() != "170.00" {
		t.Fatalf("expected total 170.00, got %s", txn.TotalAmount.String())
	}
	if txn.Status != constants.TxnStatusPending {
		t.Fatalf("expected pending, got %s", txn.Status)
	}
	// 创建只校验库存，不扣减
	if got := env.productStock(t, product.ID); got != 10 {
		t.Fatalf("expected stock unchanged at 10, got %d", got)
	}
}

func TestCreateOutboundVIPFallsBackToStandardPrice(t *testing.T) {
	env := setupTransactionServiceTest(t, "vip_fallback")
	product := env.createProduct(t, "P-NOVIP", 100, nil, 10)

	actor := Actor{UserID: env.vipUser.ID, Role: constants.RoleUser}
	txn := env.createOutbound(t, actor, env.pickup.ID, "",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 1})

	if txn.Items[0].UnitPrice.String() != "100.00" {
		t.Fatalf("expected fallback unit price 100.00, got %s", txn.Items[0].UnitPrice.String())
	}
}

func TestCreateOutboundRejectsInsufficientStock(t *testing.T) {
	env := setupTransactionServiceTest(t, "insufficient")
	product := env.createProduct(t, "P-LOW", 50, nil, 5)

	actor := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	_, err := env.svc.CreateOutbound(actor, CreateOutboundInput{
		Items:            []CreateTransactionItemInput{{ProductID: product.ID, Quantity: 6}},
		DeliveryMethodID: env.pickup.ID,
		PaymentMethodID:  env.payment.ID,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got: %v", err)
	}
}

func TestCreateOutboundAggregatesDuplicateItems(t *testing.T) {
	env := setupTransactionServiceTest(t, "aggregate")
	product := env.createProduct(t, "P-DUP", 50, nil, 5)

	actor := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	_, err := env.svc.CreateOutbound(actor, CreateOutboundInput{
		Items: []CreateTransactionItemInput{
			{ProductID: product.ID, Quantity: 3},
			{ProductID: product.ID, Quantity: 3},
		},
		DeliveryMethodID: env.pickup.ID,
		PaymentMethodID:  env.payment.ID,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock for aggregated quantity, got: %v", err)
	}
}

func TestCreateOutboundCourierRequiresAddress(t *testing.T) {
	env := setupTransactionServiceTest(t, "courier_addr")
	product := env.createProduct(t, "P-ADDR", 50, nil, 5)

	actor := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	_, err := env.svc.CreateOutbound(actor, CreateOutboundInput{
		Items:            []CreateTransactionItemInput{{ProductID: product.ID, Quantity: 1}},
		DeliveryMethodID: env.courier.ID,
		PaymentMethodID:  env.payment.ID,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing address, got: %v", err)
	}
}

func TestOutboundLifecycleDecrementsStockOnce(t *testing.T) {
	env := setupTransactionServiceTest(t, "lifecycle")
	product := env.createProduct(t, "P-LIFE", 100, nil, 5)

	owner := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	admin := Actor{UserID: env.admin.ID, Role: constants.RoleAdmin}
	txn := env.createOutbound(t, owner, env.pickup.ID, "",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 2})

	steps := []struct {
		actor  Actor
		target string
	}{
		{owner, constants.TxnStatusPaymentConfirmed},
		{admin, constants.TxnStatusProcessing},
		{admin, constants.TxnStatusReadyForPickup},
	}
	for _, step := range steps {
		if _, err := env.svc.RequestTransition(step.actor, txn.ID, step.target, TransitionExtra{}); err != nil {
			t.Fatalf("transition to %s error: %v", step.target, err)
		}
		if got := env.productStock(t, product.ID); got != 5 {
			t.Fatalf("stock must stay 5 before completed, got %d at %s", got, step.target)
		}
	}

	updated, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusCompleted, TransitionExtra{})
	if err != nil {
		t.Fatalf("transition to completed error: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatalf("expected completed_at to be set")
	}
	if got := env.productStock(t, product.ID); got != 3 {
		t.Fatalf("expected stock 3 after completed, got %d", got)
	}
}

func TestTransitionRejectsSkippedState(t *testing.T) {
	env := setupTransactionServiceTest(t, "skip")
	product := env.createProduct(t, "P-SKIP", 100, nil, 5)

	owner := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	admin := Actor{UserID: env.admin.ID, Role: constants.RoleAdmin}
	txn := env.createOutbound(t, owner, env.pickup.ID, "",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 1})

	if _, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusProcessing, TransitionExtra{}); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected illegal transition for pending->processing, got: %v", err)
	}
	if _, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusCompleted, TransitionExtra{}); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected illegal transition for pending->completed, got: %v", err)
	}
}

func TestPaymentConfirmOnlyByOwner(t *testing.T) {
	env := setupTransactionServiceTest(t, "confirm_owner")
	product := env.createProduct(t, "P-OWN", 100, nil, 5)

	owner := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	admin := Actor{UserID: env.admin.ID, Role: constants.RoleAdmin}
	other := Actor{UserID: env.vipUser.ID, Role: constants.RoleUser}
	txn := env.createOutbound(t, owner, env.pickup.ID, "",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 1})

	if _, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusPaymentConfirmed, TransitionExtra{}); !errors.Is(err, ErrActorNotAllowed) {
		t.Fatalf("expected admin confirm to be rejected, got: %v", err)
	}
	if _, err := env.svc.RequestTransition(other, txn.ID, constants.TxnStatusPaymentConfirmed, TransitionExtra{}); !errors.Is(err, ErrActorNotAllowed) {
		t.Fatalf("expected other user confirm to be rejected, got: %v", err)
	}

	updated, err := env.svc.RequestTransition(owner, txn.ID, constants.TxnStatusPaymentConfirmed, TransitionExtra{PaymentProof: "proof.jpg"})
	if err != nil {
		t.Fatalf("owner confirm error: %v", err)
	}
	if updated.Status != constants.TxnStatusPaymentConfirmed {
		t.Fatalf("expected payment_confirmed, got %s", updated.Status)
	}
	if updated.PaymentProof != "proof.jpg" {
		t.Fatalf("expected payment proof to be stored, got %q", updated.PaymentProof)
	}
	if updated.ExpiresAt != nil {
		t.Fatalf("expected expires_at to be cleared after confirm")
	}
}

func TestShippingRequiresCourierAndTracking(t *testing.T) {
	env := setupTransactionServiceTest(t, "shipping")
	product := env.createProduct(t, "P-SHIP", 100, nil, 5)

	owner := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	admin := Actor{UserID: env.admin.ID, Role: constants.RoleAdmin}
	txn := env.createOutbound(t, owner, env.courier.ID, "某街道 1 号",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 1})

	if _, err := env.svc.RequestTransition(owner, txn.ID, constants.TxnStatusPaymentConfirmed, TransitionExtra{}); err != nil {
		t.Fatalf("confirm error: %v", err)
	}
	if _, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusProcessing, TransitionExtra{}); err != nil {
		t.Fatalf("processing error: %v", err)
	}

	// 快递订单不能转到店自取就绪
	if _, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusReadyForPickup, TransitionExtra{}); !errors.Is(err, ErrDeliveryMethodInvalid) {
		t.Fatalf("expected delivery method invalid, got: %v", err)
	}
	if _, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusShipping, TransitionExtra{}); !errors.Is(err, ErrTrackingNumberRequired) {
		t.Fatalf("expected tracking number required, got: %v", err)
	}

	updated, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusShipping, TransitionExtra{TrackingNumber: "JNE123"})
	if err != nil {
		t.Fatalf("shipping error: %v", err)
	}
	if updated.TrackingNumber != "JNE123" {
		t.Fatalf("expected tracking number stored, got %q", updated.TrackingNumber)
	}
}

func TestReadyForPickupRejectsCourierKindMismatch(t *testing.T) {
	env := setupTransactionServiceTest(t, "pickup_kind")
	product := env.createProduct(t, "P-PICK", 100, nil, 5)

	owner := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	admin := Actor{UserID: env.admin.ID, Role: constants.RoleAdmin}
	txn := env.createOutbound(t, owner, env.pickup.ID, "",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 1})

	if _, err := env.svc.RequestTransition(owner, txn.ID, constants.TxnStatusPaymentConfirmed, TransitionExtra{}); err != nil {
		t.Fatalf("confirm error: %v", err)
	}
	if _, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusProcessing, TransitionExtra{}); err != nil {
		t.Fatalf("processing error: %v", err)
	}
	// 自取订单不能发快递
	if _, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusShipping, TransitionExtra{TrackingNumber: "JNE123"}); !errors.Is(err, ErrDeliveryMethodInvalid) {
		t.Fatalf("expected delivery method invalid for pickup order shipping, got: %v", err)
	}
}

func TestCompleteRechecksStockAcrossTransactions(t *testing.T) {
	env := setupTransactionServiceTest(t, "recheck")
	product := env.createProduct(t, "P-RACE", 100, nil, 5)

	owner := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	admin := Actor{UserID: env.admin.ID, Role: constants.RoleAdmin}

	// 库存 5，两单分别要 5 和 1，创建时都能通过校验
	txnA := env.createOutbound(t, owner, env.pickup.ID, "",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 5})
	txnB := env.createOutbound(t, owner, env.pickup.ID, "",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 1})

	advance := func(txnID uint) error {
		if _, err := env.svc.RequestTransition(owner, txnID, constants.TxnStatusPaymentConfirmed, TransitionExtra{}); err != nil {
			return err
		}
		if _, err := env.svc.RequestTransition(admin, txnID, constants.TxnStatusProcessing, TransitionExtra{}); err != nil {
			return err
		}
		if _, err := env.svc.RequestTransition(admin, txnID, constants.TxnStatusReadyForPickup, TransitionExtra{}); err != nil {
			return err
		}
		_, err := env.svc.RequestTransition(admin, txnID, constants.TxnStatusCompleted, TransitionExtra{})
		return err
	}

	if err := advance(txnA.ID); err != nil {
		t.Fatalf("complete first transaction error: %v", err)
	}
	if got := env.productStock(t, product.ID); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}

	if err := advance(txnB.ID); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock on second completion, got: %v", err)
	}
	if got := env.productStock(t, product.ID); got != 0 {
		t.Fatalf("expected stock to remain 0, got %d", got)
	}
}

func TestReopenCompletedRestoresStock(t *testing.T) {
	env := setupTransactionServiceTest(t, "reopen")
	product := env.createProduct(t, "P-REOPEN", 100, nil, 5)

	owner := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	admin := Actor{UserID: env.admin.ID, Role: constants.RoleAdmin}
	txn := env.createOutbound(t, owner, env.pickup.ID, "",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 2})

	for _, target := range []string{constants.TxnStatusPaymentConfirmed} {
		if _, err := env.svc.RequestTransition(owner, txn.ID, target, TransitionExtra{}); err != nil {
			t.Fatalf("transition to %s error: %v", target, err)
		}
	}
	for _, target := range []string{constants.TxnStatusProcessing, constants.TxnStatusReadyForPickup, constants.TxnStatusCompleted} {
		if _, err := env.svc.RequestTransition(admin, txn.ID, target, TransitionExtra{}); err != nil {
			t.Fatalf("transition to %s error: %v", target, err)
		}
	}
	if got := env.productStock(t, product.ID); got != 3 {
		t.Fatalf("expected stock 3 after completed, got %d", got)
	}

	// 重开只能由管理员执行
	if _, err := env.svc.RequestTransition(owner, txn.ID, constants.TxnStatusProcessing, TransitionExtra{}); !errors.Is(err, ErrActorNotAllowed) {
		t.Fatalf("expected owner reopen to be rejected, got: %v", err)
	}
	reopened, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusProcessing, TransitionExtra{})
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	if reopened.Status != constants.TxnStatusProcessing {
		t.Fatalf("expected processing after reopen, got %s", reopened.Status)
	}
	if reopened.CompletedAt != nil {
		t.Fatalf("expected completed_at cleared after reopen")
	}
	if got := env.productStock(t, product.ID); got != 5 {
		t.Fatalf("expected stock restored to 5, got %d", got)
	}
}

func TestInboundAppliesEffectImmediately(t *testing.T) {
	env := setupTransactionServiceTest(t, "inbound")
	product := env.createProduct(t, "P-IN", 100, nil, 2)

	admin := Actor{UserID: env.admin.ID, Role: constants.RoleAdmin}
	owner := Actor{UserID: env.user.ID, Role: constants.RoleUser}

	if _, err := env.svc.CreateInbound(owner, CreateInboundInput{
		Items: []CreateTransactionItemInput{{ProductID: product.ID, Quantity: 3}},
	}); !errors.Is(err, ErrActorNotAllowed) {
		t.Fatalf("expected non-admin inbound to be rejected, got: %v", err)
	}

	txn, err := env.svc.CreateInbound(admin, CreateInboundInput{
		Items: []CreateTransactionItemInput{{ProductID: product.ID, Quantity: 3}},
		Notes: "补货",
	})
	if err != nil {
		t.Fatalf("CreateInbound error: %v", err)
	}
	if txn.Status != constants.TxnStatusCompleted {
		t.Fatalf("expected inbound created as completed, got %s", txn.Status)
	}
	if txn.CompletedAt == nil {
		t.Fatalf("expected completed_at set on inbound")
	}
	if got := env.productStock(t, product.ID); got != 5 {
		t.Fatalf("expected stock 5 after inbound, got %d", got)
	}

	// 入库交易没有任何后续流转
	if _, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusProcessing, TransitionExtra{}); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected inbound transition to be rejected, got: %v", err)
	}
}

func TestCancelRules(t *testing.T) {
	env := setupTransactionServiceTest(t, "cancel")
	product := env.createProduct(t, "P-CANCEL", 100, nil, 10)

	owner := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	admin := Actor{UserID: env.admin.ID, Role: constants.RoleAdmin}
	other := Actor{UserID: env.vipUser.ID, Role: constants.RoleUser}

	txn := env.createOutbound(t, owner, env.pickup.ID, "",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 1})

	if _, err := env.svc.RequestTransition(other, txn.ID, constants.TxnStatusCancelled, TransitionExtra{}); !errors.Is(err, ErrActorNotAllowed) {
		t.Fatalf("expected other user cancel to be rejected, got: %v", err)
	}
	cancelled, err := env.svc.RequestTransition(owner, txn.ID, constants.TxnStatusCancelled, TransitionExtra{})
	if err != nil {
		t.Fatalf("owner cancel error: %v", err)
	}
	if cancelled.Status != constants.TxnStatusCancelled || cancelled.CanceledAt == nil {
		t.Fatalf("expected cancelled with canceled_at, got %s", cancelled.Status)
	}
	// 终态不可再流转
	if _, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusProcessing, TransitionExtra{}); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected transition from cancelled to be rejected, got: %v", err)
	}

	// 发货后不可取消
	txn2 := env.createOutbound(t, owner, env.courier.ID, "某街道 1 号",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 1})
	if _, err := env.svc.RequestTransition(owner, txn2.ID, constants.TxnStatusPaymentConfirmed, TransitionExtra{}); err != nil {
		t.Fatalf("confirm error: %v", err)
	}
	if _, err := env.svc.RequestTransition(admin, txn2.ID, constants.TxnStatusProcessing, TransitionExtra{}); err != nil {
		t.Fatalf("processing error: %v", err)
	}
	if _, err := env.svc.RequestTransition(admin, txn2.ID, constants.TxnStatusShipping, TransitionExtra{TrackingNumber: "JNE1"}); err != nil {
		t.Fatalf("shipping error: %v", err)
	}
	if _, err := env.svc.RequestTransition(owner, txn2.ID, constants.TxnStatusCancelled, TransitionExtra{}); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected cancel after shipping to be rejected, got: %v", err)
	}
}

func TestCancelExpiredTransaction(t *testing.T) {
	env := setupTransactionServiceTest(t, "expire")
	product := env.createProduct(t, "P-EXP", 100, nil, 10)

	owner := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	txn := env.createOutbound(t, owner, env.pickup.ID, "",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 1})

	// 未到期的交易保持原状
	kept, err := env.svc.CancelExpiredTransaction(txn.ID)
	if err != nil {
		t.Fatalf("CancelExpiredTransaction error: %v", err)
	}
	if kept.Status != constants.TxnStatusPending {
		t.Fatalf("expected pending kept, got %s", kept.Status)
	}

	past := time.Now().Add(-time.Minute)
	if err := env.db.Model(&models.Transaction{}).Where("id = ?", txn.ID).Update("expires_at", past).Error; err != nil {
		t.Fatalf("backdate expires_at failed: %v", err)
	}
	cancelled, err := env.svc.CancelExpiredTransaction(txn.ID)
	if err != nil {
		t.Fatalf("CancelExpiredTransaction error: %v", err)
	}
	if cancelled.Status != constants.TxnStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	// 已取消的交易重复执行保持幂等
	again, err := env.svc.CancelExpiredTransaction(txn.ID)
	if err != nil {
		t.Fatalf("CancelExpiredTransaction repeat error: %v", err)
	}
	if again.Status != constants.TxnStatusCancelled {
		t.Fatalf("expected cancelled on repeat, got %s", again.Status)
	}
}

func TestStaleCompletionAppliesStockOnce(t *testing.T) {
	env := setupTransactionServiceTest(t, "stale_complete")
	product := env.createProduct(t, "P-STALE", 100, nil, 4)

	owner := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	admin := Actor{UserID: env.admin.ID, Role: constants.RoleAdmin}
	txn := env.createOutbound(t, owner, env.pickup.ID, "",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 1})

	for _, target := range []string{constants.TxnStatusPaymentConfirmed} {
		if _, err := env.svc.RequestTransition(owner, txn.ID, target, TransitionExtra{}); err != nil {
			t.Fatalf("transition to %s error: %v", target, err)
		}
	}
	for _, target := range []string{constants.TxnStatusProcessing, constants.TxnStatusReadyForPickup} {
		if _, err := env.svc.RequestTransition(admin, txn.ID, target, TransitionExtra{}); err != nil {
			t.Fatalf("transition to %s error: %v", target, err)
		}
	}

	// 两个完成请求基于同一次读取；先让第一个落库
	repo := repository.NewTransactionRepository(env.db)
	stale, err := repo.GetByID(txn.ID)
	if err != nil || stale == nil {
		t.Fatalf("load transaction failed: %v", err)
	}
	if _, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusCompleted, TransitionExtra{}); err != nil {
		t.Fatalf("first completion error: %v", err)
	}
	if got := env.productStock(t, product.ID); got != 3 {
		t.Fatalf("expected stock 3 after first completion, got %d", got)
	}

	// 落败一方携带过期的 ready_for_pickup 快照写入，必须命中 0 行
	rows, err := repo.UpdateStatus(stale.ID, stale.Status, constants.TxnStatusCompleted, map[string]interface{}{"completed_at": time.Now()})
	if err != nil {
		t.Fatalf("stale UpdateStatus error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("stale status write must hit 0 rows, got %d", rows)
	}

	// 服务层的第二次完成请求同样被拒绝，库存只扣了一次
	if _, err := env.svc.RequestTransition(admin, txn.ID, constants.TxnStatusCompleted, TransitionExtra{}); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected second completion to be rejected, got: %v", err)
	}
	if got := env.productStock(t, product.ID); got != 3 {
		t.Fatalf("expected stock to stay 3, got %d", got)
	}
}

func TestTimeoutCancelYieldsToConfirmedPayment(t *testing.T) {
	env := setupTransactionServiceTest(t, "cancel_yield")
	product := env.createProduct(t, "P-YIELD", 100, nil, 10)

	owner := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	txn := env.createOutbound(t, owner, env.pickup.ID, "",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 1})

	past := time.Now().Add(-time.Minute)
	if err := env.db.Model(&models.Transaction{}).Where("id = ?", txn.ID).Update("expires_at", past).Error; err != nil {
		t.Fatalf("backdate expires_at failed: %v", err)
	}

	// 用户确认付款先落库（worker 对 pending 的读取发生在此之前）
	repo := repository.NewTransactionRepository(env.db)
	rows, err := repo.UpdateStatus(txn.ID, constants.TxnStatusPending, constants.TxnStatusPaymentConfirmed, map[string]interface{}{"expires_at": nil})
	if err != nil || rows != 1 {
		t.Fatalf("confirm write failed: rows=%d err=%v", rows, err)
	}

	// worker 带着 pending 快照执行取消写入，必须命中 0 行
	rows, err = repo.UpdateStatus(txn.ID, constants.TxnStatusPending, constants.TxnStatusCancelled, map[string]interface{}{"canceled_at": time.Now()})
	if err != nil {
		t.Fatalf("stale cancel write error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("stale cancel write must hit 0 rows, got %d", rows)
	}

	// 服务层重入也不会覆盖已确认付款的交易
	got, err := env.svc.CancelExpiredTransaction(txn.ID)
	if err != nil {
		t.Fatalf("CancelExpiredTransaction error: %v", err)
	}
	if got.Status != constants.TxnStatusPaymentConfirmed {
		t.Fatalf("expected payment_confirmed preserved, got %s", got.Status)
	}
}

func TestGetForActorScopesOwnership(t *testing.T) {
	env := setupTransactionServiceTest(t, "scope")
	product := env.createProduct(t, "P-SCOPE", 100, nil, 10)

	owner := Actor{UserID: env.user.ID, Role: constants.RoleUser}
	other := Actor{UserID: env.vipUser.ID, Role: constants.RoleUser}
	admin := Actor{UserID: env.admin.ID, Role: constants.RoleAdmin}
	txn := env.createOutbound(t, owner, env.pickup.ID, "",
		CreateTransactionItemInput{ProductID: product.ID, Quantity: 1})

	if _, err := env.svc.GetForActor(owner, txn.ID); err != nil {
		t.Fatalf("owner get error: %v", err)
	}
	if _, err := env.svc.GetForActor(admin, txn.ID); err != nil {
		t.Fatalf("admin get error: %v", err)
	}
	if _, err := env.svc.GetForActor(other, txn.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for other user, got: %v", err)
	}
}
