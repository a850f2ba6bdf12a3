package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/provider"
	"github.com/toko-next/internal/queue"
	"github.com/toko-next/internal/repository"
	"github.com/toko-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T, name string) (*gorm.DB, *Consumer) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
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

	productRepo := repository.NewProductRepository(db)
	svc := service.NewTransactionService(
		repository.NewTransactionRepository(db),
		productRepo,
		repository.NewUserRepository(db),
		repository.NewDeliveryMethodRepository(db),
		repository.NewPaymentMethodRepository(db),
		service.NewStockLedger(productRepo),
		nil,
		nil,
		15,
	)
	consumer := NewConsumer(&provider.Container{TransactionService: svc})
	return db, consumer
}

func createExpiredTransaction(t *testing.T, db *gorm.DB, name string, expiresAt time.Time) models.Transaction {
	t.Helper()
	user := models.User{Username: "user-" + name, PasswordHash: "x", Role: constants.RoleUser, Type: constants.UserTypeRegular, Status: constants.UserStatusActive}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	txn := models.Transaction{
		TxnNo:       "TK-worker-" + name,
		Type:        constants.TxnTypeOut,
		UserID:      user.ID,
		Status:      constants.TxnStatusPending,
		TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		ExpiresAt:   &expiresAt,
	}
	if err := db.Create(&txn).Error; err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
	return txn
}

func TestHandleTxnConfirmTimeoutCancelsExpired(t *testing.T) {
	db, consumer := setupConsumerTest(t, "expired")
	txn := createExpiredTransaction(t, db, "expired", time.Now().Add(-time.Minute))

	task, err := queue.NewTxnConfirmTimeoutTask(queue.TxnConfirmTimeoutPayload{TransactionID: txn.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleTxnConfirmTimeout(context.Background(), task); err != nil {
		t.Fatalf("handleTxnConfirmTimeout error: %v", err)
	}

	var got models.Transaction
	if err := db.First(&got, txn.ID).Error; err != nil {
		t.Fatalf("load transaction failed: %v", err)
	}
	if got.Status != constants.TxnStatusCancelled {
		t.Fatalf("status want cancelled got %s", got.Status)
	}
	if got.CanceledAt == nil {
		t.Fatalf("canceled_at should be set")
	}
}

func TestHandleTxnConfirmTimeoutKeepsUnexpired(t *testing.T) {
	db, consumer := setupConsumerTest(t, "fresh")
	txn := createExpiredTransaction(t, db, "fresh", time.Now().Add(time.Hour))

	task, err := queue.NewTxnConfirmTimeoutTask(queue.TxnConfirmTimeoutPayload{TransactionID: txn.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleTxnConfirmTimeout(context.Background(), task); err != nil {
		t.Fatalf("handleTxnConfirmTimeout error: %v", err)
	}

	var got models.Transaction
	if err := db.First(&got, txn.ID).Error; err != nil {
		t.Fatalf("load transaction failed: %v", err)
	}
	if got.Status != constants.TxnStatusPending {
		t.Fatalf("status want pending got %s", got.Status)
	}
}

func TestHandleTxnConfirmTimeoutMissingTransaction(t *testing.T) {
	_, consumer := setupConsumerTest(t, "missing")

	task, err := queue.NewTxnConfirmTimeoutTask(queue.TxnConfirmTimeoutPayload{TransactionID: 9999})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleTxnConfirmTimeout(context.Background(), task); err != nil {
		t.Fatalf("missing transaction should not error, got: %v", err)
	}
}

func TestHandleTxnConfirmTimeoutInvalidPayload(t *testing.T) {
	_, consumer := setupConsumerTest(t, "invalid")

	task := asynq.NewTask(queue.TaskTxnConfirmTimeout, []byte("{not-json"))
	if err := consumer.handleTxnConfirmTimeout(context.Background(), task); err == nil {
		t.Fatalf("invalid payload should error")
	}

	zero, err := queue.NewTxnConfirmTimeoutTask(queue.TxnConfirmTimeoutPayload{})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleTxnConfirmTimeout(context.Background(), zero); err != nil {
		t.Fatalf("zero id payload should be skipped, got: %v", err)
	}
}
