package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/toko-next/internal/logger"
	"github.com/toko-next/internal/provider"
	"github.com/toko-next/internal/queue"
	"github.com/toko-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskTxnConfirmTimeout, c.handleTxnConfirmTimeout)
}

func (c *Consumer) handleTxnConfirmTimeout(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_txn_confirm_timeout_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.TxnConfirmTimeoutPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_txn_confirm_timeout_unmarshal_failed", "error", err)
		return err
	}
	if payload.TransactionID == 0 {
		logger.Debugw("worker_txn_confirm_timeout_skip_invalid_payload", "txn_id", payload.TransactionID)
		return nil
	}
	if c.TransactionService == nil {
		logger.Warnw("worker_txn_confirm_timeout_skip_service_nil", "txn_id", payload.TransactionID)
		return nil
	}
	_, err := c.TransactionService.CancelExpiredTransaction(payload.TransactionID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.Debugw("worker_txn_confirm_timeout_skip_txn_not_found", "txn_id", payload.TransactionID)
			return nil
		}
		logger.Warnw("worker_txn_confirm_timeout_failed", "txn_id", payload.TransactionID, "error", err)
		return err
	}
	return nil
}
