package queue

import (
	"encoding/json"

	"github.com/toko-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskTxnConfirmTimeout 待确认付款超时取消任务
	TaskTxnConfirmTimeout = constants.TaskTxnConfirmTimeout
)

// TxnConfirmTimeoutPayload 超时取消任务载荷
type TxnConfirmTimeoutPayload struct {
	TransactionID uint `json:"transaction_id"`
}

// NewTxnConfirmTimeoutTask 创建超时取消任务
func NewTxnConfirmTimeoutTask(payload TxnConfirmTimeoutPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTxnConfirmTimeout, body), nil
}
