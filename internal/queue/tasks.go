package queue

import (
	"encoding/json"
	"time"

	"github.com/cartkeeper/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	TaskCartCheckedOut = constants.TaskCartCheckedOut
	TaskCartPurgeStale = constants.TaskCartPurgeStale
)

// CartCheckedOutPayload 结账事件，只在首次结账时发布
type CartCheckedOutPayload struct {
	CartID       uint      `json:"cart_id"`
	UserID       *uint     `json:"user_id,omitempty"`
	CheckedOutAt time.Time `json:"checked_out_at"`
}

// CartPurgeStalePayload 清理 Before 之前创建且未结账的匿名购物车
type CartPurgeStalePayload struct {
	Before    time.Time `json:"before"`
	BatchSize int       `json:"batch_size"`
}

func newTask(typename string, payload any) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typename, body), nil
}

// NewCartCheckedOutTask 结账事件任务
func NewCartCheckedOutTask(payload CartCheckedOutPayload) (*asynq.Task, error) {
	return newTask(TaskCartCheckedOut, payload)
}

// NewCartPurgeStaleTask 清理任务
func NewCartPurgeStaleTask(payload CartPurgeStalePayload) (*asynq.Task, error) {
	return newTask(TaskCartPurgeStale, payload)
}
