package queue

import (
	"net"
	"strconv"
	"strings"

	"github.com/cartkeeper/internal/config"
	"github.com/cartkeeper/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	DefaultQueue     = constants.QueueDefault
	MaintenanceQueue = constants.QueueMaintenance

	defaultConcurrency = 10
)

// Client asynq 客户端，未启用队列时所有投递为空操作
type Client struct {
	client *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(redisOpt(cfg))}, nil
}

// Enabled 是否会真正投递
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭底层连接
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func (c *Client) enqueue(task *asynq.Task, err error, opts ...asynq.Option) error {
	if err != nil || !c.Enabled() {
		return err
	}
	_, err = c.client.Enqueue(task, opts...)
	return err
}

// EnqueueCartCheckedOut 投递结账事件
func (c *Client) EnqueueCartCheckedOut(payload CartCheckedOutPayload) error {
	task, err := NewCartCheckedOutTask(payload)
	return c.enqueue(task, err, asynq.Queue(DefaultQueue), asynq.MaxRetry(5))
}

// EnqueueCartPurgeStale 投递清理任务，固定 TaskID 保证同一时刻只有一个待执行
func (c *Client) EnqueueCartPurgeStale(payload CartPurgeStalePayload) error {
	task, err := NewCartPurgeStaleTask(payload)
	return c.enqueue(task, err,
		asynq.Queue(MaintenanceQueue),
		asynq.TaskID(TaskCartPurgeStale),
		asynq.MaxRetry(1),
	)
}

// BuildServerConfig 消费端连接与并发配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{DefaultQueue: 5, MaintenanceQueue: 1},
	}
	if cfg != nil && cfg.Concurrency > 0 {
		serverCfg.Concurrency = cfg.Concurrency
	}
	if cfg != nil && len(cfg.Queues) > 0 {
		serverCfg.Queues = cfg.Queues
	}
	return redisOpt(cfg), serverCfg
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host, port := strings.TrimSpace(cfg.Host), cfg.Port
	if host == "" {
		host = "127.0.0.1"
	}
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
