package worker

import (
	"context"
	"errors"
	"time"

	"github.com/cartkeeper/internal/config"
	"github.com/cartkeeper/internal/logger"
	"github.com/cartkeeper/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultPurgeInterval = time.Hour

// Service 后台服务：可选的 asynq 消费端加周期清理循环
// server 为空时只跑清理循环，用于未启用队列的 all 模式
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	interval time.Duration
}

// NewService 队列消费服务，同时周期性投递清理任务
func NewService(cfg *config.QueueConfig, cartCfg config.CartConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   asynq.NewServer(opt, serverCfg),
		mux:      mux,
		consumer: consumer,
		interval: purgeInterval(cartCfg),
	}, nil
}

// NewPurgeService 进程内清理闲置匿名购物车
func NewPurgeService(cartCfg config.CartConfig, consumer *Consumer) (*Service, error) {
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	return &Service{name: "cart_purge", consumer: consumer, interval: purgeInterval(cartCfg)}, nil
}

// Name 服务名称
func (s *Service) Name() string { return s.name }

// Start 阻塞直到 ctx 取消
func (s *Service) Start(ctx context.Context) error {
	if s.server != nil {
		if err := s.server.Start(s.mux); err != nil {
			return err
		}
	}
	s.purgeLoop(ctx)
	return nil
}

// Stop 等待进行中的任务结束
func (s *Service) Stop(context.Context) error {
	if s.server != nil {
		s.server.Shutdown()
	}
	return nil
}

// purgeLoop 每个周期调用一次 RequestPurge，队列可用时投递任务，否则同步清理
func (s *Service) purgeLoop(ctx context.Context) {
	if s.consumer.CartAdminService == nil {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		queued, purged, err := s.consumer.CartAdminService.RequestPurge(time.Now())
		if err != nil {
			logger.Warnw("worker_cart_purge_tick_failed", "service", s.name, "error", err)
		} else {
			logger.Debugw("worker_cart_purge_tick", "service", s.name, "queued", queued, "purged", purged)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func purgeInterval(cfg config.CartConfig) time.Duration {
	if cfg.PurgeIntervalMinutes <= 0 {
		return defaultPurgeInterval
	}
	return time.Duration(cfg.PurgeIntervalMinutes) * time.Minute
}
