package app

import (
	"errors"

	"github.com/cartkeeper/internal/config"
	"github.com/cartkeeper/internal/provider"
	"github.com/cartkeeper/internal/router"
	"github.com/cartkeeper/internal/worker"
)

// BuildRunner 按启动模式组装服务
func BuildRunner(cfg *config.Config, container *provider.Container, mode string) (*Runner, error) {
	if cfg == nil || container == nil {
		return nil, errors.New("config or container is nil")
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server, engine))
	}

	// 初始化 Worker 服务
	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		var (
			workerService *worker.Service
			err           error
		)
		if mode == ModeAll && !cfg.Queue.Enabled {
			// 队列未启用时由 API 进程直接清理闲置购物车
			workerService, err = worker.NewPurgeService(cfg.Cart, consumer)
		} else {
			workerService, err = worker.NewService(&cfg.Queue, cfg.Cart, consumer)
		}
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	// 模式错误或配置导致没有服务可启动
	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = opts.withDefaults()
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	container := provider.NewContainer(opts.Config)
	defer container.Close()

	runner, err := BuildRunner(opts.Config, container, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
