package provider

import (
	"context"
	"time"

	"github.com/cartkeeper/internal/authz"
	"github.com/cartkeeper/internal/cache"
	"github.com/cartkeeper/internal/config"
	"github.com/cartkeeper/internal/constants"
	"github.com/cartkeeper/internal/logger"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/queue"
	"github.com/cartkeeper/internal/reference"
	"github.com/cartkeeper/internal/repository"
	"github.com/cartkeeper/internal/service"
	"github.com/cartkeeper/internal/session"
)

// Container 依赖注入容器
type Container struct {
	Config       *config.Config
	QueueClient  *queue.Client
	SessionStore session.Store
	Registry     *reference.Registry

	// Repositories
	AdminRepo         repository.AdminRepository
	UserRepo          repository.UserRepository
	ProductRepo       repository.ProductRepository
	CartRepo          repository.CartRepository
	CartItemRepo      repository.CartItemRepository
	AdminAuditLogRepo repository.AdminAuditLogRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	UserAuthService   *service.UserAuthService
	ProductService    *service.ProductService
	CartResolver      *service.CartResolver
	CartAdminService  *service.CartAdminService
	AdminAuditService *service.AdminAuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	} else if cache.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(ctx); err != nil {
			// 会话与限流依赖 Redis，不可达时请求会在使用处报错
			logger.Warnw("provider_redis_unreachable", "error", err)
		}
		cancel()
	}

	// 初始化队列客户端，未启用时为空操作客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	c := &Container{
		Config:       cfg,
		QueueClient:  queueClient,
		SessionStore: session.NewStore(),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 注册可被购物车项引用的实体类型
	c.initRegistry()

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CartItemRepo = repository.NewCartItemRepository(db)
	c.AdminAuditLogRepo = repository.NewAdminAuditLogRepository(db)
}

func (c *Container) initRegistry() {
	c.Registry = reference.NewRegistry(models.DB)
	reference.Register[models.Product](c.Registry, constants.RefTypeProduct)
	reference.Register[models.User](c.Registry, constants.RefTypeUser)
	logger.Debugw("provider_reference_types_registered", "types", c.Registry.Types())
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.AdminAuditService = service.NewAdminAuditService(c.AdminAuditLogRepo)

	var events service.CartEventPublisher
	var scheduler service.CartPurgeScheduler
	if c.QueueClient != nil {
		events = c.QueueClient
		scheduler = c.QueueClient
	}
	c.CartResolver = service.NewCartResolver(c.CartRepo, c.CartItemRepo, c.Registry, events)
	c.CartAdminService = service.NewCartAdminService(c.Config.Cart, c.CartRepo, c.CartItemRepo, c.CartResolver, scheduler)
}

// Close 释放队列客户端与 Redis 连接
func (c *Container) Close() {
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
