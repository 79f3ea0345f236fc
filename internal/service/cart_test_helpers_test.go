package service

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/cartkeeper/internal/constants"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/queue"
	"github.com/cartkeeper/internal/reference"
	"github.com/cartkeeper/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type cartTestEnv struct {
	db       *gorm.DB
	carts    *repository.GormCartRepository
	items    *repository.GormCartItemRepository
	registry *reference.Registry
	events   *recordingPublisher
	resolver *CartResolver
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads []queue.CartCheckedOutPayload
}

func (p *recordingPublisher) EnqueueCartCheckedOut(payload queue.CartCheckedOutPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

// mapBag 测试用会话袋
type mapBag map[string]string

func (b mapBag) Get(key string) (string, bool) {
	v, ok := b[key]
	return v, ok
}

func (b mapBag) Set(key, value string) {
	b[key] = value
}

func newCartTestEnv(t *testing.T) *cartTestEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.MigrateDB(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	registry := reference.NewRegistry(db)
	reference.Register[models.Product](registry, constants.RefTypeProduct)
	reference.Register[models.User](registry, constants.RefTypeUser)

	env := &cartTestEnv{
		db:       db,
		carts:    repository.NewCartRepository(db),
		items:    repository.NewCartItemRepository(db),
		registry: registry,
		events:   &recordingPublisher{},
	}
	env.resolver = NewCartResolver(env.carts, env.items, registry, env.events)
	return env
}

func (e *cartTestEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Status: constants.UserStatusActive}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (e *cartTestEnv) createProduct(t *testing.T, slug, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		Slug:        slug,
		Title:       slug,
		PriceAmount: models.NewMoneyFromDecimal(decimal.RequireFromString(price)),
		IsActive:    true,
	}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func money(raw string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(raw))
}

func qty(n int64) models.Quantity {
	return models.NewQuantityFromInt(n)
}
