package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cartkeeper/internal/config"
	"github.com/cartkeeper/internal/constants"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/provider"
	"github.com/cartkeeper/internal/queue"
	"github.com/cartkeeper/internal/reference"
	"github.com/cartkeeper/internal/repository"
	"github.com/cartkeeper/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestConsumer(t *testing.T) (*Consumer, *gorm.DB) {
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

	c := &provider.Container{
		Config:       &config.Config{Cart: config.CartConfig{AnonymousTTLHours: 24, PurgeBatchSize: 2}},
		Registry:     registry,
		CartRepo:     repository.NewCartRepository(db),
		CartItemRepo: repository.NewCartItemRepository(db),
	}
	c.CartResolver = service.NewCartResolver(c.CartRepo, c.CartItemRepo, registry, nil)
	c.CartAdminService = service.NewCartAdminService(c.Config.Cart, c.CartRepo, c.CartItemRepo, c.CartResolver, nil)
	return NewConsumer(c), db
}

func newTask(t *testing.T, taskType string, payload interface{}) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return asynq.NewTask(taskType, body)
}

func createAgedAnonymousCart(t *testing.T, db *gorm.DB, age time.Duration) *models.Cart {
	t.Helper()
	past := time.Now().Add(-age)
	cart := &models.Cart{CreationDate: past}
	if err := db.Create(cart).Error; err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if err := db.Model(&models.Cart{}).Where("id = ?", cart.ID).UpdateColumn("updated_at", past).Error; err != nil {
		t.Fatalf("age cart failed: %v", err)
	}
	return cart
}

func countCarts(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var total int64
	if err := db.Model(&models.Cart{}).Count(&total).Error; err != nil {
		t.Fatalf("count carts failed: %v", err)
	}
	return total
}

func TestHandleCartCheckedOutSkipsOpenAndMissingCarts(t *testing.T) {
	consumer, db := newTestConsumer(t)
	cart := createAgedAnonymousCart(t, db, 0)
	ctx := context.Background()

	if err := consumer.handleCartCheckedOut(ctx, newTask(t, queue.TaskCartCheckedOut, queue.CartCheckedOutPayload{CartID: cart.ID})); err != nil {
		t.Fatalf("open cart should be skipped, got %v", err)
	}
	if err := consumer.handleCartCheckedOut(ctx, newTask(t, queue.TaskCartCheckedOut, queue.CartCheckedOutPayload{CartID: cart.ID + 99})); err != nil {
		t.Fatalf("missing cart should be skipped, got %v", err)
	}
	if err := consumer.handleCartCheckedOut(ctx, newTask(t, queue.TaskCartCheckedOut, queue.CartCheckedOutPayload{})); err != nil {
		t.Fatalf("empty payload should be skipped, got %v", err)
	}
}

func TestHandleCartCheckedOutSnapshotsCheckedOutCart(t *testing.T) {
	consumer, db := newTestConsumer(t)
	product := &models.Product{
		Slug:        "worker-mug",
		Title:       "worker-mug",
		PriceAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("3.00")),
		IsActive:    true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	cart := createAgedAnonymousCart(t, db, 0)
	proxy := consumer.CartResolver.Bind(cart)
	if _, err := proxy.AddItem(reference.Of(product), product.PriceAmount, models.NewQuantityFromInt(2)); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if _, err := proxy.Checkout(); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	task := newTask(t, queue.TaskCartCheckedOut, queue.CartCheckedOutPayload{CartID: cart.ID})
	if err := consumer.handleCartCheckedOut(context.Background(), task); err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
}

func TestHandleCartCheckedOutRejectsBadPayload(t *testing.T) {
	consumer, _ := newTestConsumer(t)
	task := asynq.NewTask(queue.TaskCartCheckedOut, []byte("{"))
	if err := consumer.handleCartCheckedOut(context.Background(), task); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestHandleCartPurgeStaleDefaultsBefore(t *testing.T) {
	consumer, db := newTestConsumer(t)
	for i := 0; i < 3; i++ {
		createAgedAnonymousCart(t, db, 72*time.Hour)
	}
	createAgedAnonymousCart(t, db, 0)

	task := newTask(t, queue.TaskCartPurgeStale, queue.CartPurgeStalePayload{})
	if err := consumer.handleCartPurgeStale(context.Background(), task); err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if got := countCarts(t, db); got != 1 {
		t.Fatalf("fresh cart should remain, got %d carts", got)
	}
}

func TestHandleCartPurgeStaleHonorsPayloadBefore(t *testing.T) {
	consumer, db := newTestConsumer(t)
	createAgedAnonymousCart(t, db, 72*time.Hour)
	createAgedAnonymousCart(t, db, 2*time.Hour)

	task := newTask(t, queue.TaskCartPurgeStale, queue.CartPurgeStalePayload{
		Before:    time.Now().Add(-time.Hour),
		BatchSize: 10,
	})
	if err := consumer.handleCartPurgeStale(context.Background(), task); err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if got := countCarts(t, db); got != 0 {
		t.Fatalf("both carts are older than before, got %d carts", got)
	}
}

func TestRegisterSkipsNil(t *testing.T) {
	var consumer *Consumer
	consumer.Register(asynq.NewServeMux())
	if err := consumer.handleCartPurgeStale(context.Background(), nil); err != nil {
		t.Fatalf("nil consumer should be a no-op, got %v", err)
	}
}

func TestPurgeIntervalDefaults(t *testing.T) {
	if got := purgeInterval(config.CartConfig{}); got != defaultPurgeInterval {
		t.Fatalf("want default interval, got %s", got)
	}
	if got := purgeInterval(config.CartConfig{PurgeIntervalMinutes: 5}); got != 5*time.Minute {
		t.Fatalf("want 5m, got %s", got)
	}
}

func TestPurgeServiceRunsWithoutQueue(t *testing.T) {
	consumer, db := newTestConsumer(t)
	createAgedAnonymousCart(t, db, 72*time.Hour)

	svc, err := NewPurgeService(config.CartConfig{PurgeIntervalMinutes: 60}, consumer)
	if err != nil {
		t.Fatalf("new purge service failed: %v", err)
	}
	if svc.Name() != "cart_purge" {
		t.Fatalf("unexpected name %q", svc.Name())
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if got := countCarts(t, db); got != 0 {
		t.Fatalf("first tick should purge stale carts, got %d", got)
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestNewServiceRejectsDisabledQueue(t *testing.T) {
	consumer, _ := newTestConsumer(t)
	if _, err := NewService(&config.QueueConfig{Enabled: false}, config.CartConfig{}, consumer); err == nil {
		t.Fatalf("disabled queue should be rejected")
	}
}
