//go:build integration
// +build integration

package repository

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cartkeeper/internal/constants"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/reference"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.CartItem{},
		&models.Cart{},
		&models.Product{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresProductSearchIsCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewProductRepository(db)
	product := &models.Product{
		Slug:        "pg-mug",
		Title:       "Postgres Mug",
		PriceAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("9.90")),
		IsActive:    true,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	products, total, err := repo.List(ProductListFilter{Page: 1, PageSize: 20, Search: "postgres", OnlyActive: true})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if total != 1 || len(products) != 1 || products[0].ID != product.ID {
		t.Fatalf("unexpected search result total=%d products=%+v", total, products)
	}
}

func TestPostgresOpenCartUniquePerUser(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	user := &models.User{Email: "pg@example.com", PasswordHash: "x", Status: constants.UserStatusActive}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	repo := NewCartRepository(db)
	first := createTestCart(t, repo, &user.ID, time.Now())

	second := &models.Cart{UserID: &user.ID, CreationDate: time.Now()}
	if err := repo.Create(second); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("second open cart want ErrDuplicatedKey got %v", err)
	}

	if _, err := repo.MarkCheckedOut(first.ID, time.Now()); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	third := &models.Cart{UserID: &user.ID, CreationDate: time.Now()}
	if err := repo.Create(third); err != nil {
		t.Fatalf("new open cart after checkout failed: %v", err)
	}
	count, err := repo.CountByUser(user.ID)
	if err != nil || count != 2 {
		t.Fatalf("count want 2 got %d err=%v", count, err)
	}
}

func TestPostgresDeleteStaleAnonymousKeepsActiveCarts(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewCartRepository(db)
	itemRepo := NewCartItemRepository(db)
	past := time.Now().Add(-48 * time.Hour)

	stale := createTestCart(t, repo, nil, past)
	active := createTestCart(t, repo, nil, past)
	createTestItem(t, itemRepo, active.ID, reference.New(constants.RefTypeProduct, 1), 1)
	if err := db.Model(&models.Cart{}).Where("id IN ?", []uint{stale.ID, active.ID}).UpdateColumn("updated_at", past).Error; err != nil {
		t.Fatalf("age carts failed: %v", err)
	}

	purged, err := repo.DeleteStaleAnonymous(time.Now().Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged want 1 got %d", purged)
	}
	if cart, err := repo.GetByID(active.ID); err != nil || cart == nil {
		t.Fatalf("cart with fresh items should remain, got %v err=%v", cart, err)
	}
}
