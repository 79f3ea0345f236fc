package main

import (
	"github.com/cartkeeper/internal/config"
	"github.com/cartkeeper/internal/constants"
	"github.com/cartkeeper/internal/logger"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/reference"
	"github.com/cartkeeper/internal/repository"
	"github.com/cartkeeper/internal/service"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const (
	demoUserEmail    = "demo@example.com"
	demoUserPassword = "Demo1234!"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if _, err := models.Connect(cfg.Database.ToConnectOptions()); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	products := []models.Product{
		{Slug: "coffee-mug", Title: "Coffee Mug", PriceAmount: price("12.50"), IsActive: true, SortOrder: 100},
		{Slug: "notebook-a5", Title: "A5 Notebook", PriceAmount: price("6.90"), IsActive: true, SortOrder: 90},
		{Slug: "coffee-beans-1kg", Title: "Coffee Beans 1kg", PriceAmount: price("24.00"), IsActive: true, SortOrder: 80},
		{Slug: "gift-wrap", Title: "Gift Wrap", PriceAmount: price("1.50"), IsActive: true, SortOrder: 10},
		{Slug: "retired-poster", Title: "Retired Poster", PriceAmount: price("9.99"), IsActive: false, SortOrder: 0},
	}

	for _, prod := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", prod.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Slug)
			}
		} else {
			existing.Title = prod.Title
			existing.PriceAmount = prod.PriceAmount
			existing.IsActive = prod.IsActive
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Slug)
			}
		}
	}

	// 演示用户
	var user models.User
	if err := models.DB.Where("email = ?", demoUserEmail).First(&user).Error; err != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(demoUserPassword), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash demo password: %v", err)
		}
		user = models.User{
			Email:        demoUserEmail,
			PasswordHash: string(hash),
			DisplayName:  "Demo",
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Fatalf("Failed to create demo user: %v", err)
		}
		stdLog.Printf("Created demo user: %s / %s", demoUserEmail, demoUserPassword)
	} else {
		stdLog.Printf("Demo user already exists: %s", demoUserEmail)
	}

	// 演示用户的当前购物车，已有商品时不再追加
	registry := reference.NewRegistry(models.DB)
	reference.Register[models.Product](registry, constants.RefTypeProduct)
	resolver := service.NewCartResolver(
		repository.NewCartRepository(models.DB),
		repository.NewCartItemRepository(models.DB),
		registry,
		nil,
	)
	cart, err := resolver.Resolve(service.CartRequest{UserID: user.ID})
	if err != nil {
		stdLog.Fatalf("Failed to resolve demo cart: %v", err)
	}
	if !cart.IsEmpty() {
		stdLog.Printf("Demo cart already filled: cart_id=%d", cart.Cart().ID)
		return
	}
	seedItems := []struct {
		Slug     string
		Quantity int64
	}{
		{Slug: "coffee-mug", Quantity: 2},
		{Slug: "coffee-beans-1kg", Quantity: 1},
	}
	for _, seed := range seedItems {
		var product models.Product
		if err := models.DB.Where("slug = ?", seed.Slug).First(&product).Error; err != nil {
			stdLog.Printf("Skip cart item %s: product not found", seed.Slug)
			continue
		}
		if _, err := cart.AddItem(reference.Of(&product), product.PriceAmount, models.NewQuantityFromInt(seed.Quantity)); err != nil {
			stdLog.Printf("Failed to add cart item %s: %v", seed.Slug, err)
			continue
		}
		stdLog.Printf("Added cart item: %s x%d", seed.Slug, seed.Quantity)
	}
	summary := cart.Summary()
	stdLog.Printf("Demo cart ready: cart_id=%d items=%d total=%s", cart.Cart().ID, summary.ItemCount, summary.TotalPrice.StringFixed(2))
}

func price(raw string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(raw))
}
