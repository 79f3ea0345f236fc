package service

import (
	"errors"
	"strings"

	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	// ErrSlugExists 商品 slug 已存在
	ErrSlugExists = errors.New("slug already exists")
	// ErrInvalidProductInput 商品参数非法
	ErrInvalidProductInput = errors.New("invalid product input")
)

// ProductService 商品业务服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// CreateProductInput 创建商品输入
type CreateProductInput struct {
	Slug        string
	Title       string
	PriceAmount decimal.Decimal
	IsActive    *bool
	SortOrder   int
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(search string, page, pageSize int) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     search,
		OnlyActive: true,
	})
}

// ListAdmin 获取后台商品列表（含下架商品）
func (s *ProductService) ListAdmin(search string, page, pageSize int) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   search,
	})
}

// GetPublicByID 获取公开商品详情
func (s *ProductService) GetPublicByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	slug := strings.TrimSpace(input.Slug)
	if slug == "" || strings.TrimSpace(input.Title) == "" || input.PriceAmount.IsNegative() {
		return nil, ErrInvalidProductInput
	}
	count, err := s.repo.CountBySlug(slug)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	product := &models.Product{
		Slug:        slug,
		Title:       strings.TrimSpace(input.Title),
		PriceAmount: models.NewMoneyFromDecimal(input.PriceAmount),
		IsActive:    true,
		SortOrder:   input.SortOrder,
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	// is_active 带默认值，零值 false 需要在创建后单独落库
	if !isActive {
		product.IsActive = false
		if err := s.repo.Update(product); err != nil {
			return nil, err
		}
	}
	return product, nil
}
