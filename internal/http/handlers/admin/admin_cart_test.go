package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cartkeeper/internal/config"
	"github.com/cartkeeper/internal/constants"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/provider"
	"github.com/cartkeeper/internal/reference"
	"github.com/cartkeeper/internal/repository"
	"github.com/cartkeeper/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type adminCartFixture struct {
	UserCartID uint
	AnonCartID uint
	ItemID     uint
	ProductID  uint
}

func setupAdminCartHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_cart_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
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
		t.Fatalf("auto migrate failed: %v", err)
	}

	registry := reference.NewRegistry(db)
	reference.Register[models.Product](registry, constants.RefTypeProduct)
	cartRepo := repository.NewCartRepository(db)
	itemRepo := repository.NewCartItemRepository(db)
	auditRepo := repository.NewAdminAuditLogRepository(db)
	resolver := service.NewCartResolver(cartRepo, itemRepo, registry, nil)

	h := &Handler{Container: &provider.Container{
		Registry:          registry,
		CartRepo:          cartRepo,
		CartItemRepo:      itemRepo,
		AdminAuditLogRepo: auditRepo,
		CartResolver:      resolver,
		CartAdminService:  service.NewCartAdminService(config.CartConfig{}, cartRepo, itemRepo, resolver, nil),
		AdminAuditService: service.NewAdminAuditService(auditRepo),
	}}
	return h, db
}

func seedAdminCartData(t *testing.T, h *Handler, db *gorm.DB) adminCartFixture {
	t.Helper()
	user := models.User{Email: "admin_cart_user@example.com", PasswordHash: "hash", Status: constants.UserStatusActive}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	product := models.Product{
		Slug:        "admin-cart-mug",
		Title:       "Admin Cart Mug",
		PriceAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("5.00")),
		IsActive:    true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	userCart, err := h.CartResolver.Resolve(service.CartRequest{UserID: user.ID})
	if err != nil {
		t.Fatalf("resolve user cart failed: %v", err)
	}
	item, err := userCart.AddItem(reference.Of(&product), product.PriceAmount, models.NewQuantityFromInt(2))
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	anonCart, err := h.CartResolver.Resolve(service.CartRequest{})
	if err != nil {
		t.Fatalf("resolve anonymous cart failed: %v", err)
	}
	return adminCartFixture{
		UserCartID: userCart.Cart().ID,
		AnonCartID: anonCart.Cart().ID,
		ItemID:     item.ID,
		ProductID:  product.ID,
	}
}

type adminResp struct {
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func decodeAdminResp(t *testing.T, w *httptest.ResponseRecorder) adminResp {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp adminResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp
}

func TestListCartsFiltersAnonymous(t *testing.T) {
	h, db := setupAdminCartHandlerTest(t)
	fixture := seedAdminCartData(t, h, db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/carts?anonymous=true&page=1&page_size=20", nil)
	h.ListCarts(c)

	resp := decodeAdminResp(t, w)
	if resp.StatusCode != 0 || resp.Pagination.Total != 1 {
		t.Fatalf("want one anonymous cart got status=%d total=%d", resp.StatusCode, resp.Pagination.Total)
	}
	var carts []struct {
		ID     uint  `json:"id"`
		UserID *uint `json:"user_id"`
	}
	if err := json.Unmarshal(resp.Data, &carts); err != nil {
		t.Fatalf("decode carts failed: %v", err)
	}
	if len(carts) != 1 || carts[0].ID != fixture.AnonCartID || carts[0].UserID != nil {
		t.Fatalf("unexpected carts %+v", carts)
	}
}

func TestListCartsInvalidCheckedOut(t *testing.T) {
	h, _ := setupAdminCartHandlerTest(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/carts?checked_out=maybe", nil)
	h.ListCarts(c)

	if resp := decodeAdminResp(t, w); resp.StatusCode != 400 {
		t.Fatalf("status_code want 400 got %d", resp.StatusCode)
	}
}

func TestUpdateCartItemPriceRecordsAudit(t *testing.T) {
	h, db := setupAdminCartHandlerTest(t)
	fixture := seedAdminCartData(t, h, db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := bytes.NewBufferString(`{"unit_price":"7.25"}`)
	c.Request = httptest.NewRequest(http.MethodPut, "/admin/carts/x/items/y/price", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{
		{Key: "id", Value: fmt.Sprint(fixture.UserCartID)},
		{Key: "item_id", Value: fmt.Sprint(fixture.ItemID)},
	}
	c.Set(constants.ContextKeyAdminID, uint(9))
	h.UpdateCartItemPrice(c)

	resp := decodeAdminResp(t, w)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	var data struct {
		Item struct {
			UnitPrice string `json:"unit_price"`
		} `json:"item"`
		Cart struct {
			TotalPrice string `json:"total_price"`
		} `json:"cart"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode data failed: %v", err)
	}
	if data.Item.UnitPrice != "7.25" || data.Cart.TotalPrice != "14.5" {
		t.Fatalf("unexpected price update %+v", data)
	}

	var audits []models.AdminAuditLog
	if err := db.Where("action = ?", service.AuditActionCartItemPrice).Find(&audits).Error; err != nil {
		t.Fatalf("load audits failed: %v", err)
	}
	if len(audits) != 1 || audits[0].OperatorAdminID != 9 {
		t.Fatalf("unexpected audits %+v", audits)
	}
}

func TestUpdateCartItemPriceRejectsForeignItem(t *testing.T) {
	h, db := setupAdminCartHandlerTest(t)
	fixture := seedAdminCartData(t, h, db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/admin/carts/x/items/y/price", bytes.NewBufferString(`{"unit_price":"1.00"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{
		{Key: "id", Value: fmt.Sprint(fixture.AnonCartID)},
		{Key: "item_id", Value: fmt.Sprint(fixture.ItemID)},
	}
	h.UpdateCartItemPrice(c)

	if resp := decodeAdminResp(t, w); resp.StatusCode != 404 {
		t.Fatalf("item from another cart want 404 got %d", resp.StatusCode)
	}
}

func TestGetItemProductUnresolved(t *testing.T) {
	h, db := setupAdminCartHandlerTest(t)
	fixture := seedAdminCartData(t, h, db)

	call := func() adminResp {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/admin/items/x/product", nil)
		c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(fixture.ItemID)}}
		h.GetItemProduct(c)
		return decodeAdminResp(t, w)
	}

	resp := call()
	if resp.StatusCode != 0 {
		t.Fatalf("resolve want success got %d", resp.StatusCode)
	}
	var data struct {
		Ref struct {
			Type string `json:"type"`
			ID   uint   `json:"id"`
		} `json:"ref"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode data failed: %v", err)
	}
	if data.Ref.Type != constants.RefTypeProduct || data.Ref.ID != fixture.ProductID {
		t.Fatalf("unexpected ref %+v", data.Ref)
	}

	if err := db.Delete(&models.Product{}, fixture.ProductID).Error; err != nil {
		t.Fatalf("delete product failed: %v", err)
	}
	if resp := call(); resp.StatusCode != 400 {
		t.Fatalf("deleted product want 400 got %d", resp.StatusCode)
	}
}

func TestGetCartSnapshotRequiresCheckout(t *testing.T) {
	h, db := setupAdminCartHandlerTest(t)
	fixture := seedAdminCartData(t, h, db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/carts/x/snapshot", nil)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(fixture.UserCartID)}}
	h.GetCartSnapshot(c)

	if resp := decodeAdminResp(t, w); resp.StatusCode != 400 {
		t.Fatalf("open cart snapshot want 400 got %d", resp.StatusCode)
	}
}
