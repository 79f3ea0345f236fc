package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cartkeeper/internal/config"
	"github.com/cartkeeper/internal/constants"
	"github.com/cartkeeper/internal/logger"
	"github.com/cartkeeper/internal/models"
	"github.com/cartkeeper/internal/provider"
	"github.com/cartkeeper/internal/reference"
	"github.com/cartkeeper/internal/repository"
	"github.com/cartkeeper/internal/service"
	"github.com/cartkeeper/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type routerTestEnv struct {
	db        *gorm.DB
	engine    *gin.Engine
	container *provider.Container
	cookies   []*http.Cookie
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type cartBody struct {
	ID         uint   `json:"id"`
	UserID     *uint  `json:"user_id"`
	CheckedOut bool   `json:"checked_out"`
	ItemCount  int    `json:"item_count"`
	TotalPrice string `json:"total_price"`
}

func newRouterTestEnv(t *testing.T) *routerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.L = zap.NewNop()

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

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: "test"},
		UserJWT: config.JWTConfig{SecretKey: "router-test-user-secret-0123456789abcdef", ExpireHours: 1},
		JWT:     config.JWTConfig{SecretKey: "router-test-admin-secret-0123456789abcdef", ExpireHours: 1},
		Session: config.SessionConfig{CookieName: "ck_session", TTLHours: 1, CSRFProtect: true},
	}
	registry := reference.NewRegistry(db)
	reference.Register[models.Product](registry, constants.RefTypeProduct)

	c := &provider.Container{
		Config:       cfg,
		SessionStore: session.NewMemoryStore(),
		Registry:     registry,
		UserRepo:     repository.NewUserRepository(db),
		ProductRepo:  repository.NewProductRepository(db),
		CartRepo:     repository.NewCartRepository(db),
		CartItemRepo: repository.NewCartItemRepository(db),
	}
	c.UserAuthService = service.NewUserAuthService(cfg, c.UserRepo)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CartResolver = service.NewCartResolver(c.CartRepo, c.CartItemRepo, registry, nil)
	c.CartAdminService = service.NewCartAdminService(cfg.Cart, c.CartRepo, c.CartItemRepo, c.CartResolver, nil)

	return &routerTestEnv{
		db:        db,
		engine:    SetupRouter(cfg, c),
		container: c,
	}
}

func (e *routerTestEnv) createProduct(t *testing.T, slug, price string) *models.Product {
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

func (e *routerTestEnv) userToken(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Status: constants.UserStatusActive}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	token, _, err := e.container.UserAuthService.GenerateUserJWT(user)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	return user, token
}

// do 发送请求并沿用响应下发的会话 Cookie
func (e *routerTestEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, cookie := range e.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s http status want 200 got %d", method, path, w.Code)
	}
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		e.cookies = cookies
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func (e *routerTestEnv) csrfToken(t *testing.T) string {
	t.Helper()
	resp := e.do(t, http.MethodGet, "/api/v1/session/csrf", nil, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("csrf endpoint failed: %+v", resp)
	}
	var data struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil || data.CSRFToken == "" {
		t.Fatalf("csrf token missing: %s", string(resp.Data))
	}
	return data.CSRFToken
}

func decodeCart(t *testing.T, raw json.RawMessage) cartBody {
	t.Helper()
	var cart cartBody
	if err := json.Unmarshal(raw, &cart); err != nil {
		t.Fatalf("decode cart failed: %v", err)
	}
	return cart
}

func decodeCartFromMutation(t *testing.T, raw json.RawMessage) cartBody {
	t.Helper()
	var data struct {
		Cart cartBody `json:"cart"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("decode mutation failed: %v", err)
	}
	return data.Cart
}

func TestSessionCookieIssuedOnce(t *testing.T) {
	env := newRouterTestEnv(t)
	env.csrfToken(t)
	if len(env.cookies) != 1 || env.cookies[0].Name != "ck_session" || !env.cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies %+v", env.cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/csrf", nil)
	req.AddCookie(env.cookies[0])
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	if len(w.Result().Cookies()) != 0 {
		t.Fatalf("known session should not be reissued")
	}
}

func TestAnonymousCartRequiresCSRFToken(t *testing.T) {
	env := newRouterTestEnv(t)
	product := env.createProduct(t, "csrf-mug", "4.00")
	token := env.csrfToken(t)

	body := gin.H{"ref": fmt.Sprintf("product#%d", product.ID), "quantity": 1}
	resp := env.do(t, http.MethodPost, "/api/v1/cart/items", body, nil)
	if resp.StatusCode != 403 {
		t.Fatalf("missing token want 403 got %d", resp.StatusCode)
	}
	resp = env.do(t, http.MethodPost, "/api/v1/cart/items", body, map[string]string{constants.HeaderCSRFToken: "bogus"})
	if resp.StatusCode != 403 {
		t.Fatalf("wrong token want 403 got %d", resp.StatusCode)
	}
	resp = env.do(t, http.MethodPost, "/api/v1/cart/items", body, map[string]string{constants.HeaderCSRFToken: token})
	if resp.StatusCode != 0 {
		t.Fatalf("valid token want success got %+v", resp)
	}

	// 只读请求不校验
	resp = env.do(t, http.MethodGet, "/api/v1/cart", nil, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("get cart failed: %+v", resp)
	}
}

func TestAnonymousCartFlow(t *testing.T) {
	env := newRouterTestEnv(t)
	mug := env.createProduct(t, "flow-mug", "12.50")
	token := env.csrfToken(t)
	headers := map[string]string{constants.HeaderCSRFToken: token}

	resp := env.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"ref": fmt.Sprintf("product#%d", mug.ID), "quantity": 2}, headers)
	if resp.StatusCode != 0 {
		t.Fatalf("add item failed: %+v", resp)
	}
	added := decodeCartFromMutation(t, resp.Data)
	if added.ItemCount != 1 || added.TotalPrice != "25" || added.UserID != nil {
		t.Fatalf("unexpected cart after add: %+v", added)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/cart", nil, nil)
	current := decodeCart(t, resp.Data)
	if current.ID != added.ID || current.ItemCount != 1 {
		t.Fatalf("session should keep the same cart, got %+v want id %d", current, added.ID)
	}

	resp = env.do(t, http.MethodPut, "/api/v1/cart/items", gin.H{"product_id": mug.ID, "quantity": 4}, headers)
	if resp.StatusCode != 0 {
		t.Fatalf("update quantity failed: %+v", resp)
	}
	if cart := decodeCartFromMutation(t, resp.Data); cart.ItemCount != 1 || cart.TotalPrice != "50" {
		t.Fatalf("quantity should be replaced, not added: %+v", cart)
	}

	resp = env.do(t, http.MethodPost, "/api/v1/cart/checkout", nil, headers)
	if resp.StatusCode != 0 {
		t.Fatalf("checkout failed: %+v", resp)
	}
	checkedOut := decodeCart(t, resp.Data)
	if !checkedOut.CheckedOut || checkedOut.ID != added.ID {
		t.Fatalf("unexpected checkout result: %+v", checkedOut)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/cart", nil, nil)
	next := decodeCart(t, resp.Data)
	if next.ID == added.ID || next.CheckedOut || next.ItemCount != 0 {
		t.Fatalf("checked out cart should be replaced by a fresh one: %+v", next)
	}
}

func TestAnonymousCartRejectsUnknownReference(t *testing.T) {
	env := newRouterTestEnv(t)
	headers := map[string]string{constants.HeaderCSRFToken: env.csrfToken(t)}

	resp := env.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"ref": "product#999"}, headers)
	if resp.StatusCode != 400 {
		t.Fatalf("unknown product want 400 got %d", resp.StatusCode)
	}
	resp = env.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"ref": "not-a-ref"}, headers)
	if resp.StatusCode != 400 {
		t.Fatalf("malformed ref want 400 got %d", resp.StatusCode)
	}
}

func TestBearerCartSkipsCSRFAndOwnsCart(t *testing.T) {
	env := newRouterTestEnv(t)
	product := env.createProduct(t, "bearer-mug", "3.00")
	user, token := env.userToken(t, "bearer@example.com")
	headers := map[string]string{"Authorization": "Bearer " + token}

	resp := env.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": product.ID, "quantity": 3}, headers)
	if resp.StatusCode != 0 {
		t.Fatalf("bearer add should skip csrf: %+v", resp)
	}
	cart := decodeCartFromMutation(t, resp.Data)
	if cart.UserID == nil || *cart.UserID != user.ID || cart.TotalPrice != "9" {
		t.Fatalf("unexpected owned cart: %+v", cart)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/me/carts/count", nil, headers)
	var count struct {
		Count int64 `json:"count"`
	}
	if err := json.Unmarshal(resp.Data, &count); err != nil || count.Count != 1 {
		t.Fatalf("count want 1 got %s", string(resp.Data))
	}

	resp = env.do(t, http.MethodGet, "/api/v1/me/carts/last", nil, headers)
	if last := decodeCart(t, resp.Data); last.ID != cart.ID {
		t.Fatalf("last cart want %d got %d", cart.ID, last.ID)
	}
}

func TestOptionalUserJWTRejectsInvalidToken(t *testing.T) {
	env := newRouterTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/v1/cart", nil, map[string]string{"Authorization": "Bearer nope"})
	if resp.StatusCode != 401 {
		t.Fatalf("invalid bearer want 401 got %d", resp.StatusCode)
	}
	resp = env.do(t, http.MethodGet, "/api/v1/me", nil, nil)
	if resp.StatusCode != 401 {
		t.Fatalf("me without token want 401 got %d", resp.StatusCode)
	}
}

func TestPublicProductsListed(t *testing.T) {
	env := newRouterTestEnv(t)
	env.createProduct(t, "listed-mug", "1.00")
	resp := env.do(t, http.MethodGet, "/api/v1/public/products", nil, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("list products failed: %+v", resp)
	}
	var products []models.Product
	if err := json.Unmarshal(resp.Data, &products); err != nil || len(products) != 1 {
		t.Fatalf("want one product got %s", string(resp.Data))
	}
}

func TestAdminPermissionCatalogCoversCartRoutes(t *testing.T) {
	env := newRouterTestEnv(t)
	items := buildAdminPermissionCatalog(env.engine)
	found := false
	for _, item := range items {
		if item.Method == http.MethodPost && item.Module == "carts" {
			found = true
		}
		if strings.Contains(item.Object, "login") {
			t.Fatalf("login route should not be listed: %+v", item)
		}
	}
	if !found {
		t.Fatalf("cart purge permission missing from catalog")
	}
}
