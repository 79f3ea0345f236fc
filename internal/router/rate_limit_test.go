package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cartkeeper/internal/constants"

	"github.com/gin-gonic/gin"
)

type fakeCounter struct {
	hits map[string]int64
	ttl  int64
	err  error
}

func (f *fakeCounter) Hit(_ context.Context, key string, _ RateLimitRule) (int64, int64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	if f.hits == nil {
		f.hits = map[string]int64{}
	}
	f.hits[key]++
	return f.hits[key], f.ttl, nil
}

func limitedEngine(counter hitCounter, rule RateLimitRule, keyFunc RateLimitKeyFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rateLimitWith(counter, rule, keyFunc))
	r.POST("/cart/items", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0})
	})
	return r
}

func postStatusCode(t *testing.T, r *gin.Engine) int {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}

func TestRateLimitBlocksAfterMax(t *testing.T) {
	counter := &fakeCounter{ttl: 30}
	r := limitedEngine(counter, RateLimitRule{Prefix: "cart", WindowSeconds: 60, MaxRequests: 2}, KeyByUserOrIP)

	for i := 0; i < 2; i++ {
		if code := postStatusCode(t, r); code != 0 {
			t.Fatalf("request %d want pass got %d", i, code)
		}
	}
	if code := postStatusCode(t, r); code != 429 {
		t.Fatalf("third request want 429 got %d", code)
	}
	if counter.hits["cart:ip:10.0.0.1"] != 3 {
		t.Fatalf("unexpected counter keys %v", counter.hits)
	}
}

func TestRateLimitCounterFailure(t *testing.T) {
	r := limitedEngine(&fakeCounter{err: errors.New("redis down")}, RateLimitRule{WindowSeconds: 60, MaxRequests: 5}, KeyByIP)
	if code := postStatusCode(t, r); code != 500 {
		t.Fatalf("counter failure want 500 got %d", code)
	}
}

func TestRateLimitDisabledRulePassesThrough(t *testing.T) {
	counter := &fakeCounter{}
	r := limitedEngine(counter, RateLimitRule{WindowSeconds: 0, MaxRequests: 1}, KeyByIP)
	for i := 0; i < 3; i++ {
		if code := postStatusCode(t, r); code != 0 {
			t.Fatalf("disabled rule should pass, got %d", code)
		}
	}
	if len(counter.hits) != 0 {
		t.Fatalf("disabled rule should not count, got %v", counter.hits)
	}

	if code := postStatusCode(t, limitedEngine(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP)); code != 0 {
		t.Fatalf("missing counter should pass, got %d", code)
	}
}

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/cart", nil)
	c.Request.RemoteAddr = "1.2.3.4:5678"

	if key := KeyByUserOrIP(c); key != "ip:1.2.3.4" {
		t.Fatalf("anonymous key want ip:1.2.3.4 got %s", key)
	}
	c.Set(constants.ContextKeyUserID, uint(42))
	if key := KeyByUserOrIP(c); key != "user:42" {
		t.Fatalf("user key want user:42 got %s", key)
	}
}

func TestKeyByIPAndJSONFieldRestoresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":" Shopper@Example.com "}`))
	c.Request.RemoteAddr = "1.2.3.4:5678"

	if key := KeyByIPAndJSONField("email")(c); key != "shopper@example.com|1.2.3.4" {
		t.Fatalf("unexpected key %s", key)
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read restored body failed: %v", err)
	}
	if !strings.Contains(string(body), "Shopper@Example.com") {
		t.Fatalf("body should be restored, got %s", body)
	}

	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":42}`))
	c.Request.RemoteAddr = "1.2.3.4:5678"
	if key := KeyByIPAndJSONField("email")(c); key != "1.2.3.4" {
		t.Fatalf("non-string field should fall back to ip, got %s", key)
	}
}
