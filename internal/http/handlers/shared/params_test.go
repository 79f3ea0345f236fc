package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestPaginationFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string][2]int{
		"":                      {1, 20},
		"?page=3&page_size=5":   {3, 5},
		"?page=-1&page_size=0":  {1, 20},
		"?page=x&page_size=500": {1, 100},
	}
	for query, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/admin/carts"+query, nil)
		page, size := PaginationFromQuery(c)
		if page != want[0] || size != want[1] {
			t.Fatalf("query %q want %v got (%d,%d)", query, want, page, size)
		}
	}
}

func TestParseUintParamRejectsZero(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/carts/0", nil)
	c.Params = gin.Params{{Key: "id", Value: "0"}}

	if _, ok := ParseUintParam(c, "id", "error.cart_not_found"); ok {
		t.Fatalf("zero id should be rejected")
	}
	var resp struct {
		StatusCode int    `json:"status_code"`
		Msg        string `json:"msg"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 400 || resp.Msg == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestPageOfTotalPage(t *testing.T) {
	p := PageOf(2, 20, 41)
	if p.TotalPage != 3 || p.Page != 2 || p.Total != 41 {
		t.Fatalf("unexpected pagination %+v", p)
	}
	if PageOf(1, 0, 10).TotalPage != 0 {
		t.Fatalf("zero page size should yield zero pages")
	}
}
