package router

import (
	"net/http"
	"sort"
	"strings"

	"github.com/cartkeeper/internal/authz"

	"github.com/gin-gonic/gin"
)

const adminRoutePrefix = "/api/v1/admin/"

// permissionItem 可授权的管理端接口，Permission 形如 PUT:/admin/carts/:id/items/:item_id/price
type permissionItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 从已注册路由生成权限目录，登录接口不参与授权
func buildAdminPermissionCatalog(engine *gin.Engine) []permissionItem {
	items := make([]permissionItem, 0)
	if engine == nil {
		return items
	}
	seen := make(map[string]bool)
	for _, route := range engine.Routes() {
		method := strings.ToUpper(route.Method)
		if method == http.MethodOptions || method == http.MethodHead {
			continue
		}
		if !strings.HasPrefix(route.Path, adminRoutePrefix) || route.Path == adminRoutePrefix+"login" {
			continue
		}
		object := authz.NormalizeObject(route.Path)
		permission := method + ":" + object
		if seen[permission] {
			continue
		}
		seen[permission] = true
		items = append(items, permissionItem{
			Module:     permissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Object != b.Object {
			return a.Object < b.Object
		}
		return a.Method < b.Method
	})
	return items
}

// permissionModule 取 /admin 之后的第一段作为模块名，/admin/items 归入 carts
func permissionModule(object string) string {
	segments := strings.Split(strings.Trim(object, "/"), "/")
	if len(segments) < 2 || segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "items" {
		return "carts"
	}
	return segments[1]
}
