package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("ops", "/admin/carts/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"ops"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(1, "/api/v1/admin/carts/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceAdmin(1, "/api/v1/admin/carts/42", "POST")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("ops", "/admin/carts", "GET"); err != nil {
		t.Fatalf("grant ops policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("catalog", "/admin/products", "GET"); err != nil {
		t.Fatalf("grant catalog policy failed: %v", err)
	}

	if err := svc.SetAdminRoles(2, []string{"ops"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:ops" {
		t.Fatalf("roles want [role:ops], got=%v", roles)
	}

	if err := svc.SetAdminRoles(2, []string{"catalog"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err = svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:catalog" {
		t.Fatalf("roles want [role:catalog], got=%v", roles)
	}

	allow, err := svc.EnforceAdmin(2, "/admin/carts", "GET")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected old role permission removed")
	}

	allow, err = svc.EnforceAdmin(2, "/admin/products", "GET")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected new role permission granted")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/carts/:id", want: "/admin/carts/:id"},
		{in: "/admin/carts/:id", want: "/admin/carts/:id"},
		{in: "admin/carts", want: "/admin/carts"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:cart_auditor":   true,
		"role:catalog_editor": true,
		"role:cart_operator":  true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	if err := svc.SetAdminRoles(3, []string{"cart_operator"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(3, "/admin/carts/9", "GET")
	if err != nil {
		t.Fatalf("enforce inherited auditor failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected inherited auditor permission")
	}

	allow, err = svc.EnforceAdmin(3, "/api/v1/admin/carts/9", "DELETE")
	if err != nil {
		t.Fatalf("enforce operator delete failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected operator delete permission")
	}

	allow, err = svc.EnforceAdmin(3, "/admin/products/1", "PUT")
	if err != nil {
		t.Fatalf("enforce catalog write failed: %v", err)
	}
	if allow {
		t.Fatalf("expected operator deny catalog write")
	}
}

func TestDeleteRoleGuards(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	if err := svc.DeleteRole("cart_auditor"); !errors.Is(err, ErrImmutableRole) {
		t.Fatalf("builtin role delete want ErrImmutableRole got %v", err)
	}
	if _, err := svc.EnsureRole("__anchor__"); !errors.Is(err, ErrReservedRole) {
		t.Fatalf("anchor role want ErrReservedRole got %v", err)
	}

	if err := svc.GrantRolePolicy("temp", "/admin/carts", "GET"); err != nil {
		t.Fatalf("grant temp policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(5, []string{"temp"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	if err := svc.DeleteRole("temp"); err != nil {
		t.Fatalf("delete temp role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(5)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("deleted role should be unbound, got %v", roles)
	}
	allow, err := svc.EnforceAdmin(5, "/admin/carts", "GET")
	if err != nil || allow {
		t.Fatalf("deleted role should deny, allow=%v err=%v", allow, err)
	}
}

func TestGetAdminPoliciesMergesDirectRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("a", "/admin/carts", "GET"); err != nil {
		t.Fatalf("grant a failed: %v", err)
	}
	if err := svc.GrantRolePolicy("b", "/admin/products", "POST"); err != nil {
		t.Fatalf("grant b failed: %v", err)
	}
	if err := svc.SetAdminRoles(6, []string{"b", "a"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}
	policies, err := svc.GetAdminPolicies(6)
	if err != nil {
		t.Fatalf("get policies failed: %v", err)
	}
	if len(policies) != 2 || policies[0].Subject != "role:a" || policies[1].Object != "/admin/products" {
		t.Fatalf("unexpected policies %+v", policies)
	}
	if _, err := svc.GetAdminPolicies(0); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("zero admin want ErrAdminRequired got %v", err)
	}
}
