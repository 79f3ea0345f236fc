package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 预置角色：只读审计、商品维护、购物车运维
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "cart_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     "catalog_editor",
			Inherits: []string{"cart_auditor"},
			Policies: []Policy{
				{Object: "/admin/products", Action: "*"},
				{Object: "/admin/products/:id", Action: "*"},
			},
		},
		{
			Role:     "cart_operator",
			Inherits: []string{"cart_auditor"},
			Policies: []Policy{
				{Object: "/admin/carts/:id", Action: "DELETE"},
				{Object: "/admin/carts/:id/items/:item_id/price", Action: "PUT"},
				{Object: "/admin/carts/:id/items/:item_id/product", Action: "PUT"},
				{Object: "/admin/carts/purge", Action: "POST"},
			},
		},
	}
}

func isBuiltinRole(role string) bool {
	for _, seed := range BuiltinRoleSeeds() {
		if name, err := NormalizeRole(seed.Role); err == nil && name == role {
			return true
		}
	}
	return false
}

// BootstrapBuiltinRoles 写入预置角色、继承关系与策略，重复执行无副作用
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), NormalizeAction(policy.Action)); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
