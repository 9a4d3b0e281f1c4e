package rbac

import (
	"errors"
	"testing"

	"go-hris-leave/internal/domain"
	"go-hris-leave/internal/rbac/infra"

	"github.com/stretchr/testify/assert"
)

type failingRepo struct{}

func (failingRepo) GetRolePermissions() ([]RolePermissionRow, error) {
	return nil, errors.New("policy store unavailable")
}

func (failingRepo) GetRoleInheritance() ([]RoleInheritanceRow, error) {
	return nil, nil
}

func newTestService(t *testing.T) Service {
	t.Helper()
	enforcer, err := infra.NewEnforcer()
	assert.NoError(t, err)

	svc := NewService(NewStaticRepository(), enforcer)
	assert.NoError(t, svc.LoadPolicy())
	return svc
}

func TestRBACService_Enforce(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name    string
		req     domain.EnforceRequest
		allowed bool
	}{
		{"employee can submit", domain.EnforceRequest{Role: RoleEmployee, Resource: "leave", Action: "create"}, true},
		{"employee can review", domain.EnforceRequest{Role: RoleEmployee, Resource: "leave", Action: "review"}, true},
		{"employee cannot read roles", domain.EnforceRequest{Role: RoleEmployee, Resource: "role", Action: "read"}, false},
		{"manager inherits employee", domain.EnforceRequest{Role: RoleManager, Resource: "notification", Action: "update"}, true},
		{"admin inherits through manager", domain.EnforceRequest{Role: RoleAdmin, Resource: "leave", Action: "cancel"}, true},
		{"admin reads roles", domain.EnforceRequest{Role: RoleAdmin, Resource: "role", Action: "read"}, true},
		{"unknown role denied", domain.EnforceRequest{Role: "contractor", Resource: "leave", Action: "create"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, err := svc.Enforce(tc.req)
			assert.NoError(t, err)
			assert.Equal(t, tc.allowed, allowed)
		})
	}
}

func TestRBACService_LoadPolicyError(t *testing.T) {
	enforcer, err := infra.NewEnforcer()
	assert.NoError(t, err)

	svc := NewService(failingRepo{}, enforcer)

	assert.EqualError(t, svc.LoadPolicy(), "policy store unavailable")
}

func TestRBACService_ListRoles(t *testing.T) {
	svc := newTestService(t)

	roles, err := svc.ListRoles()

	assert.NoError(t, err)
	assert.Len(t, roles, 3)
	assert.Equal(t, RoleAdmin, roles[0].Name)
	assert.Equal(t, []string{RoleManager}, roles[0].Inherits)
	assert.Contains(t, roles[0].Permissions, domain.PermissionResponse{Resource: "leave", Action: "create"})
	assert.Equal(t, RoleEmployee, roles[1].Name)
	assert.NotContains(t, roles[1].Permissions, domain.PermissionResponse{Resource: "role", Action: "read"})
}
