package rbac

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

type RolePermissionRow struct {
	Role     string
	Resource string
	Action   string
}

type RoleInheritanceRow struct {
	Role     string
	Inherits string
}

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetRolePermissions() ([]RolePermissionRow, error)
	GetRoleInheritance() ([]RoleInheritanceRow, error)
}

type staticRepository struct {
	permissions []RolePermissionRow
	inheritance []RoleInheritanceRow
}

// NewStaticRepository serves the built-in leave policy. Roles come from the
// access token, so there is nothing per-employee to store.
func NewStaticRepository() Repository {
	return &staticRepository{
		permissions: []RolePermissionRow{
			{Role: RoleEmployee, Resource: "leave", Action: "create"},
			{Role: RoleEmployee, Resource: "leave", Action: "read"},
			{Role: RoleEmployee, Resource: "leave", Action: "cancel"},
			{Role: RoleEmployee, Resource: "leave", Action: "review"},
			{Role: RoleEmployee, Resource: "notification", Action: "read"},
			{Role: RoleEmployee, Resource: "notification", Action: "update"},
			{Role: RoleAdmin, Resource: "role", Action: "read"},
		},
		inheritance: []RoleInheritanceRow{
			{Role: RoleManager, Inherits: RoleEmployee},
			{Role: RoleAdmin, Inherits: RoleManager},
		},
	}
}

func (r *staticRepository) GetRolePermissions() ([]RolePermissionRow, error) {
	return r.permissions, nil
}

func (r *staticRepository) GetRoleInheritance() ([]RoleInheritanceRow, error) {
	return r.inheritance, nil
}
