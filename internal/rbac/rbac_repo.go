package rbac

import "gorm.io/gorm"

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetEmployeeRoles() ([]EmployeeRoleRow, error)
	GetRolePermissions() ([]RolePermissionRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type EmployeeRoleRow struct {
	EmployeeID string
	Role       string
}

// RolePermission is both the gorm entity behind the role_permissions table
// and the row shape the enforcer loads.
type RolePermissionRow struct {
	Role     string `gorm:"type:varchar(30);not null;uniqueIndex:uq_role_permissions,priority:1"`
	Resource string `gorm:"type:varchar(50);not null;uniqueIndex:uq_role_permissions,priority:2"`
	Action   string `gorm:"type:varchar(50);not null;uniqueIndex:uq_role_permissions,priority:3"`
}

func (RolePermissionRow) TableName() string {
	return "role_permissions"
}

func (r *repository) GetEmployeeRoles() ([]EmployeeRoleRow, error) {
	var result []EmployeeRoleRow

	err := r.db.
		Table("employees").
		Select("employees.id AS employee_id, employees.role").
		Where("employees.deleted_at IS NULL").
		Scan(&result).Error

	return result, err
}

func (r *repository) GetRolePermissions() ([]RolePermissionRow, error) {
	var result []RolePermissionRow
	err := r.db.Find(&result).Error
	return result, err
}
