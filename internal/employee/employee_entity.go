package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

type Employee struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName string    `gorm:"type:varchar(150);not null"`
	Email    string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	Gender   string    `gorm:"type:varchar(20)"`
	// JoinDate gates service-length rules (overseas, maternity); nullable
	// because imported records may lack it.
	JoinDate *time.Time `gorm:"type:date"`
	Role     string     `gorm:"type:varchar(20);not null;default:'employee'"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string {
	return "employees"
}
