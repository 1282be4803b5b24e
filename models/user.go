package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values recognized by access-control filtering.
const (
	RoleCustomer = "Customer"
	RoleAdmin    = "Admin"
	RoleManager  = "Manager"
)

// User represents an account in the system. User management itself lives in a
// separate service; this record exists for ownership and role checks only.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      string         `gorm:"not null;default:'Customer'" json:"role"` // Customer, Admin or Manager
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// Requester identifies the caller of a service operation. It is always passed
// explicitly; services never read the caller's identity from ambient state.
type Requester struct {
	ID   uint
	Role string
}

// IsElevated reports whether the requester is exempt from the
// "own records only" list-filtering rule.
func (r Requester) IsElevated() bool {
	return r.Role == RoleAdmin || r.Role == RoleManager
}
