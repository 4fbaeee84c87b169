package models

import "time"

// Role enumerates the privilege levels a user may hold.
type Role string

const (
	RoleEmployee   Role = "EMPLOYEE"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid reports whether the role is one of the defined levels.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User is the identity record behind every account. Emails are stored
// lower-cased so the unique index is effectively case-insensitive.
//
// VerificationToken and VerificationTokenExpiry are either both set or
// both null; a verified user always has both null.
type User struct {
	BaseModel

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `gorm:"not null" json:"name"`
	Role     Role   `gorm:"type:varchar(16);not null;default:EMPLOYEE" json:"role"`

	CompanyID *string  `gorm:"type:uuid;index" json:"company_id"`
	Company   *Company `json:"company,omitempty"`

	IsEmailVerified         bool       `gorm:"default:false" json:"is_email_verified"`
	VerificationToken       *string    `json:"-"`
	VerificationTokenExpiry *time.Time `json:"-"`
}
