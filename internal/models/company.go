package models

import "gorm.io/datatypes"

// Company groups users under one tenant. Settings holds free-form
// tenant configuration such as working-hour defaults.
type Company struct {
	BaseModel

	Name     string         `gorm:"not null;uniqueIndex" json:"name"`
	LogoURL  string         `json:"logo_url"`
	Settings datatypes.JSON `json:"settings"`

	Users []User `gorm:"foreignKey:CompanyID" json:"users,omitempty"`
}
