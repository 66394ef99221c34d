package models

import "gorm.io/gorm"

// Tenant is the isolation boundary. Every domain row carries a TenantID.
type Tenant struct {
	gorm.Model
	Name string `json:"name" gorm:"not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null"`
}
